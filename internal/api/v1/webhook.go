package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suicidekings/carclub/internal/api/dto"
	"github.com/suicidekings/carclub/internal/domain/webhookevent"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/paypal"
	"github.com/suicidekings/carclub/internal/service"
	"github.com/suicidekings/carclub/internal/types"
)

type WebhookHandler struct {
	service service.WebhookService
	log     *logger.Logger
}

func NewWebhookHandler(service service.WebhookService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, log: log}
}

// HandleWebhook ingests one provider notification. It responds 200 for
// every logged delivery except signature rejections, which get a 401 so
// the provider redelivers once the webhook configuration is fixed; any
// other non-200 would only make the provider redeliver an event we have
// already logged.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := c.Param("id")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		h.log.Warnw("empty webhook body", "tenant_id", tenantID, "error", err)
		c.JSON(http.StatusOK, dto.WebhookAckResponse{Received: true, Message: "empty body"})
		return
	}

	headers := paypal.SignatureHeaders{
		AuthAlgo:         c.GetHeader("Paypal-Auth-Algo"),
		CertURL:          c.GetHeader("Paypal-Cert-Url"),
		TransmissionID:   c.GetHeader("Paypal-Transmission-Id"),
		TransmissionSig:  c.GetHeader("Paypal-Transmission-Sig"),
		TransmissionTime: c.GetHeader("Paypal-Transmission-Time"),
	}

	ack, err := h.service.ProcessWebhook(ctx, tenantID, headers, body)
	if err != nil {
		c.JSON(ierr.HTTPStatusFromErr(err), ack)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// ListWebhookEvents exposes the delivery log for auditing.
func (h *WebhookHandler) ListWebhookEvents(c *gin.Context) {
	ctx := c.Request.Context()

	var query struct {
		EventType string `form:"event_type"`
		Processed *bool  `form:"processed"`
		Limit     int    `form:"limit"`
		Offset    int    `form:"offset"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.log.Error("Failed to bind query", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	filter := &webhookevent.Filter{
		QueryFilter: &types.QueryFilter{Limit: query.Limit, Offset: query.Offset},
		TenantID:    c.Param("id"),
		EventType:   query.EventType,
		Processed:   query.Processed,
	}

	resp, err := h.service.ListWebhookEvents(ctx, filter)
	if err != nil {
		h.log.Error("Failed to list webhook events", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
