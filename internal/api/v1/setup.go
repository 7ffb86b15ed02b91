package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suicidekings/carclub/internal/api/dto"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/service"
)

type SetupHandler struct {
	service service.SetupService
	log     *logger.Logger
}

func NewSetupHandler(service service.SetupService, log *logger.Logger) *SetupHandler {
	return &SetupHandler{service: service, log: log}
}

func (h *SetupHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.Status(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get setup status", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SetupHandler) ConfigureCredentials(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdatePaymentSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConfigureCredentials(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to configure credentials", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SetupHandler) TestConnection(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.TestConnection(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Connection test failed", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SetupHandler) ConfigurePricing(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConfigurePricing(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to configure pricing", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SetupHandler) ProvisionProducts(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ProvisionProducts(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to provision products", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SetupHandler) ConfigureWebhooks(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.ConfigureWebhooksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ConfigureWebhooks(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to configure webhooks", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
