package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/service"
	"github.com/suicidekings/carclub/internal/types"
)

type TransactionHandler struct {
	service service.TransactionService
	log     *logger.Logger
}

func NewTransactionHandler(service service.TransactionService, log *logger.Logger) *TransactionHandler {
	return &TransactionHandler{service: service, log: log}
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetTransaction(ctx, c.Param("txnId"))
	if err != nil {
		h.log.Error("Failed to get transaction", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	var filter types.TransactionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.log.Error("Failed to bind query", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}
	filter.TenantID = c.Param("id")

	resp, err := h.service.ListTransactions(ctx, &filter)
	if err != nil {
		h.log.Error("Failed to list transactions", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
