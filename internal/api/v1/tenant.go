package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suicidekings/carclub/internal/api/dto"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/service"
)

type TenantHandler struct {
	service service.TenantService
	log     *logger.Logger
}

func NewTenantHandler(service service.TenantService, log *logger.Logger) *TenantHandler {
	return &TenantHandler{service: service, log: log}
}

func (h *TenantHandler) CreateTenant(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTenant(ctx, req)
	if err != nil {
		h.log.Error("Failed to create chapter", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *TenantHandler) GetTenant(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetTenant(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get chapter", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) ListTenants(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListTenants(ctx)
	if err != nil {
		h.log.Error("Failed to list chapters", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) UpdateTenant(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateTenant(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to update chapter", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TenantHandler) UpdatePaymentSettings(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.UpdatePaymentSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePaymentSettings(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to update payment settings", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
