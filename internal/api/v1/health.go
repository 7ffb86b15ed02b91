package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/service"
)

type HealthHandler struct {
	service service.HealthService
	log     *logger.Logger
}

func NewHealthHandler(service service.HealthService, log *logger.Logger) *HealthHandler {
	return &HealthHandler{service: service, log: log}
}

// Liveness is the bare process liveness probe.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) TenantHealth(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.TenantHealth(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to get chapter health", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) SystemHealth(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.SystemHealth(ctx)
	if err != nil {
		h.log.Error("Failed to get system health", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
