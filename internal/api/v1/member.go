package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suicidekings/carclub/internal/api/dto"
	ierr "github.com/suicidekings/carclub/internal/errors"
	"github.com/suicidekings/carclub/internal/logger"
	"github.com/suicidekings/carclub/internal/service"
)

type MemberHandler struct {
	service service.MemberService
	log     *logger.Logger
}

func NewMemberHandler(service service.MemberService, log *logger.Logger) *MemberHandler {
	return &MemberHandler{service: service, log: log}
}

func (h *MemberHandler) GetMember(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.GetMember(ctx, c.Param("memberId"))
	if err != nil {
		h.log.Error("Failed to get member", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MemberHandler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()
	resp, err := h.service.ListMembers(ctx, c.Param("id"))
	if err != nil {
		h.log.Error("Failed to list members", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MemberHandler) Join(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Join(ctx, c.Param("id"), req)
	if err != nil {
		h.log.Error("Failed to start membership subscription", "error", err)
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
