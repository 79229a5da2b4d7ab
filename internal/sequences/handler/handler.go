// Package handler exposes the public unsubscribe endpoint for nurture
// sequences.
package handler

import (
	"net/http"

	"leakcalc_backend/internal/sequences/service"
	"leakcalc_backend/platform/apperr"
	"leakcalc_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/unsubscribe", h.Unsubscribe)
}

func (h *Handler) Unsubscribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid enrollment id"))
		return
	}

	if err := h.svc.Unsubscribe(c.Request.Context(), id); err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusOK, gin.H{"message": "unsubscribed"})
}
