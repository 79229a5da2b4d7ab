// Package handler exposes admin endpoints for managing CRM webhook
// endpoints and inspecting deliveries.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"leakcalc_backend/internal/crm/service"
	"leakcalc_backend/platform/httpkit"
	"leakcalc_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreateEndpointRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	URL    string `json:"url" validate:"required,url"`
	Secret string `json:"secret" validate:"omitempty,min=16,max=128"`
}

type UpdateEndpointRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// EndpointResponse never echoes the shared secret back out.
type EndpointResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/endpoints", h.ListEndpoints)
	rg.POST("/endpoints", h.CreateEndpoint)
	rg.PATCH("/endpoints/:id", h.UpdateEndpoint)
	rg.DELETE("/endpoints/:id", h.DeleteEndpoint)
	rg.GET("/deliveries", h.ListDeliveries)
}

func (h *Handler) ListEndpoints(c *gin.Context) {
	endpoints, err := h.svc.ListEndpoints(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]EndpointResponse, 0, len(endpoints))
	for _, e := range endpoints {
		responses = append(responses, EndpointResponse{
			ID:        e.ID,
			Name:      e.Name,
			URL:       e.URL,
			Enabled:   e.Enabled,
			CreatedAt: e.CreatedAt,
		})
	}
	httpkit.OK(c, gin.H{"endpoints": responses})
}

func (h *Handler) CreateEndpoint(c *gin.Context) {
	var req CreateEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	endpoint, err := h.svc.CreateEndpoint(c.Request.Context(), req.Name, req.URL, req.Secret)
	if httpkit.HandleError(c, err) {
		return
	}

	// The secret is returned exactly once, on creation.
	httpkit.Created(c, gin.H{
		"endpoint": EndpointResponse{
			ID:        endpoint.ID,
			Name:      endpoint.Name,
			URL:       endpoint.URL,
			Enabled:   endpoint.Enabled,
			CreatedAt: endpoint.CreatedAt,
		},
		"secret": endpoint.Secret,
	})
}

func (h *Handler) UpdateEndpoint(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.svc.SetEndpointEnabled(c.Request.Context(), id, *req.Enabled); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "endpoint updated"})
}

func (h *Handler) DeleteEndpoint(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteEndpoint(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "endpoint deleted"})
}

func (h *Handler) ListDeliveries(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	deliveries, err := h.svc.ListRecentDeliveries(c.Request.Context(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"deliveries": deliveries})
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid endpoint id", nil)
		return uuid.Nil, false
	}
	return id, true
}
