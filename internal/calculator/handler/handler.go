// Package handler exposes the public calculator endpoints.
package handler

import (
	"net/http"

	"leakcalc_backend/internal/calculator/service"
	"leakcalc_backend/internal/calculator/transport"
	"leakcalc_backend/platform/httpkit"
	"leakcalc_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles unauthenticated HTTP requests for calculator submissions.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new calculator handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the public submission routes (no auth middleware).
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.CreateSubmission)
	rg.PUT("/:token/steps/pipeline", h.SavePipelineStep)
	rg.PUT("/:token/steps/conversion", h.SaveConversionStep)
	rg.PUT("/:token/steps/operations", h.SaveOperationsStep)
	rg.POST("/:token/complete", h.Complete)
	rg.GET("/:token/result", h.GetResult)
}

// CreateSubmission handles POST /api/v1/public/submissions
func (h *Handler) CreateSubmission(c *gin.Context) {
	var req transport.CreateSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	result, err := h.svc.CreateSubmission(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

// SavePipelineStep handles PUT /api/v1/public/submissions/:token/steps/pipeline
func (h *Handler) SavePipelineStep(c *gin.Context) {
	token, ok := h.parseToken(c)
	if !ok {
		return
	}

	var req transport.PipelineStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if httpkit.HandleError(c, h.svc.SavePipelineStep(c.Request.Context(), token, req)) {
		return
	}
	httpkit.OK(c, gin.H{"saved": true})
}

// SaveConversionStep handles PUT /api/v1/public/submissions/:token/steps/conversion
func (h *Handler) SaveConversionStep(c *gin.Context) {
	token, ok := h.parseToken(c)
	if !ok {
		return
	}

	var req transport.ConversionStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if httpkit.HandleError(c, h.svc.SaveConversionStep(c.Request.Context(), token, req)) {
		return
	}
	httpkit.OK(c, gin.H{"saved": true})
}

// SaveOperationsStep handles PUT /api/v1/public/submissions/:token/steps/operations
func (h *Handler) SaveOperationsStep(c *gin.Context) {
	token, ok := h.parseToken(c)
	if !ok {
		return
	}

	var req transport.OperationsStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if httpkit.HandleError(c, h.svc.SaveOperationsStep(c.Request.Context(), token, req)) {
		return
	}
	httpkit.OK(c, gin.H{"saved": true})
}

// Complete handles POST /api/v1/public/submissions/:token/complete
func (h *Handler) Complete(c *gin.Context) {
	token, ok := h.parseToken(c)
	if !ok {
		return
	}

	result, err := h.svc.Complete(c.Request.Context(), token)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetResult handles GET /api/v1/public/submissions/:token/result
func (h *Handler) GetResult(c *gin.Context) {
	token, ok := h.parseToken(c)
	if !ok {
		return
	}

	result, err := h.svc.GetResult(c.Request.Context(), token)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) parseToken(c *gin.Context) (uuid.UUID, bool) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid submission token", nil)
		return uuid.Nil, false
	}
	return token, true
}
