package admin

import (
	"net/http"
	"strconv"

	"leakcalc_backend/internal/calculator/repository"
	calcservice "leakcalc_backend/internal/calculator/service"
	"leakcalc_backend/platform/httpkit"
	"leakcalc_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles admin HTTP requests.
type Handler struct {
	calc *calcservice.Service
	val  *validator.Validator
}

// NewHandler creates a new admin handler.
func NewHandler(calc *calcservice.Service, val *validator.Validator) *Handler {
	return &Handler{calc: calc, val: val}
}

// RegisterRoutes registers the admin routes. The group already carries
// authentication and role middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions", h.ListSubmissions)
	rg.GET("/stats", h.GetStats)
	rg.POST("/submissions/:id/recompute", h.Recompute)
	rg.GET("/recompute/pending", h.PendingRecompute)
}

// ListSubmissions handles GET /api/v1/admin/submissions
func (h *Handler) ListSubmissions(c *gin.Context) {
	params := repository.ListParams{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 25),
	}

	if status := c.Query("status"); status != "" {
		params.Status = &status
	}
	if raw := c.Query("minLeadScore"); raw != "" {
		minScore, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid minLeadScore", nil)
			return
		}
		params.MinLeadScore = &minScore
	}

	result, err := h.calc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GetStats handles GET /api/v1/admin/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.calc.Stats(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

// Recompute handles POST /api/v1/admin/submissions/:id/recompute
// The response includes the step trace so an operator can see how the
// stored inputs flow through the current model.
func (h *Handler) Recompute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid submission ID", nil)
		return
	}

	result, trace, err := h.calc.Recompute(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"result": result,
		"trace":  trace,
	})
}

// PendingRecompute handles GET /api/v1/admin/recompute/pending
func (h *Handler) PendingRecompute(c *gin.Context) {
	ids, err := h.calc.PendingRecomputeIDs(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"pending": ids, "count": len(ids)})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
