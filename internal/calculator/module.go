// Package calculator provides the revenue leak calculator domain module.
package calculator

import (
	"leakcalc_backend/internal/calculator/engine"
	"leakcalc_backend/internal/calculator/handler"
	"leakcalc_backend/internal/calculator/repository"
	"leakcalc_backend/internal/calculator/service"
	apphttp "leakcalc_backend/internal/http"
	"leakcalc_backend/platform/events"
	"leakcalc_backend/platform/logger"
	"leakcalc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the calculator domain module
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates a new calculator module with all dependencies wired
func NewModule(pool *pgxpool.Pool, benchmarks engine.Benchmarks, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, benchmarks, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "calculator"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for read-side collaborators.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public routes: no auth middleware, stricter rate limit
	submissions := ctx.V1.Group("/public/submissions")
	submissions.Use(ctx.SubmissionRateLimiter.RateLimit())
	m.handler.RegisterRoutes(submissions)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
