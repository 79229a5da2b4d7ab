// Package admin provides the JWT-guarded back office for submissions.
package admin

import (
	calcservice "leakcalc_backend/internal/calculator/service"
	apphttp "leakcalc_backend/internal/http"
	"leakcalc_backend/platform/validator"
)

// Module represents the admin domain module
type Module struct {
	handler *Handler
}

// NewModule creates a new admin module.
func NewModule(calc *calcservice.Service, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(calc, val)}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "admin"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
