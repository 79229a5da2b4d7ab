// Package http assembles the gin router from the registered domain modules.
package http

import (
	"context"

	"leakcalc_backend/internal/events"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router needs.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is what the health endpoint pings.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App carries the initialized dependencies from main into the router.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// Modules is every HTTP-facing domain module, mounted in order.
	Modules []Module
}
