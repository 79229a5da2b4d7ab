package http

import (
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own HTTP routes. The
// router knows modules only through this interface.
type Module interface {
	// Name identifies the module in logs.
	Name() string
	// RegisterRoutes mounts the module's routes using the shared context.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext bundles the groups and middleware modules need when
// registering routes.
type RouterContext struct {
	// Engine is the root gin engine, for modules that need engine-level access.
	Engine *gin.Engine
	// V1 is the /api/v1 group.
	V1 *gin.RouterGroup
	// Admin is the JWT-protected group under /api/v1/admin.
	Admin *gin.RouterGroup
	// Config carries the JWT settings for auth middleware.
	Config config.JWTConfig
	// AuthMiddleware authenticates admin callers.
	AuthMiddleware gin.HandlerFunc
	// SubmissionRateLimiter is the stricter limiter applied to the
	// unauthenticated submission and sequence routes.
	SubmissionRateLimiter *httpkit.SubmissionRateLimiter
}
