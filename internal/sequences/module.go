// Package sequences enrolls completed submissions into the results nurture
// sequence and delivers its steps.
package sequences

import (
	"context"

	"leakcalc_backend/internal/email"
	"leakcalc_backend/internal/events"
	apphttp "leakcalc_backend/internal/http"
	"leakcalc_backend/internal/sequences/handler"
	"leakcalc_backend/internal/sequences/repository"
	"leakcalc_backend/internal/sequences/service"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

func NewModule(pool *pgxpool.Pool, sender email.Sender, sched service.StepScheduler, cfg config.EmailConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, sender, sched, cfg, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
		log:     log,
	}
}

func (m *Module) Name() string {
	return "sequences"
}

// Service returns the service layer for worker wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public unsubscribe endpoint, linked from email footers.
	sequences := ctx.V1.Group("/public/sequences")
	sequences.Use(ctx.SubmissionRateLimiter.RateLimit())
	m.handler.RegisterRoutes(sequences)
}

// RegisterHandlers subscribes to domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.SubmissionCompleted{}.EventName(), m)
	m.log.Info("sequences module registered event handlers")
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.SubmissionCompleted:
		return m.service.Enroll(ctx, e)
	default:
		return nil
	}
}

var _ apphttp.Module = (*Module)(nil)
