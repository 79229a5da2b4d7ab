// Package crm pushes computed results to registered CRM systems over signed
// webhooks.
package crm

import (
	"context"

	"leakcalc_backend/internal/crm/handler"
	"leakcalc_backend/internal/crm/repository"
	"leakcalc_backend/internal/crm/service"
	"leakcalc_backend/internal/events"
	apphttp "leakcalc_backend/internal/http"
	"leakcalc_backend/platform/logger"
	"leakcalc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger
}

func NewModule(pool *pgxpool.Pool, results service.ResultReader, sched service.DeliveryScheduler, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, results, sched, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		log:     log,
	}
}

func (m *Module) Name() string {
	return "crm"
}

// Service returns the service layer for worker wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/crm"))
}

// RegisterHandlers subscribes to domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.SubmissionCompleted{}.EventName(), m)
	m.log.Info("crm module registered event handlers")
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.SubmissionCompleted:
		return m.service.DispatchSubmission(ctx, e)
	default:
		return nil
	}
}

var _ apphttp.Module = (*Module)(nil)
