// Package notification provides event handlers for sending email in response
// to domain events. Domain modules publish events and stay unaware of email
// providers and templates.
package notification

import (
	"context"
	"fmt"

	"leakcalc_backend/internal/calculator/engine"
	"leakcalc_backend/internal/email"
	"leakcalc_backend/internal/events"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/logger"
)

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	cfg    config.EmailConfig
	log    *logger.Logger
}

func New(sender email.Sender, cfg config.EmailConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.SubmissionCompleted{}.EventName(), m)
	bus.Subscribe(events.HighValueLeadIdentified{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.SubmissionCompleted:
		return m.handleSubmissionCompleted(ctx, e)
	case events.HighValueLeadIdentified:
		return m.handleHighValueLead(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleSubmissionCompleted(ctx context.Context, e events.SubmissionCompleted) error {
	params := email.ResultsEmailParams{
		CompanyName:        e.CompanyName,
		TotalLossFormatted: engine.FormatCurrency(e.TotalLoss),
		RecoveryFormatted:  engine.FormatCurrency(e.RecoveryAmount),
		ConfidenceLevel:    e.ConfidenceLevel,
		PaybackMonths:      e.PaybackMonths,
		ResultURL:          fmt.Sprintf("%s/results/%s", m.cfg.GetAppBaseURL(), e.PublicToken),
	}
	if err := m.sender.SendResultsEmail(ctx, e.Email, params); err != nil {
		m.log.EmailEvent("results", e.Email, false, err.Error())
		return err
	}
	m.log.EmailEvent("results", e.Email, true, "")
	return nil
}

func (m *Module) handleHighValueLead(ctx context.Context, e events.HighValueLeadIdentified) error {
	alertAddr := m.cfg.GetSalesAlertAddress()
	if alertAddr == "" {
		return nil
	}

	params := email.SalesAlertParams{
		CompanyName:        e.CompanyName,
		ContactEmail:       e.Email,
		Industry:           e.Industry,
		LeadScore:          e.LeadScore,
		TotalLossFormatted: engine.FormatCurrency(e.TotalLoss),
		AdminURL:           fmt.Sprintf("%s/admin/submissions/%s", m.cfg.GetAppBaseURL(), e.SubmissionID),
	}
	if err := m.sender.SendSalesAlertEmail(ctx, alertAddr, params); err != nil {
		m.log.EmailEvent("sales_alert", alertAddr, false, err.Error())
		return err
	}
	m.log.EmailEvent("sales_alert", alertAddr, true, "")
	return nil
}
