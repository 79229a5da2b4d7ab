package notification

import (
	"context"
	"testing"

	"leakcalc_backend/internal/email"
	"leakcalc_backend/internal/events"
	"leakcalc_backend/platform/logger"

	"github.com/google/uuid"
)

type testEmailConfig struct {
	alertAddr string
}

func (c testEmailConfig) GetEmailEnabled() bool        { return true }
func (c testEmailConfig) GetBrevoAPIKey() string       { return "" }
func (c testEmailConfig) GetSMTPHost() string          { return "" }
func (c testEmailConfig) GetSMTPPort() int             { return 587 }
func (c testEmailConfig) GetSMTPUsername() string      { return "" }
func (c testEmailConfig) GetSMTPPassword() string      { return "" }
func (c testEmailConfig) GetEmailFromName() string     { return "Revenue Leak Calculator" }
func (c testEmailConfig) GetEmailFromAddress() string  { return "noreply@example.com" }
func (c testEmailConfig) GetSalesAlertAddress() string { return c.alertAddr }
func (c testEmailConfig) GetAppBaseURL() string        { return "https://app.example.com" }

type testSender struct {
	resultsCalls    int
	salesAlertCalls int
	lastResultURL   string
	lastAlertTo     string
}

func (s *testSender) SendResultsEmail(_ context.Context, _ string, params email.ResultsEmailParams) error {
	s.resultsCalls++
	s.lastResultURL = params.ResultURL
	return nil
}

func (s *testSender) SendSalesAlertEmail(_ context.Context, toEmail string, _ email.SalesAlertParams) error {
	s.salesAlertCalls++
	s.lastAlertTo = toEmail
	return nil
}

func (s *testSender) SendCustomEmail(context.Context, string, string, string) error { return nil }

func TestSubmissionCompletedSendsResultsEmail(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testEmailConfig{}, logger.New("test"))

	token := uuid.New()
	err := m.Handle(context.Background(), events.SubmissionCompleted{
		BaseEvent:       events.NewBaseEvent(),
		SubmissionID:    uuid.New(),
		PublicToken:     token,
		Email:           "cfo@acme.test",
		CompanyName:     "Acme SaaS",
		Industry:        "saas-software",
		LeadScore:       63,
		TotalLoss:       142136,
		RecoveryAmount:  78000,
		PaybackMonths:   5,
		ConfidenceLevel: "high",
		EngineVersion:   "2026-v3",
	})
	if err != nil {
		t.Fatalf("handle submission completed: %v", err)
	}
	if sender.resultsCalls != 1 {
		t.Fatalf("expected one results email, got %d", sender.resultsCalls)
	}
	want := "https://app.example.com/results/" + token.String()
	if sender.lastResultURL != want {
		t.Fatalf("result URL = %q, want %q", sender.lastResultURL, want)
	}
}

func TestHighValueLeadAlertRequiresRecipient(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testEmailConfig{}, logger.New("test"))

	event := events.HighValueLeadIdentified{
		BaseEvent:    events.NewBaseEvent(),
		SubmissionID: uuid.New(),
		Email:        "cfo@acme.test",
		CompanyName:  "Acme SaaS",
		LeadScore:    82,
		TotalLoss:    1200000,
	}
	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle without recipient: %v", err)
	}
	if sender.salesAlertCalls != 0 {
		t.Fatalf("expected no alert without a configured recipient")
	}

	m = New(sender, testEmailConfig{alertAddr: "sales@example.com"}, logger.New("test"))
	if err := m.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle with recipient: %v", err)
	}
	if sender.salesAlertCalls != 1 || sender.lastAlertTo != "sales@example.com" {
		t.Fatalf("expected one alert to sales@example.com, got %d to %q", sender.salesAlertCalls, sender.lastAlertTo)
	}
}
