// Package email sends transactional email for the calculator funnel.
// It supports Brevo's HTTP API and direct SMTP delivery via go-mail,
// selected by configuration, with a no-op fallback for local development.
package email

import (
	"context"

	"leakcalc_backend/platform/config"
)

// ResultsEmailParams carries the rendered figures for a results email.
type ResultsEmailParams struct {
	CompanyName        string
	TotalLossFormatted string
	RecoveryFormatted  string
	ConfidenceLevel    string
	PaybackMonths      int
	ResultURL          string
}

// SalesAlertParams carries the data for an internal high-value lead alert.
type SalesAlertParams struct {
	CompanyName        string
	ContactEmail       string
	Industry           string
	LeadScore          int
	TotalLossFormatted string
	AdminURL           string
}

type Sender interface {
	SendResultsEmail(ctx context.Context, toEmail string, params ResultsEmailParams) error
	SendSalesAlertEmail(ctx context.Context, toEmail string, params SalesAlertParams) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

type NoopSender struct{}

func (NoopSender) SendResultsEmail(ctx context.Context, toEmail string, params ResultsEmailParams) error {
	return nil
}

func (NoopSender) SendSalesAlertEmail(ctx context.Context, toEmail string, params SalesAlertParams) error {
	return nil
}

func (NoopSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return nil
}

// NewSender picks a concrete sender based on configuration. Brevo wins when
// an API key is set, otherwise SMTP when a host is configured.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetBrevoAPIKey() != "" {
		return NewBrevoSender(cfg), nil
	}
	if cfg.GetSMTPHost() != "" {
		return NewSMTPSender(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		), nil
	}
	return NoopSender{}, nil
}
