package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leakcalc_backend/platform/config"
)

type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string `json:"subject"`
	HTMLContent string `json:"htmlContent"`
}

func NewBrevoSender(cfg config.EmailConfig) *BrevoSender {
	return &BrevoSender{
		apiKey:    cfg.GetBrevoAPIKey(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BrevoSender) SendResultsEmail(ctx context.Context, toEmail string, params ResultsEmailParams) error {
	subject := fmt.Sprintf(subjectResultsFmt, params.TotalLossFormatted)
	content, err := renderEmailTemplate("results.html", resultsEmailData{
		baseEmailData: baseEmailData{
			Title:    "Your revenue leak report",
			Heading:  "Your revenue leak report is ready",
			CTALabel: "View your full report",
			CTAURL:   params.ResultURL,
		},
		CompanyName:        params.CompanyName,
		TotalLossFormatted: params.TotalLossFormatted,
		RecoveryFormatted:  params.RecoveryFormatted,
		ConfidenceLevel:    params.ConfidenceLevel,
		PaybackMonths:      params.PaybackMonths,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendSalesAlertEmail(ctx context.Context, toEmail string, params SalesAlertParams) error {
	subject := fmt.Sprintf(subjectSalesAlertFmt, params.CompanyName, params.LeadScore)
	content, err := renderEmailTemplate("sales_alert.html", salesAlertEmailData{
		baseEmailData: baseEmailData{
			Title:    "High-value lead",
			Heading:  "High-value lead identified",
			CTALabel: "Open in admin",
			CTAURL:   params.AdminURL,
		},
		CompanyName:        params.CompanyName,
		ContactEmail:       params.ContactEmail,
		Industry:           params.Industry,
		LeadScore:          params.LeadScore,
		TotalLossFormatted: params.TotalLossFormatted,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return b.send(ctx, toEmail, subject, htmlContent)
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}
