package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers the same HTML templates as BrevoSender over a direct
// SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) SendResultsEmail(ctx context.Context, toEmail string, params ResultsEmailParams) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendSalesAlertEmail(ctx context.Context, toEmail string, params SalesAlertParams) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error {
	return s.send(ctx, toEmail, subject, htmlContent)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
