package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type resultsEmailData struct {
	baseEmailData
	CompanyName        string
	TotalLossFormatted string
	RecoveryFormatted  string
	ConfidenceLevel    string
	PaybackMonths      int
}

type salesAlertEmailData struct {
	baseEmailData
	CompanyName        string
	ContactEmail       string
	Industry           string
	LeadScore          int
	TotalLossFormatted string
}

type sequenceStepEmailData struct {
	baseEmailData
	CompanyName        string
	TotalLossFormatted string
	BodyHTML           template.HTML
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderSequenceStep renders a nurture step body inside the shared layout.
// The body is produced by the sequences package from its own step templates.
func RenderSequenceStep(heading, companyName, totalLossFormatted, bodyHTML, ctaLabel, ctaURL string) (string, error) {
	return renderEmailTemplate("sequence_step.html", sequenceStepEmailData{
		baseEmailData: baseEmailData{
			Title:    heading,
			Heading:  heading,
			CTALabel: ctaLabel,
			CTAURL:   ctaURL,
		},
		CompanyName:        companyName,
		TotalLossFormatted: totalLossFormatted,
		BodyHTML:           template.HTML(bodyHTML),
	})
}
