package transport

import (
	"time"

	"leakcalc_backend/internal/calculator/engine"

	"github.com/google/uuid"
)

// SubmissionStatus tracks a submission through the multi-step form.
type SubmissionStatus string

const (
	StatusInProgress SubmissionStatus = "in_progress"
	StatusCompleted  SubmissionStatus = "completed"
	StatusAbandoned  SubmissionStatus = "abandoned"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// CreateSubmissionRequest opens a new submission with the contact step.
type CreateSubmissionRequest struct {
	Email       string   `json:"email" validate:"required,email,max=320"`
	CompanyName string   `json:"companyName" validate:"required,min=1,max=200"`
	Industry    string   `json:"industry" validate:"omitempty,max=50"`
	CurrentARR  *float64 `json:"currentARR"`
	MonthlyMRR  *float64 `json:"monthlyMRR"`
}

// PipelineStepRequest is step two: lead flow and deal economics.
type PipelineStepRequest struct {
	MonthlyLeads          *float64 `json:"monthlyLeads"`
	AverageDealValue      *float64 `json:"averageDealValue"`
	LeadResponseTimeHours *float64 `json:"leadResponseTimeHours"`
}

// ConversionStepRequest is step three: self-serve funnel and billing health.
type ConversionStepRequest struct {
	MonthlyFreeSignups          *float64 `json:"monthlyFreeSignups"`
	FreeToPaidConversionRatePct *float64 `json:"freeToPaidConversionRate"`
	FailedPaymentRatePct        *float64 `json:"failedPaymentRate"`
}

// OperationsStepRequest is step four: manual work plus optional signals.
type OperationsStepRequest struct {
	ManualHoursPerWeek *float64 `json:"manualHoursPerWeek"`
	HourlyRate         *float64 `json:"hourlyRate"`
	Phone              string   `json:"phone" validate:"omitempty,max=40"`
	HasProductUsage    *bool    `json:"hasProductUsage"`
	EngagementScore    *float64 `json:"engagementScore"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// SubmissionResponse acknowledges submission creation or a step save.
type SubmissionResponse struct {
	PublicToken   uuid.UUID        `json:"publicToken"`
	Status        SubmissionStatus `json:"status"`
	CompletedStep int              `json:"completedStep"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// ResultSummary is a compact view of the headline numbers, suitable for the
// results page hero section and the notification email.
type ResultSummary struct {
	TotalLossFormatted    string `json:"totalLossFormatted"`
	RecoveryLowFormatted  string `json:"recoveryLowFormatted"`
	RecoveryHighFormatted string `json:"recoveryHighFormatted"`
	ConfidenceLevel       string `json:"confidenceLevel"`
	PaybackMonths         int    `json:"paybackMonths"`
	LeadScore             int    `json:"leadScore"`
}

// ResultResponse is the full computed result exposed at the public token URL.
type ResultResponse struct {
	PublicToken   uuid.UUID                       `json:"publicToken"`
	CompanyName   string                          `json:"companyName"`
	EngineVersion string                          `json:"engineVersion"`
	ComputedAt    time.Time                       `json:"computedAt"`
	Summary       ResultSummary                   `json:"summary"`
	Result        engine.UnifiedCalculationResult `json:"result"`
}
