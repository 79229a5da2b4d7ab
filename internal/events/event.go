// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leakcalc_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Calculator Domain Events
// =============================================================================

// SubmissionStarted is published when a visitor opens a new submission.
type SubmissionStarted struct {
	BaseEvent
	SubmissionID uuid.UUID `json:"submissionId"`
	Email        string    `json:"email"`
	CompanyName  string    `json:"companyName"`
	Industry     string    `json:"industry"`
}

func (e SubmissionStarted) EventName() string { return "calculator.submission.started" }

// SubmissionCompleted is published after a result has been computed and
// stored. Email sequences, CRM sync, and archival all hang off this event.
type SubmissionCompleted struct {
	BaseEvent
	SubmissionID    uuid.UUID `json:"submissionId"`
	PublicToken     uuid.UUID `json:"publicToken"`
	Email           string    `json:"email"`
	CompanyName     string    `json:"companyName"`
	Industry        string    `json:"industry"`
	LeadScore       int       `json:"leadScore"`
	TotalLoss       float64   `json:"totalLoss"`
	RecoveryAmount  float64   `json:"recoveryAmount"`
	PaybackMonths   int       `json:"paybackMonths"`
	ConfidenceLevel string    `json:"confidenceLevel"`
	EngineVersion   string    `json:"engineVersion"`
}

func (e SubmissionCompleted) EventName() string { return "calculator.submission.completed" }

// HighValueLeadIdentified is published alongside SubmissionCompleted when
// the lead score clears the sales-alert threshold.
type HighValueLeadIdentified struct {
	BaseEvent
	SubmissionID uuid.UUID `json:"submissionId"`
	Email        string    `json:"email"`
	CompanyName  string    `json:"companyName"`
	Industry     string    `json:"industry"`
	LeadScore    int       `json:"leadScore"`
	TotalLoss    float64   `json:"totalLoss"`
}

func (e HighValueLeadIdentified) EventName() string { return "calculator.lead.high_value" }

// ResultRecomputed is published when an admin or the backfill recomputes a
// stored submission under a newer engine version.
type ResultRecomputed struct {
	BaseEvent
	SubmissionID  uuid.UUID `json:"submissionId"`
	EngineVersion string    `json:"engineVersion"`
	LeadScore     int       `json:"leadScore"`
	TotalLoss     float64   `json:"totalLoss"`
}

func (e ResultRecomputed) EventName() string { return "calculator.result.recomputed" }
