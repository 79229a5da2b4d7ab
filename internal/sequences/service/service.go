// Package service runs the post-results nurture sequence.
package service

import (
	"context"
	"fmt"
	"time"

	"leakcalc_backend/internal/calculator/engine"
	"leakcalc_backend/internal/email"
	"leakcalc_backend/internal/events"
	"leakcalc_backend/internal/scheduler"
	"leakcalc_backend/internal/sequences/repository"
	"leakcalc_backend/platform/apperr"
	"leakcalc_backend/platform/config"
	"leakcalc_backend/platform/logger"

	"github.com/google/uuid"
)

// SequenceLeakResults is the nurture sequence every completed submission
// is enrolled into.
const SequenceLeakResults = "leak-results"

// EnrollmentStore is the persistence surface the service needs.
type EnrollmentStore interface {
	Create(ctx context.Context, e repository.Enrollment) error
	GetByID(ctx context.Context, id uuid.UUID) (repository.Enrollment, error)
	MarkStepSent(ctx context.Context, id uuid.UUID, nextStep int, nextStepAt *time.Time) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

// StepScheduler schedules a nurture step for future delivery.
type StepScheduler interface {
	ScheduleSequenceStep(ctx context.Context, payload scheduler.SequenceStepPayload, runAt time.Time) error
}

type sequenceStep struct {
	OffsetDays int
	Subject    string
	Heading    string
	BodyHTML   string
	CTALabel   string
	CTAPath    string
}

// leakResultsSteps are sent after the initial results email, which goes out
// on completion. Offsets are days since enrollment.
var leakResultsSteps = []sequenceStep{
	{
		OffsetDays: 2,
		Subject:    "Where your pipeline leaks first",
		Heading:    "Where your pipeline leaks first",
		BodyHTML: "<p>Slow lead response is usually the biggest single leak. Leads contacted " +
			"within five minutes convert at several times the rate of leads contacted after an hour.</p>" +
			"<p>Your report shows how much of your loss sits in this category and what a faster " +
			"first response would be worth.</p>",
		CTALabel: "Revisit your report",
		CTAPath:  "/results/%s",
	},
	{
		OffsetDays: 5,
		Subject:    "The revenue hiding in failed payments",
		Heading:    "The revenue hiding in failed payments",
		BodyHTML: "<p>Most involuntary churn is recoverable. Smart retries and dunning flows " +
			"routinely win back more than half of failed payments, yet most teams leave them on defaults.</p>",
		CTALabel: "Revisit your report",
		CTAPath:  "/results/%s",
	},
	{
		OffsetDays: 9,
		Subject:    "Is your self-serve funnel underperforming?",
		Heading:    "Is your self-serve funnel underperforming?",
		BodyHTML: "<p>A conversion rate below your industry benchmark compounds quietly. Closing " +
			"even part of the gap is usually the highest-leverage fix after lead response.</p>",
		CTALabel: "Revisit your report",
		CTAPath:  "/results/%s",
	},
	{
		OffsetDays: 14,
		Subject:    "Your 90-day recovery plan",
		Heading:    "Your 90-day recovery plan",
		BodyHTML: "<p>Your report includes a phased recovery timeline. If you want help turning it " +
			"into an execution plan, we can walk through it together.</p>",
		CTALabel: "Book a call",
		CTAPath:  "/book-a-call",
	},
}

type Service struct {
	store  EnrollmentStore
	sender email.Sender
	sched  StepScheduler
	cfg    config.EmailConfig
	log    *logger.Logger
}

func New(store EnrollmentStore, sender email.Sender, sched StepScheduler, cfg config.EmailConfig, log *logger.Logger) *Service {
	return &Service{store: store, sender: sender, sched: sched, cfg: cfg, log: log}
}

// Enroll puts a completed submission into the leak-results sequence and
// schedules its first step.
func (s *Service) Enroll(ctx context.Context, e events.SubmissionCompleted) error {
	now := time.Now().UTC()
	firstStepAt := stepRunAt(now, 0)

	enrollment := repository.Enrollment{
		ID:           uuid.New(),
		SubmissionID: e.SubmissionID,
		PublicToken:  e.PublicToken,
		Email:        e.Email,
		CompanyName:  e.CompanyName,
		TotalLoss:    e.TotalLoss,
		Sequence:     SequenceLeakResults,
		CurrentStep:  0,
		Status:       repository.StatusActive,
		EnrolledAt:   now,
		NextStepAt:   &firstStepAt,
	}

	if err := s.store.Create(ctx, enrollment); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil
		}
		return err
	}

	if s.sched == nil {
		return nil
	}
	return s.sched.ScheduleSequenceStep(ctx, scheduler.SequenceStepPayload{
		EnrollmentID: enrollment.ID.String(),
		Step:         0,
	}, firstStepAt)
}

// ProcessStepDue sends the step email and schedules the next one. Stale
// tasks for already-sent steps are dropped silently.
func (s *Service) ProcessStepDue(ctx context.Context, enrollmentID uuid.UUID, step int) error {
	enrollment, err := s.store.GetByID(ctx, enrollmentID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}

	if enrollment.Status != repository.StatusActive || step != enrollment.CurrentStep {
		return nil
	}
	if step < 0 || step >= len(leakResultsSteps) {
		return nil
	}

	def := leakResultsSteps[step]
	content, err := email.RenderSequenceStep(
		def.Heading,
		enrollment.CompanyName,
		engine.FormatCurrency(enrollment.TotalLoss),
		def.BodyHTML,
		def.CTALabel,
		s.stepURL(def, enrollment),
	)
	if err != nil {
		return err
	}

	if err := s.sender.SendCustomEmail(ctx, enrollment.Email, def.Subject, content); err != nil {
		s.log.EmailEvent("sequence_step", enrollment.Email, false, err.Error())
		return err
	}
	s.log.EmailEvent("sequence_step", enrollment.Email, true, "")

	next := step + 1
	if next >= len(leakResultsSteps) {
		return s.store.MarkStepSent(ctx, enrollmentID, next, nil)
	}

	nextAt := stepRunAt(enrollment.EnrolledAt, next)
	if err := s.store.MarkStepSent(ctx, enrollmentID, next, &nextAt); err != nil {
		return err
	}

	if s.sched == nil {
		return nil
	}
	return s.sched.ScheduleSequenceStep(ctx, scheduler.SequenceStepPayload{
		EnrollmentID: enrollmentID.String(),
		Step:         next,
	}, nextAt)
}

// Unsubscribe cancels an active enrollment. The enrollment ID doubles as the
// unsubscribe token in email footers.
func (s *Service) Unsubscribe(ctx context.Context, enrollmentID uuid.UUID) error {
	return s.store.Cancel(ctx, enrollmentID)
}

func (s *Service) stepURL(def sequenceStep, e repository.Enrollment) string {
	base := s.cfg.GetAppBaseURL()
	if def.CTAPath == "/book-a-call" {
		return base + def.CTAPath
	}
	return base + fmt.Sprintf(def.CTAPath, e.PublicToken)
}

func stepRunAt(enrolledAt time.Time, step int) time.Time {
	return enrolledAt.Add(time.Duration(leakResultsSteps[step].OffsetDays) * 24 * time.Hour)
}
