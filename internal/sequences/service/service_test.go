package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"leakcalc_backend/internal/email"
	"leakcalc_backend/internal/events"
	"leakcalc_backend/internal/scheduler"
	"leakcalc_backend/internal/sequences/repository"
	"leakcalc_backend/platform/apperr"
	"leakcalc_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	enrollments map[uuid.UUID]repository.Enrollment
	bySub       map[uuid.UUID]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		enrollments: make(map[uuid.UUID]repository.Enrollment),
		bySub:       make(map[uuid.UUID]bool),
	}
}

func (s *fakeStore) Create(_ context.Context, e repository.Enrollment) error {
	if s.bySub[e.SubmissionID] {
		return apperr.Conflict("submission already enrolled")
	}
	s.bySub[e.SubmissionID] = true
	s.enrollments[e.ID] = e
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (repository.Enrollment, error) {
	e, ok := s.enrollments[id]
	if !ok {
		return repository.Enrollment{}, apperr.NotFound("enrollment not found")
	}
	return e, nil
}

func (s *fakeStore) MarkStepSent(_ context.Context, id uuid.UUID, nextStep int, nextStepAt *time.Time) error {
	e, ok := s.enrollments[id]
	if !ok || e.Status != repository.StatusActive {
		return apperr.NotFound("active enrollment not found")
	}
	e.CurrentStep = nextStep
	e.NextStepAt = nextStepAt
	if nextStepAt == nil {
		e.Status = repository.StatusCompleted
	}
	s.enrollments[id] = e
	return nil
}

func (s *fakeStore) Cancel(_ context.Context, id uuid.UUID) error {
	e, ok := s.enrollments[id]
	if !ok || e.Status != repository.StatusActive {
		return apperr.NotFound("active enrollment not found")
	}
	e.Status = repository.StatusCancelled
	e.NextStepAt = nil
	s.enrollments[id] = e
	return nil
}

type fakeSched struct {
	scheduled []scheduler.SequenceStepPayload
	runAts    []time.Time
}

func (s *fakeSched) ScheduleSequenceStep(_ context.Context, payload scheduler.SequenceStepPayload, runAt time.Time) error {
	s.scheduled = append(s.scheduled, payload)
	s.runAts = append(s.runAts, runAt)
	return nil
}

type fakeFullSender struct {
	customSent  int
	lastTo      string
	lastSubject string
	lastHTML    string
}

func (s *fakeFullSender) SendResultsEmail(context.Context, string, email.ResultsEmailParams) error {
	return nil
}

func (s *fakeFullSender) SendSalesAlertEmail(context.Context, string, email.SalesAlertParams) error {
	return nil
}

func (s *fakeFullSender) SendCustomEmail(_ context.Context, toEmail, subject, htmlContent string) error {
	s.customSent++
	s.lastTo = toEmail
	s.lastSubject = subject
	s.lastHTML = htmlContent
	return nil
}

type testEmailConfig struct{}

func (testEmailConfig) GetEmailEnabled() bool        { return true }
func (testEmailConfig) GetBrevoAPIKey() string       { return "" }
func (testEmailConfig) GetSMTPHost() string          { return "" }
func (testEmailConfig) GetSMTPPort() int             { return 587 }
func (testEmailConfig) GetSMTPUsername() string      { return "" }
func (testEmailConfig) GetSMTPPassword() string      { return "" }
func (testEmailConfig) GetEmailFromName() string     { return "Revenue Leak Calculator" }
func (testEmailConfig) GetEmailFromAddress() string  { return "noreply@example.com" }
func (testEmailConfig) GetSalesAlertAddress() string { return "" }
func (testEmailConfig) GetAppBaseURL() string        { return "https://app.example.com" }

func completedEvent() events.SubmissionCompleted {
	return events.SubmissionCompleted{
		BaseEvent:       events.NewBaseEvent(),
		SubmissionID:    uuid.New(),
		PublicToken:     uuid.New(),
		Email:           "cfo@acme.test",
		CompanyName:     "Acme SaaS",
		TotalLoss:       142136,
		ConfidenceLevel: "high",
	}
}

func TestEnrollSchedulesFirstStep(t *testing.T) {
	store := newFakeStore()
	sched := &fakeSched{}
	svc := New(store, &fakeFullSender{}, sched, testEmailConfig{}, logger.New("test"))

	if err := svc.Enroll(context.Background(), completedEvent()); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	if len(store.enrollments) != 1 {
		t.Fatalf("expected one enrollment, got %d", len(store.enrollments))
	}
	if len(sched.scheduled) != 1 || sched.scheduled[0].Step != 0 {
		t.Fatalf("expected step 0 scheduled, got %+v", sched.scheduled)
	}

	for _, e := range store.enrollments {
		if e.Status != repository.StatusActive || e.CurrentStep != 0 {
			t.Fatalf("unexpected enrollment state: %+v", e)
		}
		wantAt := e.EnrolledAt.Add(2 * 24 * time.Hour)
		if !sched.runAts[0].Equal(wantAt) {
			t.Fatalf("first step at %v, want %v", sched.runAts[0], wantAt)
		}
	}
}

func TestEnrollIsIdempotentPerSubmission(t *testing.T) {
	store := newFakeStore()
	sched := &fakeSched{}
	svc := New(store, &fakeFullSender{}, sched, testEmailConfig{}, logger.New("test"))

	event := completedEvent()
	if err := svc.Enroll(context.Background(), event); err != nil {
		t.Fatalf("first enroll: %v", err)
	}
	if err := svc.Enroll(context.Background(), event); err != nil {
		t.Fatalf("second enroll should be a no-op: %v", err)
	}

	if len(store.enrollments) != 1 || len(sched.scheduled) != 1 {
		t.Fatalf("expected one enrollment and one scheduled step, got %d/%d",
			len(store.enrollments), len(sched.scheduled))
	}
}

func TestProcessStepDueAdvancesAndSchedulesNext(t *testing.T) {
	store := newFakeStore()
	sched := &fakeSched{}
	sender := &fakeFullSender{}
	svc := New(store, sender, sched, testEmailConfig{}, logger.New("test"))

	ctx := context.Background()
	if err := svc.Enroll(ctx, completedEvent()); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	var id uuid.UUID
	var enrolledAt time.Time
	for _, e := range store.enrollments {
		id = e.ID
		enrolledAt = e.EnrolledAt
	}

	if err := svc.ProcessStepDue(ctx, id, 0); err != nil {
		t.Fatalf("process step 0: %v", err)
	}

	if sender.customSent != 1 {
		t.Fatalf("expected one step email, got %d", sender.customSent)
	}
	if !strings.Contains(sender.lastHTML, "Acme SaaS") || !strings.Contains(sender.lastHTML, "$142,136") {
		t.Fatalf("step email missing enrollment data")
	}

	e := store.enrollments[id]
	if e.CurrentStep != 1 || e.Status != repository.StatusActive {
		t.Fatalf("enrollment not advanced: %+v", e)
	}
	if len(sched.scheduled) != 2 || sched.scheduled[1].Step != 1 {
		t.Fatalf("expected step 1 scheduled, got %+v", sched.scheduled)
	}
	wantAt := enrolledAt.Add(5 * 24 * time.Hour)
	if !sched.runAts[1].Equal(wantAt) {
		t.Fatalf("step 1 at %v, want %v", sched.runAts[1], wantAt)
	}
}

func TestProcessStepDueDropsStaleAndCancelled(t *testing.T) {
	store := newFakeStore()
	sched := &fakeSched{}
	sender := &fakeFullSender{}
	svc := New(store, sender, sched, testEmailConfig{}, logger.New("test"))

	ctx := context.Background()
	if err := svc.Enroll(ctx, completedEvent()); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	var id uuid.UUID
	for _, e := range store.enrollments {
		id = e.ID
	}

	// Stale task for a step that is not current.
	if err := svc.ProcessStepDue(ctx, id, 3); err != nil {
		t.Fatalf("stale step: %v", err)
	}
	if sender.customSent != 0 {
		t.Fatalf("stale step should not send")
	}

	if err := svc.Unsubscribe(ctx, id); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := svc.ProcessStepDue(ctx, id, 0); err != nil {
		t.Fatalf("cancelled step: %v", err)
	}
	if sender.customSent != 0 {
		t.Fatalf("cancelled enrollment should not send")
	}

	// Unknown enrollment is dropped, not retried forever.
	if err := svc.ProcessStepDue(ctx, uuid.New(), 0); err != nil {
		t.Fatalf("unknown enrollment: %v", err)
	}
}

func TestFinalStepCompletesSequence(t *testing.T) {
	store := newFakeStore()
	sched := &fakeSched{}
	sender := &fakeFullSender{}
	svc := New(store, sender, sched, testEmailConfig{}, logger.New("test"))

	ctx := context.Background()
	if err := svc.Enroll(ctx, completedEvent()); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	var id uuid.UUID
	for _, e := range store.enrollments {
		id = e.ID
	}

	for step := 0; step < len(leakResultsSteps); step++ {
		if err := svc.ProcessStepDue(ctx, id, step); err != nil {
			t.Fatalf("process step %d: %v", step, err)
		}
	}

	e := store.enrollments[id]
	if e.Status != repository.StatusCompleted {
		t.Fatalf("expected completed sequence, got %s", e.Status)
	}
	if e.NextStepAt != nil {
		t.Fatalf("completed sequence should have no next step")
	}
	if sender.customSent != len(leakResultsSteps) {
		t.Fatalf("expected %d step emails, sent %d", len(leakResultsSteps), sender.customSent)
	}
}
