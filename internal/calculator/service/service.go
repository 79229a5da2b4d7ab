// Package service orchestrates calculator submissions: contact capture,
// step persistence, result computation, and event publication.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leakcalc_backend/internal/calculator/engine"
	"leakcalc_backend/internal/calculator/repository"
	"leakcalc_backend/internal/calculator/transport"
	"leakcalc_backend/internal/events"
	"leakcalc_backend/platform/apperr"
	"leakcalc_backend/platform/logger"
	"leakcalc_backend/platform/phone"
	"leakcalc_backend/platform/sanitize"

	"github.com/google/uuid"
)

// highValueLeadThreshold is the score at which sales gets alerted.
const highValueLeadThreshold = 70

// abandonedAfter is how long an untouched in-progress submission lives
// before the sweep marks it abandoned.
const abandonedAfter = 48 * time.Hour

// Service coordinates the calculator domain.
type Service struct {
	repo       *repository.Repository
	benchmarks engine.Benchmarks
	bus        events.Bus
	log        *logger.Logger
}

// New creates a new calculator service.
func New(repo *repository.Repository, benchmarks engine.Benchmarks, log *logger.Logger) *Service {
	return &Service{repo: repo, benchmarks: benchmarks, log: log}
}

// SetEventBus wires the domain event bus. Optional; without it the service
// simply does not publish.
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// CreateSubmission opens a submission from the contact step.
func (s *Service) CreateSubmission(ctx context.Context, req transport.CreateSubmissionRequest) (transport.SubmissionResponse, error) {
	now := time.Now().UTC()

	inputs, err := json.Marshal(map[string]interface{}{
		"currentARR": req.CurrentARR,
		"monthlyMRR": req.MonthlyMRR,
		"industry":   req.Industry,
	})
	if err != nil {
		return transport.SubmissionResponse{}, fmt.Errorf("failed to encode step inputs: %w", err)
	}

	sub := &repository.Submission{
		ID:            uuid.New(),
		PublicToken:   uuid.New(),
		Email:         sanitize.Text(req.Email),
		CompanyName:   sanitize.Text(req.CompanyName),
		Industry:      string(engine.SanitizeInputs(engine.RawInputs{Industry: req.Industry}).Industry),
		Status:        string(transport.StatusInProgress),
		CompletedStep: 1,
		Inputs:        inputs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return transport.SubmissionResponse{}, err
	}

	s.publish(ctx, events.SubmissionStarted{
		BaseEvent:    events.NewBaseEvent(),
		SubmissionID: sub.ID,
		Email:        sub.Email,
		CompanyName:  sub.CompanyName,
		Industry:     sub.Industry,
	})

	return transport.SubmissionResponse{
		PublicToken:   sub.PublicToken,
		Status:        transport.StatusInProgress,
		CompletedStep: 1,
		CreatedAt:     now,
	}, nil
}

// SavePipelineStep persists step two.
func (s *Service) SavePipelineStep(ctx context.Context, token uuid.UUID, req transport.PipelineStepRequest) error {
	return s.saveStep(ctx, token, 2, map[string]interface{}{
		"monthlyLeads":          req.MonthlyLeads,
		"averageDealValue":      req.AverageDealValue,
		"leadResponseTimeHours": req.LeadResponseTimeHours,
	}, nil)
}

// SaveConversionStep persists step three.
func (s *Service) SaveConversionStep(ctx context.Context, token uuid.UUID, req transport.ConversionStepRequest) error {
	return s.saveStep(ctx, token, 3, map[string]interface{}{
		"monthlyFreeSignups":       req.MonthlyFreeSignups,
		"freeToPaidConversionRate": req.FreeToPaidConversionRatePct,
		"failedPaymentRate":        req.FailedPaymentRatePct,
	}, nil)
}

// SaveOperationsStep persists step four, including the optional phone.
func (s *Service) SaveOperationsStep(ctx context.Context, token uuid.UUID, req transport.OperationsStepRequest) error {
	var phonePtr *string
	if req.Phone != "" {
		normalized := phone.NormalizeE164(req.Phone)
		phonePtr = &normalized
	}

	return s.saveStep(ctx, token, 4, map[string]interface{}{
		"manualHoursPerWeek": req.ManualHoursPerWeek,
		"hourlyRate":         req.HourlyRate,
		"hasProductUsage":    req.HasProductUsage,
		"engagementScore":    req.EngagementScore,
	}, phonePtr)
}

func (s *Service) saveStep(ctx context.Context, token uuid.UUID, step int, fields map[string]interface{}, phonePtr *string) error {
	// Omit nil values so a re-saved step never erases earlier answers.
	for key, value := range fields {
		switch v := value.(type) {
		case *float64:
			if v == nil {
				delete(fields, key)
			}
		case *bool:
			if v == nil {
				delete(fields, key)
			}
		}
	}

	payload, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to encode step inputs: %w", err)
	}

	return s.repo.UpdateStep(ctx, token, step, payload, phonePtr)
}

// Complete computes and stores the result for a submission, publishes the
// completion events, and returns the full result payload.
func (s *Service) Complete(ctx context.Context, token uuid.UUID) (transport.ResultResponse, error) {
	sub, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return transport.ResultResponse{}, err
	}
	if sub.Status == string(transport.StatusCompleted) {
		return transport.ResultResponse{}, apperr.Conflict("submission already completed")
	}

	result, record, err := s.compute(sub)
	if err != nil {
		return transport.ResultResponse{}, err
	}

	if err := s.repo.Complete(ctx, sub.ID, record); err != nil {
		return transport.ResultResponse{}, err
	}

	s.log.CalculationCompleted(sub.ID.String(), result.LeadScore.Score, result.Losses.Total, string(result.Confidence.Level))

	s.publish(ctx, events.SubmissionCompleted{
		BaseEvent:       events.NewBaseEvent(),
		SubmissionID:    sub.ID,
		PublicToken:     sub.PublicToken,
		Email:           sub.Email,
		CompanyName:     sub.CompanyName,
		Industry:        sub.Industry,
		LeadScore:       result.LeadScore.Score,
		TotalLoss:       result.Losses.Total,
		RecoveryAmount:  result.Recovery[engine.ScenarioOptimistic].TotalRecovery,
		PaybackMonths:   result.Investment.PaybackMonths,
		ConfidenceLevel: string(result.Confidence.Level),
		EngineVersion:   result.EngineVersion,
	})

	if result.LeadScore.Score >= highValueLeadThreshold {
		s.publish(ctx, events.HighValueLeadIdentified{
			BaseEvent:    events.NewBaseEvent(),
			SubmissionID: sub.ID,
			Email:        sub.Email,
			CompanyName:  sub.CompanyName,
			Industry:     sub.Industry,
			LeadScore:    result.LeadScore.Score,
			TotalLoss:    result.Losses.Total,
		})
	}

	return buildResultResponse(sub, record, result), nil
}

// GetResult returns the stored result for a completed submission.
func (s *Service) GetResult(ctx context.Context, token uuid.UUID) (transport.ResultResponse, error) {
	sub, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return transport.ResultResponse{}, err
	}
	if sub.Status != string(transport.StatusCompleted) {
		return transport.ResultResponse{}, apperr.NotFound("result not available yet")
	}

	record, err := s.repo.GetLatestResult(ctx, sub.ID)
	if err != nil {
		return transport.ResultResponse{}, err
	}

	var result engine.UnifiedCalculationResult
	if err := json.Unmarshal(record.Payload, &result); err != nil {
		return transport.ResultResponse{}, fmt.Errorf("failed to decode stored result: %w", err)
	}

	return buildResultResponse(sub, &record, result), nil
}

// RecomputeTrace is one traced step from a recompute run.
type RecomputeTrace struct {
	Step   string             `json:"step"`
	Values map[string]float64 `json:"values"`
}

// Recompute reruns the engine for a completed submission under the current
// engine version, stores the new result, and returns it with the trace.
func (s *Service) Recompute(ctx context.Context, submissionID uuid.UUID) (engine.UnifiedCalculationResult, []RecomputeTrace, error) {
	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return engine.UnifiedCalculationResult{}, nil, err
	}
	if sub.Status != string(transport.StatusCompleted) {
		return engine.UnifiedCalculationResult{}, nil, apperr.Conflict("submission is not completed")
	}

	var traces []RecomputeTrace
	raw, err := decodeRawInputs(sub)
	if err != nil {
		return engine.UnifiedCalculationResult{}, nil, err
	}

	result := engine.ComputeResults(raw,
		engine.WithBenchmarks(s.benchmarks),
		engine.WithTrace(func(step string, values map[string]float64) {
			traces = append(traces, RecomputeTrace{Step: step, Values: values})
		}),
	)

	record, err := buildResultRecord(sub.ID, result)
	if err != nil {
		return engine.UnifiedCalculationResult{}, nil, err
	}
	if err := s.repo.SaveResult(ctx, record); err != nil {
		return engine.UnifiedCalculationResult{}, nil, err
	}

	s.publish(ctx, events.ResultRecomputed{
		BaseEvent:     events.NewBaseEvent(),
		SubmissionID:  sub.ID,
		EngineVersion: result.EngineVersion,
		LeadScore:     result.LeadScore.Score,
		TotalLoss:     result.Losses.Total,
	})

	return result, traces, nil
}

// List exposes the repository listing for the admin module.
func (s *Service) List(ctx context.Context, params repository.ListParams) (repository.ListResult, error) {
	return s.repo.List(ctx, params)
}

// Stats exposes aggregate figures for the admin dashboard.
func (s *Service) Stats(ctx context.Context) (repository.Stats, error) {
	return s.repo.GetStats(ctx)
}

// PendingRecomputeIDs lists completed submissions needing a recompute under
// the current engine version.
func (s *Service) PendingRecomputeIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListCompletedIDs(ctx, engine.Version)
}

// SweepAbandoned marks stale in-progress submissions. Invoked by the
// scheduled maintenance task.
func (s *Service) SweepAbandoned(ctx context.Context) (int64, error) {
	return s.repo.MarkAbandoned(ctx, time.Now().UTC().Add(-abandonedAfter))
}

func (s *Service) compute(sub repository.Submission) (engine.UnifiedCalculationResult, *repository.Result, error) {
	raw, err := decodeRawInputs(sub)
	if err != nil {
		return engine.UnifiedCalculationResult{}, nil, err
	}

	result := engine.ComputeResults(raw, engine.WithBenchmarks(s.benchmarks))
	record, err := buildResultRecord(sub.ID, result)
	if err != nil {
		return engine.UnifiedCalculationResult{}, nil, err
	}
	return result, record, nil
}

func decodeRawInputs(sub repository.Submission) (engine.RawInputs, error) {
	var raw engine.RawInputs
	if len(sub.Inputs) > 0 {
		if err := json.Unmarshal(sub.Inputs, &raw); err != nil {
			return engine.RawInputs{}, fmt.Errorf("failed to decode submission inputs: %w", err)
		}
	}
	raw.Industry = sub.Industry
	return raw, nil
}

func buildResultRecord(submissionID uuid.UUID, result engine.UnifiedCalculationResult) (*repository.Result, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return &repository.Result{
		ID:              uuid.New(),
		SubmissionID:    submissionID,
		EngineVersion:   result.EngineVersion,
		LeadScore:       result.LeadScore.Score,
		TotalLoss:       result.Losses.Total,
		ConfidenceLevel: string(result.Confidence.Level),
		Payload:         payload,
		ComputedAt:      time.Now().UTC(),
	}, nil
}

func buildResultResponse(sub repository.Submission, record *repository.Result, result engine.UnifiedCalculationResult) transport.ResultResponse {
	return transport.ResultResponse{
		PublicToken:   sub.PublicToken,
		CompanyName:   sub.CompanyName,
		EngineVersion: record.EngineVersion,
		ComputedAt:    record.ComputedAt,
		Summary: transport.ResultSummary{
			TotalLossFormatted:    engine.FormatCurrency(result.Losses.Total),
			RecoveryLowFormatted:  engine.FormatCurrency(result.Confidence.Bounds.Lower),
			RecoveryHighFormatted: engine.FormatCurrency(result.Confidence.Bounds.Upper),
			ConfidenceLevel:       string(result.Confidence.Level),
			PaybackMonths:         result.Investment.PaybackMonths,
			LeadScore:             result.LeadScore.Score,
		},
		Result: result,
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus != nil {
		s.bus.Publish(ctx, event)
	}
}
