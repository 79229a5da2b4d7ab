// Package service dispatches computed results to registered CRM webhook
// endpoints. Deliveries are signed and retried through the task queue; the
// receiving system has no influence on the computation itself.
package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	calcrepo "leakcalc_backend/internal/calculator/repository"
	"leakcalc_backend/internal/crm/repository"
	"leakcalc_backend/internal/events"
	"leakcalc_backend/internal/scheduler"
	"leakcalc_backend/platform/apperr"
	"leakcalc_backend/platform/logger"

	"github.com/google/uuid"
)

// DeliveryStore is the persistence surface the service needs.
type DeliveryStore interface {
	CreateEndpoint(ctx context.Context, e repository.Endpoint) error
	ListEndpoints(ctx context.Context, enabledOnly bool) ([]repository.Endpoint, error)
	SetEndpointEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	DeleteEndpoint(ctx context.Context, id uuid.UUID) error
	CreateDelivery(ctx context.Context, d repository.Delivery) error
	GetDelivery(ctx context.Context, id uuid.UUID) (repository.DeliveryWithEndpoint, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	ListRecentDeliveries(ctx context.Context, limit int) ([]repository.Delivery, error)
}

// ResultReader loads the stored result payload for a completed submission.
type ResultReader interface {
	GetLatestResult(ctx context.Context, submissionID uuid.UUID) (calcrepo.Result, error)
}

// DeliveryScheduler hands deliveries to the task queue.
type DeliveryScheduler interface {
	EnqueueCRMDelivery(ctx context.Context, payload scheduler.CRMDeliveryPayload) error
}

// webhookEnvelope is the wire format posted to CRM endpoints.
type webhookEnvelope struct {
	Event        string          `json:"event"`
	DeliveryID   uuid.UUID       `json:"deliveryId"`
	SubmissionID uuid.UUID       `json:"submissionId"`
	Email        string          `json:"email"`
	CompanyName  string          `json:"companyName"`
	Industry     string          `json:"industry"`
	LeadScore    int             `json:"leadScore"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Result       json.RawMessage `json:"result"`
}

type Service struct {
	store   DeliveryStore
	results ResultReader
	sched   DeliveryScheduler
	client  *http.Client
	log     *logger.Logger
}

func New(store DeliveryStore, results ResultReader, sched DeliveryScheduler, log *logger.Logger) *Service {
	return &Service{
		store:   store,
		results: results,
		sched:   sched,
		client:  &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// CreateEndpoint registers a webhook endpoint. An empty secret gets a random
// one generated so every delivery is signed.
func (s *Service) CreateEndpoint(ctx context.Context, name, url, secret string) (repository.Endpoint, error) {
	if secret == "" {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return repository.Endpoint{}, err
		}
		secret = hex.EncodeToString(raw)
	}

	endpoint := repository.Endpoint{
		ID:      uuid.New(),
		Name:    name,
		URL:     url,
		Secret:  secret,
		Enabled: true,
	}
	if err := s.store.CreateEndpoint(ctx, endpoint); err != nil {
		return repository.Endpoint{}, err
	}
	return endpoint, nil
}

func (s *Service) ListEndpoints(ctx context.Context) ([]repository.Endpoint, error) {
	return s.store.ListEndpoints(ctx, false)
}

func (s *Service) SetEndpointEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return s.store.SetEndpointEnabled(ctx, id, enabled)
}

func (s *Service) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteEndpoint(ctx, id)
}

func (s *Service) ListRecentDeliveries(ctx context.Context, limit int) ([]repository.Delivery, error) {
	return s.store.ListRecentDeliveries(ctx, limit)
}

// DispatchSubmission fans a completed submission out to every enabled
// endpoint. Each delivery is persisted first, then queued.
func (s *Service) DispatchSubmission(ctx context.Context, e events.SubmissionCompleted) error {
	endpoints, err := s.store.ListEndpoints(ctx, true)
	if err != nil {
		return err
	}
	if len(endpoints) == 0 {
		return nil
	}

	result, err := s.results.GetLatestResult(ctx, e.SubmissionID)
	if err != nil {
		return err
	}

	for _, endpoint := range endpoints {
		deliveryID := uuid.New()
		envelope := webhookEnvelope{
			Event:        e.EventName(),
			DeliveryID:   deliveryID,
			SubmissionID: e.SubmissionID,
			Email:        e.Email,
			CompanyName:  e.CompanyName,
			Industry:     e.Industry,
			LeadScore:    e.LeadScore,
			OccurredAt:   e.OccurredAt(),
			Result:       result.Payload,
		}
		body, err := json.Marshal(envelope)
		if err != nil {
			return err
		}

		delivery := repository.Delivery{
			ID:           deliveryID,
			EndpointID:   endpoint.ID,
			SubmissionID: e.SubmissionID,
			EventName:    e.EventName(),
			Payload:      body,
			Status:       repository.DeliveryPending,
		}
		if err := s.store.CreateDelivery(ctx, delivery); err != nil {
			return err
		}

		if s.sched == nil {
			continue
		}
		if err := s.sched.EnqueueCRMDelivery(ctx, scheduler.CRMDeliveryPayload{
			DeliveryID: deliveryID.String(),
		}); err != nil {
			return err
		}
	}

	return nil
}

// ProcessDelivery performs one delivery attempt. A non-2xx response or a
// transport error marks the attempt failed and returns an error so the task
// queue retries with backoff.
func (s *Service) ProcessDelivery(ctx context.Context, deliveryID uuid.UUID) error {
	delivery, err := s.store.GetDelivery(ctx, deliveryID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil
		}
		return err
	}
	if delivery.Status == repository.DeliveryDelivered {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, delivery.EndpointURL, bytes.NewReader(delivery.Payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Leak-Event", delivery.EventName)
	req.Header.Set("X-Leak-Delivery", delivery.ID.String())
	req.Header.Set("X-Leak-Signature", SignaturePrefix+Sign(delivery.EndpointSecret, delivery.Payload))

	resp, err := s.client.Do(req)
	if err != nil {
		if markErr := s.store.MarkFailed(ctx, deliveryID, err.Error()); markErr != nil {
			return markErr
		}
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reason := fmt.Sprintf("endpoint responded %d", resp.StatusCode)
		if markErr := s.store.MarkFailed(ctx, deliveryID, reason); markErr != nil {
			return markErr
		}
		return fmt.Errorf("crm delivery %s: %s", deliveryID, reason)
	}

	return s.store.MarkDelivered(ctx, deliveryID)
}
