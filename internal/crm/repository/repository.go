// Package repository persists CRM webhook endpoints and their deliveries.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"leakcalc_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

type Endpoint struct {
	ID        uuid.UUID
	Name      string
	URL       string
	Secret    string
	Enabled   bool
	CreatedAt time.Time
}

type Delivery struct {
	ID           uuid.UUID
	EndpointID   uuid.UUID
	SubmissionID uuid.UUID
	EventName    string
	Payload      json.RawMessage
	Status       DeliveryStatus
	Attempts     int
	LastError    *string
	CreatedAt    time.Time
	DeliveredAt  *time.Time
}

// DeliveryWithEndpoint joins a delivery with the endpoint it targets.
type DeliveryWithEndpoint struct {
	Delivery
	EndpointURL    string
	EndpointSecret string
	EndpointName   string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateEndpoint(ctx context.Context, e Endpoint) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO crm_endpoints (id, name, url, secret, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		e.ID, e.Name, e.URL, e.Secret, e.Enabled)
	return err
}

func (r *Repository) ListEndpoints(ctx context.Context, enabledOnly bool) ([]Endpoint, error) {
	query := `
		SELECT id, name, url, secret, enabled, created_at
		FROM crm_endpoints`
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var endpoints []Endpoint
	for rows.Next() {
		var e Endpoint
		if err := rows.Scan(&e.ID, &e.Name, &e.URL, &e.Secret, &e.Enabled, &e.CreatedAt); err != nil {
			return nil, err
		}
		endpoints = append(endpoints, e)
	}
	return endpoints, rows.Err()
}

func (r *Repository) SetEndpointEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE crm_endpoints SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("endpoint not found")
	}
	return nil
}

func (r *Repository) DeleteEndpoint(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM crm_endpoints WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("endpoint not found")
	}
	return nil
}

func (r *Repository) CreateDelivery(ctx context.Context, d Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO crm_deliveries
			(id, endpoint_id, submission_id, event_name, payload, status, attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, now())`,
		d.ID, d.EndpointID, d.SubmissionID, d.EventName, d.Payload, d.Status)
	return err
}

func (r *Repository) GetDelivery(ctx context.Context, id uuid.UUID) (DeliveryWithEndpoint, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT d.id, d.endpoint_id, d.submission_id, d.event_name, d.payload,
		       d.status, d.attempts, d.last_error, d.created_at, d.delivered_at,
		       e.url, e.secret, e.name
		FROM crm_deliveries d
		JOIN crm_endpoints e ON e.id = d.endpoint_id
		WHERE d.id = $1`, id)

	var d DeliveryWithEndpoint
	err := row.Scan(&d.ID, &d.EndpointID, &d.SubmissionID, &d.EventName, &d.Payload,
		&d.Status, &d.Attempts, &d.LastError, &d.CreatedAt, &d.DeliveredAt,
		&d.EndpointURL, &d.EndpointSecret, &d.EndpointName)
	if errors.Is(err, pgx.ErrNoRows) {
		return DeliveryWithEndpoint{}, apperr.NotFound("delivery not found")
	}
	if err != nil {
		return DeliveryWithEndpoint{}, err
	}
	return d, nil
}

func (r *Repository) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE crm_deliveries
		SET status = 'delivered', attempts = attempts + 1,
		    last_error = NULL, delivered_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delivery not found")
	}
	return nil
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE crm_deliveries
		SET status = 'failed', attempts = attempts + 1, last_error = $2
		WHERE id = $1`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("delivery not found")
	}
	return nil
}

// ListRecentDeliveries returns the newest deliveries for the admin surface.
func (r *Repository) ListRecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, endpoint_id, submission_id, event_name, payload,
		       status, attempts, last_error, created_at, delivered_at
		FROM crm_deliveries
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.EndpointID, &d.SubmissionID, &d.EventName, &d.Payload,
			&d.Status, &d.Attempts, &d.LastError, &d.CreatedAt, &d.DeliveredAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
