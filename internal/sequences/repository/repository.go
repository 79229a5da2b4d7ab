// Package repository persists nurture sequence enrollments.
package repository

import (
	"context"
	"errors"
	"time"

	"leakcalc_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EnrollmentStatus string

const (
	StatusActive    EnrollmentStatus = "active"
	StatusCompleted EnrollmentStatus = "completed"
	StatusCancelled EnrollmentStatus = "cancelled"
)

type Enrollment struct {
	ID           uuid.UUID
	SubmissionID uuid.UUID
	PublicToken  uuid.UUID
	Email        string
	CompanyName  string
	TotalLoss    float64
	Sequence     string
	CurrentStep  int
	Status       EnrollmentStatus
	EnrolledAt   time.Time
	NextStepAt   *time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create enrolls a submission exactly once. A submission that is already
// enrolled in the same sequence is a conflict.
func (r *Repository) Create(ctx context.Context, e Enrollment) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO sequence_enrollments
			(id, submission_id, public_token, email, company_name, total_loss,
			 sequence, current_step, status, enrolled_at, next_step_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $10)
		ON CONFLICT (submission_id, sequence) DO NOTHING`,
		e.ID, e.SubmissionID, e.PublicToken, e.Email, e.CompanyName, e.TotalLoss,
		e.Sequence, e.CurrentStep, e.Status, e.EnrolledAt, e.NextStepAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("submission already enrolled")
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Enrollment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, submission_id, public_token, email, company_name, total_loss,
		       sequence, current_step, status, enrolled_at, next_step_at, updated_at
		FROM sequence_enrollments
		WHERE id = $1`, id)

	var e Enrollment
	err := row.Scan(&e.ID, &e.SubmissionID, &e.PublicToken, &e.Email, &e.CompanyName,
		&e.TotalLoss, &e.Sequence, &e.CurrentStep, &e.Status, &e.EnrolledAt,
		&e.NextStepAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Enrollment{}, apperr.NotFound("enrollment not found")
	}
	if err != nil {
		return Enrollment{}, err
	}
	return e, nil
}

// MarkStepSent advances the enrollment. A nil nextStepAt marks the sequence
// as completed.
func (r *Repository) MarkStepSent(ctx context.Context, id uuid.UUID, nextStep int, nextStepAt *time.Time) error {
	status := StatusActive
	if nextStepAt == nil {
		status = StatusCompleted
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE sequence_enrollments
		SET current_step = $2, next_step_at = $3, status = $4, updated_at = now()
		WHERE id = $1 AND status = 'active'`,
		id, nextStep, nextStepAt, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("active enrollment not found")
	}
	return nil
}

// Cancel ends an enrollment regardless of where it is in the sequence.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sequence_enrollments
		SET status = 'cancelled', next_step_at = NULL, updated_at = now()
		WHERE id = $1 AND status = 'active'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("active enrollment not found")
	}
	return nil
}
