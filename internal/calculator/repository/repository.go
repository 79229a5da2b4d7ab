package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leakcalc_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Submission is the database model for a calculator submission.
type Submission struct {
	ID            uuid.UUID       `db:"id"`
	PublicToken   uuid.UUID       `db:"public_token"`
	Email         string          `db:"email"`
	CompanyName   string          `db:"company_name"`
	Phone         *string         `db:"phone"`
	Industry      string          `db:"industry"`
	Status        string          `db:"status"`
	CompletedStep int             `db:"completed_step"`
	Inputs        json.RawMessage `db:"inputs"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
	CompletedAt   *time.Time      `db:"completed_at"`
}

// Result is the database model for a computed result.
type Result struct {
	ID              uuid.UUID       `db:"id"`
	SubmissionID    uuid.UUID       `db:"submission_id"`
	EngineVersion   string          `db:"engine_version"`
	LeadScore       int             `db:"lead_score"`
	TotalLoss       float64         `db:"total_loss"`
	ConfidenceLevel string          `db:"confidence_level"`
	Payload         json.RawMessage `db:"payload"`
	ComputedAt      time.Time       `db:"computed_at"`
}

// ListParams contains parameters for listing submissions.
type ListParams struct {
	Status       *string
	MinLeadScore *int
	Search       string
	Page         int
	PageSize     int
}

// ListResult contains the paginated result of listing submissions.
type ListResult struct {
	Items      []SubmissionWithResult
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// SubmissionWithResult joins a submission with its latest result, if any.
type SubmissionWithResult struct {
	Submission Submission
	Result     *Result
}

// Stats aggregates submission counts for the admin dashboard.
type Stats struct {
	TotalSubmissions     int     `json:"totalSubmissions"`
	CompletedSubmissions int     `json:"completedSubmissions"`
	HighValueLeads       int     `json:"highValueLeads"`
	AverageLeadScore     float64 `json:"averageLeadScore"`
	AverageTotalLoss     float64 `json:"averageTotalLoss"`
}

// ── Repository ────────────────────────────────────────────────────────────────

const submissionNotFoundMsg = "submission not found"

// Repository provides database operations for calculator submissions.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new calculator repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new submission.
func (r *Repository) Create(ctx context.Context, sub *Submission) error {
	query := `
		INSERT INTO leak_submissions (
			id, public_token, email, company_name, phone, industry,
			status, completed_step, inputs, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := r.pool.Exec(ctx, query,
		sub.ID, sub.PublicToken, sub.Email, sub.CompanyName, sub.Phone, sub.Industry,
		sub.Status, sub.CompletedStep, sub.Inputs, sub.CreatedAt, sub.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// GetByToken fetches a submission by its public token.
func (r *Repository) GetByToken(ctx context.Context, token uuid.UUID) (Submission, error) {
	query := `
		SELECT id, public_token, email, company_name, phone, industry,
		       status, completed_step, inputs, created_at, updated_at, completed_at
		FROM leak_submissions
		WHERE public_token = $1`

	return r.scanSubmission(r.pool.QueryRow(ctx, query, token))
}

// GetByID fetches a submission by its primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Submission, error) {
	query := `
		SELECT id, public_token, email, company_name, phone, industry,
		       status, completed_step, inputs, created_at, updated_at, completed_at
		FROM leak_submissions
		WHERE id = $1`

	return r.scanSubmission(r.pool.QueryRow(ctx, query, id))
}

func (r *Repository) scanSubmission(row pgx.Row) (Submission, error) {
	var sub Submission
	err := row.Scan(
		&sub.ID, &sub.PublicToken, &sub.Email, &sub.CompanyName, &sub.Phone, &sub.Industry,
		&sub.Status, &sub.CompletedStep, &sub.Inputs, &sub.CreatedAt, &sub.UpdatedAt, &sub.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, apperr.NotFound(submissionNotFoundMsg)
	}
	if err != nil {
		return Submission{}, fmt.Errorf("failed to fetch submission: %w", err)
	}
	return sub, nil
}

// UpdateStep merges step inputs into the stored payload and advances the
// completed step counter. Steps may be re-saved; the counter never moves
// backwards.
func (r *Repository) UpdateStep(ctx context.Context, token uuid.UUID, step int, inputs json.RawMessage, phone *string) error {
	query := `
		UPDATE leak_submissions SET
			inputs = inputs || $2,
			completed_step = GREATEST(completed_step, $3),
			phone = COALESCE($4, phone),
			updated_at = $5
		WHERE public_token = $1 AND status = 'in_progress'`

	result, err := r.pool.Exec(ctx, query, token, inputs, step, phone, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update submission step: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(submissionNotFoundMsg)
	}
	return nil
}

// Complete marks a submission completed and stores its result in one
// transaction. Recompleting an already completed submission is a conflict.
func (r *Repository) Complete(ctx context.Context, submissionID uuid.UUID, result *Result) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	updateQuery := `
		UPDATE leak_submissions SET status = 'completed', completed_at = $2, updated_at = $2
		WHERE id = $1 AND status = 'in_progress'`

	updated, err := tx.Exec(ctx, updateQuery, submissionID, now)
	if err != nil {
		return fmt.Errorf("failed to complete submission: %w", err)
	}
	if updated.RowsAffected() == 0 {
		return apperr.Conflict("submission already completed")
	}

	if err := insertResult(ctx, tx, result); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SaveResult stores a recomputed result for an already completed submission.
func (r *Repository) SaveResult(ctx context.Context, result *Result) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertResult(ctx, tx, result); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertResult(ctx context.Context, tx pgx.Tx, result *Result) error {
	query := `
		INSERT INTO leak_results (
			id, submission_id, engine_version, lead_score, total_loss,
			confidence_level, payload, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := tx.Exec(ctx, query,
		result.ID, result.SubmissionID, result.EngineVersion, result.LeadScore,
		result.TotalLoss, result.ConfidenceLevel, result.Payload, result.ComputedAt,
	); err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// GetLatestResult fetches the most recent result for a submission.
func (r *Repository) GetLatestResult(ctx context.Context, submissionID uuid.UUID) (Result, error) {
	query := `
		SELECT id, submission_id, engine_version, lead_score, total_loss,
		       confidence_level, payload, computed_at
		FROM leak_results
		WHERE submission_id = $1
		ORDER BY computed_at DESC
		LIMIT 1`

	var res Result
	err := r.pool.QueryRow(ctx, query, submissionID).Scan(
		&res.ID, &res.SubmissionID, &res.EngineVersion, &res.LeadScore,
		&res.TotalLoss, &res.ConfidenceLevel, &res.Payload, &res.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Result{}, apperr.NotFound("result not found")
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch result: %w", err)
	}
	return res, nil
}

// List returns submissions with their latest result, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 25
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1

	if params.Status != nil {
		where += fmt.Sprintf(" AND s.status = $%d", argPos)
		args = append(args, *params.Status)
		argPos++
	}
	if params.MinLeadScore != nil {
		where += fmt.Sprintf(" AND r.lead_score >= $%d", argPos)
		args = append(args, *params.MinLeadScore)
		argPos++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (s.email ILIKE $%d OR s.company_name ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+params.Search+"%")
		argPos++
	}

	baseQuery := `
		FROM leak_submissions s
		LEFT JOIN LATERAL (
			SELECT * FROM leak_results lr
			WHERE lr.submission_id = s.id
			ORDER BY lr.computed_at DESC
			LIMIT 1
		) r ON true ` + where

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("failed to count submissions: %w", err)
	}

	query := `
		SELECT s.id, s.public_token, s.email, s.company_name, s.phone, s.industry,
		       s.status, s.completed_step, s.inputs, s.created_at, s.updated_at, s.completed_at,
		       r.id, r.engine_version, r.lead_score, r.total_loss, r.confidence_level, r.payload, r.computed_at ` +
		baseQuery +
		fmt.Sprintf(" ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	items := make([]SubmissionWithResult, 0, params.PageSize)
	for rows.Next() {
		var item SubmissionWithResult
		var resID *uuid.UUID
		var engineVersion, confidenceLevel *string
		var leadScore *int
		var totalLoss *float64
		var payload json.RawMessage
		var computedAt *time.Time

		if err := rows.Scan(
			&item.Submission.ID, &item.Submission.PublicToken, &item.Submission.Email,
			&item.Submission.CompanyName, &item.Submission.Phone, &item.Submission.Industry,
			&item.Submission.Status, &item.Submission.CompletedStep, &item.Submission.Inputs,
			&item.Submission.CreatedAt, &item.Submission.UpdatedAt, &item.Submission.CompletedAt,
			&resID, &engineVersion, &leadScore, &totalLoss, &confidenceLevel, &payload, &computedAt,
		); err != nil {
			return ListResult{}, fmt.Errorf("failed to scan submission row: %w", err)
		}

		if resID != nil {
			item.Result = &Result{
				ID:              *resID,
				SubmissionID:    item.Submission.ID,
				EngineVersion:   *engineVersion,
				LeadScore:       *leadScore,
				TotalLoss:       *totalLoss,
				ConfidenceLevel: *confidenceLevel,
				Payload:         payload,
				ComputedAt:      *computedAt,
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("failed to read submission rows: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// GetStats aggregates dashboard figures across all submissions.
func (r *Repository) GetStats(ctx context.Context) (Stats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE s.status = 'completed'),
			COUNT(*) FILTER (WHERE r.lead_score >= 70),
			COALESCE(AVG(r.lead_score), 0),
			COALESCE(AVG(r.total_loss), 0)
		FROM leak_submissions s
		LEFT JOIN LATERAL (
			SELECT lead_score, total_loss FROM leak_results lr
			WHERE lr.submission_id = s.id
			ORDER BY lr.computed_at DESC
			LIMIT 1
		) r ON true`

	var stats Stats
	if err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalSubmissions, &stats.CompletedSubmissions, &stats.HighValueLeads,
		&stats.AverageLeadScore, &stats.AverageTotalLoss,
	); err != nil {
		return Stats{}, fmt.Errorf("failed to fetch stats: %w", err)
	}
	return stats, nil
}

// ListCompletedIDs streams the IDs of completed submissions whose latest
// result predates the given engine version. Used by the backfill command.
func (r *Repository) ListCompletedIDs(ctx context.Context, excludeEngineVersion string) ([]uuid.UUID, error) {
	query := `
		SELECT s.id
		FROM leak_submissions s
		LEFT JOIN LATERAL (
			SELECT engine_version FROM leak_results lr
			WHERE lr.submission_id = s.id
			ORDER BY lr.computed_at DESC
			LIMIT 1
		) r ON true
		WHERE s.status = 'completed' AND (r.engine_version IS NULL OR r.engine_version <> $1)
		ORDER BY s.created_at`

	rows, err := r.pool.Query(ctx, query, excludeEngineVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed submissions: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan submission id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkAbandoned flags in-progress submissions older than the cutoff.
// Returns the number of submissions flagged.
func (r *Repository) MarkAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE leak_submissions SET status = 'abandoned', updated_at = NOW()
		WHERE status = 'in_progress' AND updated_at < $1`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to mark abandoned submissions: %w", err)
	}
	return result.RowsAffected(), nil
}
