package repository

import (
	"context"
	"errors"
	"fmt"

	"supply-desk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// submissionRepository implements the SubmissionRepository interface using PostgreSQL.
type submissionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSubmissionRepository creates a new PostgreSQL-backed submission repository.
func NewSubmissionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "submission").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *submissionRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateSubmission inserts a submission header within the provided transaction.
func (r *submissionRepository) CreateSubmission(ctx context.Context, tx pgx.Tx, s *model.Submission) error {
	query := `
		INSERT INTO submissions (
			id, draft_id, order_id, updated, doctor_id, rep_name,
			subtotal, discount, paid, total_after_discount, remaining, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := tx.Exec(ctx, query,
		s.ID, s.DraftID, s.OrderID, s.Updated, s.DoctorID, s.RepName,
		s.Subtotal, s.Discount, s.Paid, s.TotalAfterDiscount, s.Remaining, s.Status, s.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("submission_id", s.ID.String()).
			Int64("order_id", s.OrderID).
			Msg("failed to create submission")
		return fmt.Errorf("failed to create submission: %w", err)
	}

	r.logger.Debug().
		Str("submission_id", s.ID.String()).
		Int64("order_id", s.OrderID).
		Msg("submission created successfully")

	return nil
}

// CreateSubmissionLines inserts the submitted lines within the provided transaction.
func (r *submissionRepository) CreateSubmissionLines(ctx context.Context, tx pgx.Tx, lines []model.SubmissionLine) error {
	if len(lines) == 0 {
		return nil
	}

	query := `
		INSERT INTO submission_lines (id, submission_id, position, line_id, quantity, unit_price, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, l := range lines {
		batch.Queue(query, l.ID, l.SubmissionID, l.Position, l.LineID, l.Quantity, l.UnitPrice, l.Notes)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(lines); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("submission_id", lines[i].SubmissionID.String()).
				Int("position", lines[i].Position).
				Msg("failed to create submission line")
			return fmt.Errorf("failed to create submission line: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(lines)).
		Msg("submission lines created successfully")

	return nil
}

// GetByID retrieves a submission along with its lines. A missing submission
// yields nil values and no error.
func (r *submissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, []model.SubmissionLine, error) {
	query := `
		SELECT id, draft_id, order_id, updated, doctor_id, rep_name,
			subtotal, discount, paid, total_after_discount, remaining, status, created_at
		FROM submissions
		WHERE id = $1
	`

	s, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("submission_id", id.String()).Msg("submission not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("submission_id", id.String()).Msg("failed to query submission")
		return nil, nil, fmt.Errorf("failed to query submission: %w", err)
	}

	linesQuery := `
		SELECT id, submission_id, position, line_id, quantity, unit_price, notes
		FROM submission_lines
		WHERE submission_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, linesQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("submission_id", id.String()).
			Msg("failed to query submission lines")
		return nil, nil, fmt.Errorf("failed to query submission lines: %w", err)
	}
	defer rows.Close()

	var lines []model.SubmissionLine
	for rows.Next() {
		var l model.SubmissionLine
		if err := rows.Scan(&l.ID, &l.SubmissionID, &l.Position, &l.LineID, &l.Quantity, &l.UnitPrice, &l.Notes); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan submission line row")
			return nil, nil, fmt.Errorf("failed to scan submission line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating submission line rows")
		return nil, nil, fmt.Errorf("error iterating submission lines: %w", err)
	}

	return s, lines, nil
}

// ListByOrder retrieves the submissions recorded for an upstream order, newest first.
func (r *submissionRepository) ListByOrder(ctx context.Context, orderID int64) ([]model.Submission, error) {
	query := `
		SELECT id, draft_id, order_id, updated, doctor_id, rep_name,
			subtotal, discount, paid, total_after_discount, remaining, status, created_at
		FROM submissions
		WHERE order_id = $1
		ORDER BY created_at DESC, id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to query submissions")
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	submissions := make([]model.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan submission row")
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, *s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating submission rows")
		return nil, fmt.Errorf("error iterating submissions: %w", err)
	}

	return submissions, nil
}

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var s model.Submission
	err := row.Scan(
		&s.ID,
		&s.DraftID,
		&s.OrderID,
		&s.Updated,
		&s.DoctorID,
		&s.RepName,
		&s.Subtotal,
		&s.Discount,
		&s.Paid,
		&s.TotalAfterDiscount,
		&s.Remaining,
		&s.Status,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
