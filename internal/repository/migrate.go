package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// schema is idempotent and applied on every start.
const schema = `
	CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		draft_id UUID NOT NULL,
		order_id BIGINT NOT NULL,
		updated BOOLEAN NOT NULL DEFAULT FALSE,
		doctor_id BIGINT NOT NULL,
		rep_name TEXT NOT NULL DEFAULT '',
		subtotal NUMERIC(14,4) NOT NULL,
		discount NUMERIC(14,4) NOT NULL,
		paid NUMERIC(14,4) NOT NULL,
		total_after_discount NUMERIC(14,4) NOT NULL CHECK (total_after_discount >= 0),
		remaining NUMERIC(14,4) NOT NULL CHECK (remaining >= 0),
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_order_id ON submissions(order_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS submission_lines (
		id UUID PRIMARY KEY,
		submission_id UUID NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		line_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(20,8) NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		UNIQUE (submission_id, position)
	);

	CREATE TABLE IF NOT EXISTS order_notifications (
		id UUID PRIMARY KEY,
		order_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		acknowledged_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_order_notifications_unread
		ON order_notifications(created_at DESC) WHERE acknowledged_at IS NULL;
`

// Migrate creates the tables the service owns.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		logger.Error().Err(err).Msg("failed to apply schema")
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info().Msg("database schema up to date")
	return nil
}
