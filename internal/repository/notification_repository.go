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

// notificationRepository implements the NotificationRepository interface using PostgreSQL.
type notificationRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool, logger zerolog.Logger) NotificationRepository {
	return &notificationRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "notification").Logger(),
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO order_notifications (id, order_id, created_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.pool.Exec(ctx, query, n.ID, n.OrderID, n.CreatedAt); err != nil {
		r.logger.Error().
			Err(err).
			Int64("order_id", n.OrderID).
			Msg("failed to create notification")
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

func (r *notificationRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, order_id, created_at, acknowledged_at
		FROM order_notifications
		WHERE ($1 = FALSE OR acknowledged_at IS NULL)
		ORDER BY created_at DESC, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, unreadOnly, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query notifications")
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.OrderID, &n.CreatedAt, &n.AcknowledgedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan notification row")
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating notification rows")
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) Acknowledge(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `
		UPDATE order_notifications
		SET acknowledged_at = COALESCE(acknowledged_at, NOW())
		WHERE id = $1
		RETURNING id, order_id, created_at, acknowledged_at
	`

	var n model.Notification
	err := r.pool.QueryRow(ctx, query, id).Scan(&n.ID, &n.OrderID, &n.CreatedAt, &n.AcknowledgedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotificationNotFound
		}
		r.logger.Error().Err(err).Str("notification_id", id.String()).Msg("failed to acknowledge notification")
		return nil, fmt.Errorf("failed to acknowledge notification: %w", err)
	}

	return &n, nil
}
