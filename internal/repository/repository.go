package repository

import (
	"context"

	"supply-desk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubmissionRepository defines the interface for the submission audit log.
type SubmissionRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateSubmission inserts a submission header within the provided transaction.
	CreateSubmission(ctx context.Context, tx pgx.Tx, s *model.Submission) error

	// CreateSubmissionLines inserts the submitted lines within the provided transaction.
	CreateSubmissionLines(ctx context.Context, tx pgx.Tx, lines []model.SubmissionLine) error

	// GetByID retrieves a submission along with its lines.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, []model.SubmissionLine, error)

	// ListByOrder retrieves the submissions recorded for an upstream order, newest first.
	ListByOrder(ctx context.Context, orderID int64) ([]model.Submission, error)
}

// NotificationRepository defines the interface for new-order notifications.
type NotificationRepository interface {
	// Create inserts a notification.
	Create(ctx context.Context, n *model.Notification) error

	// List returns notifications newest first. With unreadOnly set, acknowledged
	// notifications are skipped.
	List(ctx context.Context, unreadOnly bool, limit int) ([]model.Notification, error)

	// Acknowledge marks a notification as read. It returns
	// model.ErrNotificationNotFound when no such notification exists.
	Acknowledge(ctx context.Context, id uuid.UUID) (*model.Notification, error)
}
