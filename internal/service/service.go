package service

import (
	"context"

	"supply-desk/internal/model"

	"github.com/google/uuid"
)

// CatalogService resolves products for scans and selections.
type CatalogService interface {
	// Resolve looks up a scanned barcode or slug.
	Resolve(code string) (*model.ProductBrief, error)

	// ByID looks up a product picked by id.
	ByID(id int64) (*model.ProductBrief, error)

	// Refresh reloads the catalog snapshot.
	Refresh(ctx context.Context) error
}

// DraftService defines operations on order drafts.
type DraftService interface {
	// Open starts an empty draft for a new order.
	Open(ctx context.Context, req *model.OpenDraftRequest) (*model.DraftView, error)

	// OpenFromOrder starts a draft pre-filled from an existing order.
	OpenFromOrder(ctx context.Context, orderID int64) (*model.DraftView, error)

	// Get returns the current state of a draft.
	Get(ctx context.Context, id uuid.UUID) (*model.DraftView, error)

	// SetHeader updates doctor, discount and paid amount.
	SetHeader(ctx context.Context, id uuid.UUID, req *model.DraftHeaderRequest) (*model.DraftView, error)

	// Scan resolves a barcode or slug and adds the product to the cart.
	Scan(ctx context.Context, id uuid.UUID, code string) (*model.DraftView, error)

	// AddProduct adds a product picked by id to the cart.
	AddProduct(ctx context.Context, id uuid.UUID, productID int64) (*model.DraftView, error)

	// UpdateLine edits quantity, price, line total or notes of one line.
	UpdateLine(ctx context.Context, id uuid.UUID, index int, req *model.LineUpdateRequest) (*model.DraftView, error)

	// RemoveLine deletes one line.
	RemoveLine(ctx context.Context, id uuid.UUID, index int) (*model.DraftView, error)

	// Submit creates or updates the upstream order and discards the draft.
	Submit(ctx context.Context, id uuid.UUID) (*model.SubmitResponse, error)

	// Discard drops the draft without submitting.
	Discard(ctx context.Context, id uuid.UUID) error

	// History lists the recorded submissions of an upstream order.
	History(ctx context.Context, orderID int64) ([]model.Submission, error)

	// Submission returns one recorded submission with its lines.
	Submission(ctx context.Context, id uuid.UUID) (*model.SubmissionDetail, error)
}

// NotificationService records and broadcasts order watcher events.
type NotificationService interface {
	// NewOrder stores a popup notification for orderID and pushes it to subscribers.
	NewOrder(ctx context.Context, orderID int64) error

	// OrdersChanged pushes an orders-updated event to subscribers.
	OrdersChanged(ctx context.Context, newOrderIDs []int64) error

	// List returns recent notifications, optionally only unacknowledged ones.
	List(ctx context.Context, unreadOnly bool, limit int) ([]model.Notification, error)

	// Acknowledge marks a notification as read.
	Acknowledge(ctx context.Context, id uuid.UUID) (*model.Notification, error)
}
