package model

import (
	"time"

	"github.com/google/uuid"
)

// Event types pushed to dashboard subscribers.
const (
	EventNewOrder      = "new-order"
	EventOrdersUpdated = "orders-updated"
)

// Notification is a persisted "new order arrived" popup.
type Notification struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrderID        int64      `json:"orderId" db:"order_id"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty" db:"acknowledged_at"`
}

// Event is the message broadcast to WebSocket subscribers.
type Event struct {
	Type           string    `json:"type"`
	OrderID        int64     `json:"orderId,omitempty"`
	NewOrderIDs    []int64   `json:"newOrderIds,omitempty"`
	NotificationID string    `json:"notificationId,omitempty"`
	At             time.Time `json:"at"`
}
