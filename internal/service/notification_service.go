package service

import (
	"context"
	"fmt"
	"time"

	"supply-desk/internal/model"
	"supply-desk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// Broadcaster pushes events to live subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, event model.Event) error
}

// notificationService implements NotificationService.
type notificationService struct {
	repo   repository.NotificationRepository
	hub    Broadcaster
	logger zerolog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(repo repository.NotificationRepository, hub Broadcaster, logger zerolog.Logger) NotificationService {
	return &notificationService{
		repo:   repo,
		hub:    hub,
		logger: logger.With().Str("service", "notification").Logger(),
	}
}

// NewOrder stores a popup notification and pushes it to subscribers. The push
// happens even when storing fails so open dashboards still see the order.
func (s *notificationService) NewOrder(ctx context.Context, orderID int64) error {
	n := &model.Notification{
		ID:        uuid.New(),
		OrderID:   orderID,
		CreatedAt: time.Now().UTC(),
	}

	storeErr := s.repo.Create(ctx, n)
	if storeErr != nil {
		s.logger.Error().Err(storeErr).Int64("order_id", orderID).Msg("failed to store notification")
	}

	event := model.Event{
		Type:    model.EventNewOrder,
		OrderID: orderID,
		At:      n.CreatedAt,
	}
	if storeErr == nil {
		event.NotificationID = n.ID.String()
	}

	if err := s.hub.Broadcast(ctx, event); err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to broadcast new order")
		return fmt.Errorf("failed to broadcast new order: %w", err)
	}

	if storeErr != nil {
		return fmt.Errorf("failed to store notification: %w", storeErr)
	}

	s.logger.Info().Int64("order_id", orderID).Str("notification_id", n.ID.String()).Msg("new order notification raised")
	return nil
}

// OrdersChanged pushes an orders-updated event to subscribers.
func (s *notificationService) OrdersChanged(ctx context.Context, newOrderIDs []int64) error {
	err := s.hub.Broadcast(ctx, model.Event{
		Type:        model.EventOrdersUpdated,
		NewOrderIDs: newOrderIDs,
		At:          time.Now().UTC(),
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to broadcast orders changed")
		return fmt.Errorf("failed to broadcast orders changed: %w", err)
	}
	return nil
}

// List returns recent notifications.
func (s *notificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	notifications, err := s.repo.List(ctx, unreadOnly, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list notifications")
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// Acknowledge marks a notification as read.
func (s *notificationService) Acknowledge(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.Acknowledge(ctx, id)
	if err != nil {
		if model.KindOf(err) == model.KindNotFound {
			return nil, err
		}
		s.logger.Error().Err(err).Str("notification_id", id.String()).Msg("failed to acknowledge notification")
		return nil, fmt.Errorf("failed to acknowledge notification: %w", err)
	}
	return n, nil
}
