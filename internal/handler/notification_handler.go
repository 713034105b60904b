package handler

import (
	"net/http"
	"strconv"

	"supply-desk/internal/model"
	"supply-desk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationHandler handles new-order notification requests.
type NotificationHandler struct {
	service service.NotificationService
	logger  zerolog.Logger
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(service service.NotificationService, logger zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		logger:  logger.With().Str("handler", "notification").Logger(),
	}
}

// List handles GET /api/notifications requests.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	unreadOnly := query.Get("unread") == "true"

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeServiceError(w, r, errInvalidLimit, "invalid limit", h.logger)
			return
		}
	}

	notifications, err := h.service.List(r.Context(), unreadOnly, limit)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve notifications", h.logger)
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}

	writeJSON(w, http.StatusOK, notifications)
}

// Acknowledge handles POST /api/notifications/{id}/ack requests.
func (h *NotificationHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, errInvalidNotif, "invalid notification ID format", h.logger)
		return
	}

	n, err := h.service.Acknowledge(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to acknowledge notification", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, n)
}
