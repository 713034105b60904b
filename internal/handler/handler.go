package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"supply-desk/internal/middleware"
	"supply-desk/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	errInvalidJSON    = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid request body")
	errInvalidDraft   = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid draft ID format")
	errInvalidOrder   = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid order ID format")
	errInvalidSub     = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid submission ID format")
	errInvalidLine    = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid line index")
	errInvalidNotif   = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid notification ID format")
	errInvalidLimit   = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "invalid limit")
	errMissingProduct = model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "product ID is required")
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	requestID := middleware.RequestIDFrom(r.Context())

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("request_id", requestID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{Error: message, Code: code, RequestID: requestID})
}

// writeServiceError maps a service error to a response. Domain errors carry
// their own message; anything else is reported with fallback.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string, logger zerolog.Logger) {
	var de *model.DomainError
	if !errors.As(err, &de) {
		logger.Error().Err(err).Str("request_id", middleware.RequestIDFrom(r.Context())).Msg(fallback)
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, fallback, logger)
		return
	}

	writeError(w, r, statusFor(de), de.Code, de.Message, logger)
}

// statusFor maps a domain error to an HTTP status.
func statusFor(de *model.DomainError) int {
	switch de.Kind {
	case model.KindValidation:
		if de.Code == model.ErrCodeInvalidJSON {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case model.KindLookupMiss, model.KindNotFound:
		return http.StatusNotFound
	case model.KindLookupPending:
		return http.StatusServiceUnavailable
	case model.KindSubmission, model.KindPoll:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}

func draftID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errInvalidDraft
	}
	return id, nil
}

func submissionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, errInvalidSub
	}
	return id, nil
}

func orderID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("orderId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidOrder
	}
	return id, nil
}

func lineIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		return 0, errInvalidLine
	}
	return index, nil
}
