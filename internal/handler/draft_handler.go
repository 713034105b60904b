package handler

import (
	"net/http"

	"supply-desk/internal/model"
	"supply-desk/internal/service"

	"github.com/rs/zerolog"
)

// DraftHandler handles order draft requests.
type DraftHandler struct {
	service service.DraftService
	logger  zerolog.Logger
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(service service.DraftService, logger zerolog.Logger) *DraftHandler {
	return &DraftHandler{
		service: service,
		logger:  logger.With().Str("handler", "draft").Logger(),
	}
}

// Open handles POST /api/drafts requests.
func (h *DraftHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req model.OpenDraftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, "invalid request body", h.logger)
		return
	}

	view, err := h.service.Open(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to open draft", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// OpenFromOrder handles POST /api/drafts/from-order/{orderId} requests.
func (h *DraftHandler) OpenFromOrder(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid order ID format", h.logger)
		return
	}

	view, err := h.service.OpenFromOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to open draft from order", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// Get handles GET /api/drafts/{id} requests.
func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}

	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve draft", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// SetHeader handles PATCH /api/drafts/{id} requests.
func (h *DraftHandler) SetHeader(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}

	var req model.DraftHeaderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, "invalid request body", h.logger)
		return
	}

	view, err := h.service.SetHeader(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update draft", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Scan handles POST /api/drafts/{id}/scan requests.
func (h *DraftHandler) Scan(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}

	var req model.ScanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, "invalid request body", h.logger)
		return
	}

	view, err := h.service.Scan(r.Context(), id, req.Code)
	if err != nil {
		writeServiceError(w, r, err, "failed to scan product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddProduct handles POST /api/drafts/{id}/lines requests.
func (h *DraftHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}

	var req model.AddProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, "invalid request body", h.logger)
		return
	}
	if req.ProductID <= 0 {
		writeServiceError(w, r, errMissingProduct, "product ID is required", h.logger)
		return
	}

	view, err := h.service.AddProduct(r.Context(), id, req.ProductID)
	if err != nil {
		writeServiceError(w, r, err, "failed to add product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// UpdateLine handles PATCH /api/drafts/{id}/lines/{index} requests.
func (h *DraftHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}
	index, err := lineIndex(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid line index", h.logger)
		return
	}

	var req model.LineUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, err, "invalid request body", h.logger)
		return
	}

	view, err := h.service.UpdateLine(r.Context(), id, index, &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to update line", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// RemoveLine handles DELETE /api/drafts/{id}/lines/{index} requests.
func (h *DraftHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}
	index, err := lineIndex(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid line index", h.logger)
		return
	}

	view, err := h.service.RemoveLine(r.Context(), id, index)
	if err != nil {
		writeServiceError(w, r, err, "failed to remove line", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /api/drafts/{id}/submit requests.
func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}

	resp, err := h.service.Submit(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to submit order", h.logger)
		return
	}

	status := http.StatusCreated
	if resp.Updated {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

// Discard handles DELETE /api/drafts/{id} requests.
func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	id, err := draftID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid draft ID format", h.logger)
		return
	}

	if err := h.service.Discard(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to discard draft", h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// History handles GET /api/orders/{orderId}/submissions requests.
func (h *DraftHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := orderID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid order ID format", h.logger)
		return
	}

	subs, err := h.service.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve submissions", h.logger)
		return
	}
	if subs == nil {
		subs = []model.Submission{}
	}

	writeJSON(w, http.StatusOK, subs)
}

// Submission handles GET /api/submissions/{id} requests.
func (h *DraftHandler) Submission(w http.ResponseWriter, r *http.Request) {
	id, err := submissionID(r)
	if err != nil {
		writeServiceError(w, r, err, "invalid submission ID format", h.logger)
		return
	}

	detail, err := h.service.Submission(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve submission", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}
