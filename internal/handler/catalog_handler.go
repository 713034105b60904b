package handler

import (
	"net/http"

	"supply-desk/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles product lookup requests.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// Lookup handles GET /api/catalog/lookup?code= requests. A blank code answers
// 204 so a scanner's stray enter key is not an error.
func (h *CatalogHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Resolve(r.URL.Query().Get("code"))
	if err != nil {
		writeServiceError(w, r, err, "failed to look up product", h.logger)
		return
	}

	if product == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Refresh handles POST /api/catalog/refresh requests.
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("catalog refresh failed")
		writeError(w, r, http.StatusBadGateway, "CATALOG_REFRESH_FAILED", "failed to refresh catalog", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}
