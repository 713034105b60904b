package handler

import (
	"net/http"
	"time"
)

// CatalogStatus reports the state of the product catalog snapshot.
type CatalogStatus interface {
	Loaded() bool
	Size() int
	LoadedAt() time.Time
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status          string     `json:"status"`
	CatalogLoaded   bool       `json:"catalogLoaded"`
	CatalogSize     int        `json:"catalogSize"`
	CatalogLoadedAt *time.Time `json:"catalogLoadedAt,omitempty"`
	Subscribers     int        `json:"subscribers"`
}

// HealthHandler serves the unauthenticated health check.
type HealthHandler struct {
	catalog     CatalogStatus
	subscribers func() int
}

// NewHealthHandler creates a new health handler. subscribers may be nil.
func NewHealthHandler(catalog CatalogStatus, subscribers func() int) *HealthHandler {
	return &HealthHandler{catalog: catalog, subscribers: subscribers}
}

// Health handles GET /health requests. A catalog that is still loading does not
// make the service unhealthy.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy"}

	if h.catalog != nil {
		resp.CatalogLoaded = h.catalog.Loaded()
		resp.CatalogSize = h.catalog.Size()
		if resp.CatalogLoaded {
			at := h.catalog.LoadedAt()
			resp.CatalogLoadedAt = &at
		}
	}
	if h.subscribers != nil {
		resp.Subscribers = h.subscribers()
	}

	writeJSON(w, http.StatusOK, resp)
}
