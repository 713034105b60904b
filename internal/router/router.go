package router

import (
	"net/http"

	"supply-desk/internal/handler"
	"supply-desk/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Health       *handler.HealthHandler
	Catalog      *handler.CatalogHandler
	Draft        *handler.DraftHandler
	Notification *handler.NotificationHandler

	// Events upgrades dashboard connections to the live order stream.
	Events http.Handler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", h.Health.Health)

	// Catalog
	mux.HandleFunc("GET /api/catalog/lookup", h.Catalog.Lookup)
	mux.HandleFunc("POST /api/catalog/refresh", h.Catalog.Refresh)

	// Drafts
	mux.HandleFunc("POST /api/drafts", h.Draft.Open)
	mux.HandleFunc("GET /api/drafts/{id}", h.Draft.Get)
	mux.HandleFunc("PATCH /api/drafts/{id}", h.Draft.SetHeader)
	mux.HandleFunc("DELETE /api/drafts/{id}", h.Draft.Discard)
	mux.HandleFunc("POST /api/drafts/{id}/scan", h.Draft.Scan)
	mux.HandleFunc("POST /api/drafts/{id}/lines", h.Draft.AddProduct)
	mux.HandleFunc("PATCH /api/drafts/{id}/lines/{index}", h.Draft.UpdateLine)
	mux.HandleFunc("DELETE /api/drafts/{id}/lines/{index}", h.Draft.RemoveLine)
	mux.HandleFunc("POST /api/drafts/{id}/submit", h.Draft.Submit)

	// Existing upstream orders
	mux.HandleFunc("POST /api/orders/{orderId}/draft", h.Draft.OpenFromOrder)
	mux.HandleFunc("GET /api/orders/{orderId}/submissions", h.Draft.History)
	mux.HandleFunc("GET /api/submissions/{id}", h.Draft.Submission)

	// Notifications
	mux.HandleFunc("GET /api/notifications", h.Notification.List)
	mux.HandleFunc("POST /api/notifications/{id}/ack", h.Notification.Acknowledge)

	if h.Events != nil {
		mux.Handle("GET /ws/orders", h.Events)
	}

	// Apply middleware in order: Recovery -> Logging -> RequestID -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
