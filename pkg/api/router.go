package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/api/handlers"
	apiMiddleware "github.com/SankareshwaranS/FileManagementSystem/pkg/api/middleware"
)

// Dependencies are the services the router exposes.
type Dependencies struct {
	// Items serves the /api/v1/items endpoints.
	Items handlers.ItemService

	// MaxUploadSize caps the file part of uploads. Zero disables the cap.
	MaxUploadSize int64

	// Health lists the components checked by the readiness check.
	Health []handlers.Component

	// RequestTimeout bounds request handling. Zero selects 30s.
	RequestTimeout time.Duration
}

// NewRouter creates and configures the chi router with all middleware and routes.
//
// The router is configured with:
//   - Request ID middleware for request tracking
//   - Real IP extraction for proper client identification
//   - Request span and log context
//   - Custom request logging using the internal logger
//   - Panic recovery to prevent server crashes
//   - Request timeout to prevent hung requests
//
// Routes:
//   - GET /health - Liveness check
//   - GET /health/ready - Readiness check
//   - /api/v1/items - Item tree operations
func NewRouter(deps Dependencies) http.Handler {
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(apiMiddleware.RequestContext)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	healthHandler := handlers.NewHealthHandler(deps.Health...)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", healthHandler.Liveness)
		r.Get("/ready", healthHandler.Readiness)
	})

	if deps.Items != nil {
		itemHandler := handlers.NewItemHandler(deps.Items, deps.MaxUploadSize)

		r.Route("/api/v1/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Post("/", itemHandler.Create)
			r.Post("/files", itemHandler.Upload)
			r.Get("/{id}", itemHandler.Get)
			r.Patch("/{id}", itemHandler.Rename)
			r.Post("/{id}/move", itemHandler.Move)
			r.Delete("/{id}", itemHandler.Delete)
		})
	}

	// Root redirect to health for convenience
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/health", http.StatusTemporaryRedirect)
	})

	return r
}
