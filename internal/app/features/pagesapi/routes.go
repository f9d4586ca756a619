package pagesapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/system/apicors"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
)

// Routes returns a router with the page API endpoints.
//
// When mounted at /api/cms-pages:
//   - GET    /api/cms-pages                         - List pages
//   - POST   /api/cms-pages                         - Create page
//   - GET    /api/cms-pages/dropdown                - Dropdown items
//   - GET    /api/cms-pages/parents/{menuTypeId}    - Parent candidates
//   - GET    /api/cms-pages/slug/{slug}             - Get page by slug
//   - GET    /api/cms-pages/tree/{menuTypeId}       - Nested tree
//   - POST   /api/cms-pages/reorder                 - Apply reordered tree
//   - GET    /api/cms-pages/file/{id}               - Stream attached file
//   - GET    /api/cms-pages/{id}                    - Get page
//   - PUT    /api/cms-pages/{id}                    - Update page
//   - DELETE /api/cms-pages/{id}                    - Delete page
//   - PATCH  /api/cms-pages/{id}/toggle-status      - Toggle enabled flag
//
// Authentication is via API key (Bearer token in Authorization header).
// CORS is permissive (allows any origin) since API key auth is used.
func Routes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// API CORS - permissive for API key auth
	r.Use(apicors.Middleware())

	// API key authentication
	r.Use(auth.APIKeyAuth(apiKey, logger))

	// Actor identity for audit records
	r.Use(auth.WithActor)

	r.Get("/", h.list)
	r.Post("/", h.create)

	// Fixed-path routes must come before the {id} wildcards.
	r.Get("/dropdown", h.dropdown)
	r.Get("/parents/{menuTypeId}", h.parents)
	r.Get("/slug/{slug}", h.getBySlug)
	r.Get("/tree/{menuTypeId}", h.tree)
	r.Post("/reorder", h.reorder)
	r.Get("/file/{id}", h.serveFile)

	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.del)
	r.Patch("/{id}/toggle-status", h.toggle)

	return r
}
