package menusapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/system/apicors"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
)

// Routes returns a router with the menu type API endpoints.
//
// When mounted at /api/menu-types:
//   - GET    /api/menu-types      - List menu types
//   - POST   /api/menu-types      - Create menu type
//   - GET    /api/menu-types/{id} - Get menu type
//   - PUT    /api/menu-types/{id} - Rename menu type
//   - DELETE /api/menu-types/{id} - Delete menu type
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
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.del)

	return r
}
