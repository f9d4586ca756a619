package auditapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/system/apicors"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
)

// Routes returns a router with the audit trail API endpoints.
//
// When mounted at /api/audit-logs:
//   - GET /api/audit-logs             - List audit events with filters
//   - GET /api/audit-logs/recent      - Most recent audit events
//   - GET /api/audit-logs/target/{id} - Events for one page or menu type
//
// Authentication is via API key (Bearer token in Authorization header).
func Routes(h *Handler, apiKey string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware())
	r.Use(auth.APIKeyAuth(apiKey, logger))
	r.Use(auth.WithActor)

	r.Get("/", h.list)
	r.Get("/recent", h.recent)
	r.Get("/target/{id}", h.byTarget)

	return r
}
