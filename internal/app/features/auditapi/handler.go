// Package auditapi exposes the audit trail for the admin UI.
//
// Endpoints (mounted at /api/audit-logs):
//   - GET /             - List events, filterable by event/actor/target/time
//   - GET /recent       - Most recent events
//   - GET /target/{id}  - Events for one page or menu type
//
// Authentication is via API key (Bearer token in Authorization header).
package auditapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	auditstore "github.com/dalemusser/stratacms/internal/app/store/audit"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
)

// Handler handles audit trail API requests.
type Handler struct {
	audit  *auditstore.Store
	logger *zap.Logger
}

// NewHandler creates a new audit API handler.
func NewHandler(audit *auditstore.Store, logger *zap.Logger) *Handler {
	return &Handler{audit: audit, logger: logger}
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// list handles GET / with event/actor/target/start/end filters and offset
// pagination.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := auditstore.QueryFilter{
		Event: q.Get("event"),
		Actor: q.Get("actor"),
	}

	if raw := q.Get("target"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid target filter")
			return
		}
		filter.TargetID = &id
	}
	if raw := q.Get("start"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid start time, expected RFC 3339")
			return
		}
		filter.StartTime = &ts
	}
	if raw := q.Get("end"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid end time, expected RFC 3339")
			return
		}
		filter.EndTime = &ts
	}

	page := int64(1)
	if raw := q.Get("page"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			page = n
		}
	}
	limit := int64(defaultListLimit)
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	total, err := h.audit.CountByFilter(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to count audit events", zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch audit events")
		return
	}

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to query audit events", zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch audit events")
		return
	}

	pages := int((total + limit - 1) / limit)
	jsonutil.SuccessPaged(w, events, jsonutil.Pagination{
		Current: int(page),
		Pages:   pages,
		Total:   total,
		Limit:   int(limit),
	})
}

// recent handles GET /recent.
func (h *Handler) recent(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}

	events, err := h.audit.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch recent audit events", zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch audit events")
		return
	}

	jsonutil.SuccessCounted(w, events, len(events))
}

// byTarget handles GET /target/{id}: the audit trail of one page or menu
// type, newest first.
func (h *Handler) byTarget(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid ID")
		return
	}

	events, err := h.audit.GetByTarget(r.Context(), id, defaultListLimit)
	if err != nil {
		h.logger.Error("failed to fetch audit events for target",
			zap.String("target", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch audit events")
		return
	}

	jsonutil.SuccessCounted(w, events, len(events))
}
