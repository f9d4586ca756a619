// Package pagesapi provides the CMS page management API endpoints.
//
// Endpoints (mounted at /api/cms-pages):
//   - GET    /                    - List pages (filtered, paginated)
//   - POST   /                    - Create a page (JSON or multipart)
//   - GET    /dropdown            - Enabled pages as id/title pairs
//   - GET    /parents/{menuTypeId} - Parent candidates within a menu
//   - GET    /slug/{slug}         - Get a page by slug
//   - GET    /tree/{menuTypeId}   - Nested page tree for a menu
//   - POST   /reorder             - Persist a rearranged tree
//   - GET    /file/{id}           - Stream a page's attached file
//   - GET    /{id}                - Get a page
//   - PUT    /{id}                - Update a page (JSON or multipart)
//   - DELETE /{id}                - Delete a page
//   - PATCH  /{id}/toggle-status  - Flip the enabled flag
//
// Authentication is via API key (Bearer token in Authorization header).
package pagesapi

import (
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	cmspagestore "github.com/dalemusser/stratacms/internal/app/store/cmspages"
	menutypestore "github.com/dalemusser/stratacms/internal/app/store/menutypes"
	"github.com/dalemusser/stratacms/internal/app/system/auditlog"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
)

// Handler handles page API requests.
type Handler struct {
	pages       *cmspagestore.Store
	menuTypes   *menutypestore.Store
	fileStorage storage.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new pagesapi handler.
func NewHandler(
	pages *cmspagestore.Store,
	menuTypes *menutypestore.Store,
	fileStorage storage.Store,
	auditLogger *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		pages:       pages,
		menuTypes:   menuTypes,
		fileStorage: fileStorage,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// list handles GET / with search/menuType/parentPage/enabled filters and
// offset pagination.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := cmspagestore.ListOptions{
		Search: q.Get("search"),
	}

	if raw := q.Get("menuType"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid menuType filter")
			return
		}
		opts.MenuTypeID = &id
	}
	switch raw := q.Get("parentPage"); raw {
	case "":
	case "root":
		// Top-level pages only.
		opts.RootOnly = true
	default:
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			jsonutil.BadRequest(w, "Invalid parentPage filter")
			return
		}
		opts.ParentID = &id
	}
	if raw := q.Get("enabled"); raw != "" {
		enabled := raw == "true"
		opts.Enabled = &enabled
	}
	if raw := q.Get("page"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.Page = n
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			opts.Limit = n
		}
	}

	pages, total, err := h.pages.List(r.Context(), opts)
	if err != nil {
		h.logger.Error("failed to list pages", zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch pages")
		return
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = cmspagestore.DefaultPageLimit
	}
	if limit > cmspagestore.MaxPageLimit {
		limit = cmspagestore.MaxPageLimit
	}
	current := opts.Page
	if current <= 0 {
		current = 1
	}

	jsonutil.SuccessPaged(w, pages, jsonutil.Pagination{
		Current: int(current),
		Pages:   int(math.Ceil(float64(total) / float64(limit))),
		Total:   total,
		Limit:   int(limit),
	})
}

// get handles GET /{id}.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Page not found")
			return
		}
		h.logger.Error("failed to get page", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch page")
		return
	}

	jsonutil.Success(w, page)
}

// getBySlug handles GET /slug/{slug}.
func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.pages.GetBySlug(r.Context(), slug)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Page not found")
			return
		}
		h.logger.Error("failed to get page by slug", zap.String("slug", slug), zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch page")
		return
	}

	jsonutil.Success(w, page)
}

// dropdown handles GET /dropdown: enabled pages as id/title pairs.
func (h *Handler) dropdown(w http.ResponseWriter, r *http.Request) {
	items, err := h.pages.Dropdown(r.Context())
	if err != nil {
		h.logger.Error("failed to list pages for dropdown", zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch pages")
		return
	}

	jsonutil.Success(w, items)
}

// parents handles GET /parents/{menuTypeId}: parent candidates for a menu.
func (h *Handler) parents(w http.ResponseWriter, r *http.Request) {
	menuTypeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "menuTypeId"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid menu type ID")
		return
	}

	items, err := h.pages.ListParents(r.Context(), menuTypeID)
	if err != nil {
		h.logger.Error("failed to list parent candidates",
			zap.String("menu_type_id", menuTypeID.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch pages")
		return
	}

	jsonutil.Success(w, items)
}

// pathID parses the {id} URL parameter, writing a 400 on malformed input.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid page ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
