// Package menusapi provides the menu type management API endpoints.
//
// Endpoints (mounted at /api/menu-types):
//   - GET    /     - List all menu types
//   - POST   /     - Create a menu type
//   - GET    /{id} - Get a menu type
//   - PUT    /{id} - Rename a menu type
//   - DELETE /{id} - Delete a menu type
//
// Authentication is via API key (Bearer token in Authorization header).
package menusapi

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	cmspagestore "github.com/dalemusser/stratacms/internal/app/store/cmspages"
	menutypestore "github.com/dalemusser/stratacms/internal/app/store/menutypes"
	"github.com/dalemusser/stratacms/internal/app/system/auditlog"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/domain/models"
)

// Handler handles menu type API requests.
type Handler struct {
	menuTypes   *menutypestore.Store
	pages       *cmspagestore.Store
	auditLogger *auditlog.Logger
	logger      *zap.Logger
}

// NewHandler creates a new menusapi handler.
func NewHandler(menuTypes *menutypestore.Store, pages *cmspagestore.Store, auditLogger *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		menuTypes:   menuTypes,
		pages:       pages,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

// list handles GET / and returns all menu types sorted by name.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	menuTypes, err := h.menuTypes.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list menu types", zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch menu types")
		return
	}

	jsonutil.SuccessCounted(w, menuTypes, len(menuTypes))
}

// get handles GET /{id}.
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	mt, err := h.menuTypes.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Menu type not found")
			return
		}
		h.logger.Error("failed to get menu type", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch menu type")
		return
	}

	jsonutil.Success(w, mt)
}

type menuTypeInput struct {
	Name string `json:"name"`
}

// validateName returns the trimmed name or a validation message.
func validateName(raw string) (string, string) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", "Menu type name is required"
	}
	if utf8.RuneCountInString(name) > models.MaxMenuTypeNameLen {
		return "", "Menu type name is too long"
	}
	return name, ""
}

// create handles POST /.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in menuTypeInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	name, msg := validateName(in.Name)
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	exists, err := h.menuTypes.NameExists(r.Context(), name, nil)
	if err != nil {
		h.logger.Error("failed to check menu type name", zap.Error(err))
		jsonutil.InternalError(w, "Failed to create menu type")
		return
	}
	if exists {
		jsonutil.BadRequest(w, "Menu type name already exists")
		return
	}

	mt, err := h.menuTypes.Create(r.Context(), name)
	if err != nil {
		h.logger.Error("failed to create menu type", zap.String("name", name), zap.Error(err))
		jsonutil.InternalError(w, "Failed to create menu type")
		return
	}

	h.auditLogger.MenuTypeCreated(r, mt.ID, mt.Name)
	jsonutil.CreatedEnvelope(w, "Menu type created successfully", mt)
}

// update handles PUT /{id}.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var in menuTypeInput
	if err := jsonutil.Decode(r, &in); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	name, msg := validateName(in.Name)
	if msg != "" {
		jsonutil.BadRequest(w, msg)
		return
	}

	exists, err := h.menuTypes.NameExists(r.Context(), name, &id)
	if err != nil {
		h.logger.Error("failed to check menu type name", zap.Error(err))
		jsonutil.InternalError(w, "Failed to update menu type")
		return
	}
	if exists {
		jsonutil.BadRequest(w, "Menu type name already exists")
		return
	}

	if err := h.menuTypes.Update(r.Context(), id, name); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Menu type not found")
			return
		}
		h.logger.Error("failed to update menu type", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to update menu type")
		return
	}

	mt, err := h.menuTypes.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to reload menu type", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to update menu type")
		return
	}

	h.auditLogger.MenuTypeUpdated(r, mt.ID, mt.Name)
	jsonutil.SuccessMessage(w, "Menu type updated successfully", mt)
}

// del handles DELETE /{id}. A menu type that still has pages cannot be
// deleted; the pages must be moved or removed first.
func (h *Handler) del(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	mt, err := h.menuTypes.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Menu type not found")
			return
		}
		h.logger.Error("failed to get menu type", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to delete menu type")
		return
	}

	pageCount, err := h.pages.CountByMenuType(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to count pages for menu type", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to delete menu type")
		return
	}
	if pageCount > 0 {
		jsonutil.BadRequest(w, "Cannot delete a menu type that still has pages")
		return
	}

	if err := h.menuTypes.Delete(r.Context(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Menu type not found")
			return
		}
		h.logger.Error("failed to delete menu type", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to delete menu type")
		return
	}

	h.auditLogger.MenuTypeDeleted(r, mt.ID, mt.Name)
	jsonutil.SuccessMessage(w, "Menu type deleted successfully", nil)
}

// pathID parses the {id} URL parameter, writing a 400 on malformed input.
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid menu type ID")
		return primitive.NilObjectID, false
	}
	return id, true
}
