package pagesapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/system/auth"
	"github.com/dalemusser/stratacms/internal/app/system/hierarchy"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
)

// tree handles GET /tree/{menuTypeId}. It returns the full nested page
// tree of one menu, enabled and disabled pages alike (this is the admin
// view; public rendering filters on enabled).
func (h *Handler) tree(w http.ResponseWriter, r *http.Request) {
	menuTypeID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "menuTypeId"))
	if err != nil {
		jsonutil.BadRequest(w, "Invalid menu type ID")
		return
	}

	pages, err := h.pages.ListByMenuType(r.Context(), menuTypeID)
	if err != nil {
		h.logger.Error("failed to load pages for tree",
			zap.String("menu_type_id", menuTypeID.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch page tree")
		return
	}

	forest := hierarchy.Build(pages, menuTypeID)
	jsonutil.Success(w, forest)
}

// reorderRequest is the payload for POST /reorder: the rearranged tree of
// one menu as produced by the admin UI's drag-and-drop editor.
type reorderRequest struct {
	MenuTypeID string                `json:"menuTypeId"`
	Tree       []*hierarchy.TreeNode `json:"tree"`
}

// reorderResponse reports the outcome of a reorder. Success is false when
// any assignment could not be applied; the failures are listed so the UI
// can refresh and retry.
type reorderResponse struct {
	Success bool                        `json:"success"`
	Message string                      `json:"message"`
	Applied int                         `json:"applied"`
	Failed  []reorderFailureRef `json:"failed,omitempty"`
}

type reorderFailureRef struct {
	PageID string `json:"pageId"`
	Reason string `json:"reason"`
}

// reorder handles POST /reorder. The submitted tree is flattened back to
// parent/order assignments, validated against the menu's current pages,
// and applied as one batch.
func (h *Handler) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := jsonutil.Decode(r, &req); err != nil {
		jsonutil.BadRequest(w, "Invalid JSON payload")
		return
	}

	menuTypeID, err := primitive.ObjectIDFromHex(req.MenuTypeID)
	if err != nil {
		jsonutil.BadRequest(w, "Invalid menu type ID")
		return
	}
	if len(req.Tree) == 0 {
		jsonutil.BadRequest(w, "Tree must not be empty")
		return
	}

	pages, err := h.pages.ListByMenuType(r.Context(), menuTypeID)
	if err != nil {
		h.logger.Error("failed to load pages for reorder",
			zap.String("menu_type_id", menuTypeID.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to reorder pages")
		return
	}

	known := make(map[primitive.ObjectID]struct{}, len(pages))
	for _, p := range pages {
		known[p.ID] = struct{}{}
	}

	assignments, err := hierarchy.Flatten(req.Tree, known)
	if err != nil {
		var unknown *hierarchy.UnknownPageError
		if errors.As(err, &unknown) {
			jsonutil.BadRequest(w, "Tree references a page that is not in this menu: "+unknown.PageID.Hex())
			return
		}
		jsonutil.BadRequest(w, "Invalid tree")
		return
	}

	result, err := h.pages.ApplyReorder(r.Context(), assignments, auth.CurrentActor(r), h.logger)
	if err != nil {
		h.logger.Error("failed to apply reorder",
			zap.String("menu_type_id", menuTypeID.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to reorder pages")
		return
	}

	h.auditLogger.PagesReordered(r, menuTypeID, result.Applied, len(result.Failed))

	resp := reorderResponse{
		Success: len(result.Failed) == 0,
		Message: "Pages reordered successfully",
		Applied: result.Applied,
	}
	for _, f := range result.Failed {
		resp.Failed = append(resp.Failed, reorderFailureRef{
			PageID: f.PageID.Hex(),
			Reason: f.Reason,
		})
	}
	if !resp.Success {
		resp.Message = "Some pages could not be reordered"
	}

	jsonutil.OK(w, resp)
}
