package pagesapi

import (
	"errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	cmspagestore "github.com/dalemusser/stratacms/internal/app/store/cmspages"
	"github.com/dalemusser/stratacms/internal/app/system/auth"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/upload"
	"github.com/dalemusser/stratacms/internal/domain/models"
)

const slugExistsMessage = "Slug already exists. Please choose a different slug."

// create handles POST /. The request is multipart when a file is attached,
// JSON otherwise.
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	in, err := parsePageInput(r)
	if err != nil {
		jsonutil.BadRequest(w, "Invalid request payload")
		return
	}

	resolved, fieldErrs := in.resolve()
	if fieldErrs != nil {
		jsonutil.ValidationError(w, fieldErrs)
		return
	}

	if !h.checkReferences(w, r, resolved, nil) {
		return
	}

	// Pull the attachment, if any, before touching storage or the DB.
	fileRef, ok := h.extractFile(w, r, resolved.ContentKind)
	if !ok {
		return
	}
	if resolved.ContentKind == models.ContentKindFile && fileRef == nil {
		jsonutil.BadRequest(w, "A file is required for file pages")
		return
	}

	actor := auth.CurrentActor(r)
	page, err := h.pages.Create(r.Context(), cmspagestore.CreateInput{
		Title:           resolved.Title,
		Slug:            resolved.Slug,
		MenuTypeID:      resolved.MenuTypeID,
		ParentID:        resolved.ParentID,
		ContentKind:     resolved.ContentKind,
		Body:            resolved.Body,
		ExternalURL:     resolved.ExternalURL,
		File:            fileRef,
		OpenInNewWindow: resolved.OpenInNewWindow,
		Enabled:         resolved.Enabled,
		SEO:             resolved.SEO,
		CreatedBy:       actor,
	})
	if err != nil {
		// Clean up the stored file if the DB write failed.
		if fileRef != nil {
			h.deleteStoredFile(r, fileRef)
		}
		if isDuplicateKey(err) {
			jsonutil.BadRequest(w, slugExistsMessage)
			return
		}
		h.logger.Error("failed to create page", zap.String("slug", resolved.Slug), zap.Error(err))
		jsonutil.InternalError(w, "Failed to create page")
		return
	}

	h.auditLogger.PageCreated(r, page.ID, page.Slug)
	jsonutil.CreatedEnvelope(w, "Page created successfully", page)
}

// update handles PUT /{id}.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	existing, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Page not found")
			return
		}
		h.logger.Error("failed to get page", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to update page")
		return
	}

	in, err := parsePageInput(r)
	if err != nil {
		jsonutil.BadRequest(w, "Invalid request payload")
		return
	}

	resolved, fieldErrs := in.resolve()
	if fieldErrs != nil {
		jsonutil.ValidationError(w, fieldErrs)
		return
	}

	if resolved.ParentID != nil && *resolved.ParentID == id {
		jsonutil.BadRequest(w, "A page cannot be its own parent")
		return
	}

	if !h.checkReferences(w, r, resolved, &id) {
		return
	}

	fileRef, ok := h.extractFile(w, r, resolved.ContentKind)
	if !ok {
		return
	}
	// A file page with no new upload keeps its current attachment.
	if resolved.ContentKind == models.ContentKindFile && fileRef == nil && existing.File == nil {
		jsonutil.BadRequest(w, "A file is required for file pages")
		return
	}

	input := cmspagestore.UpdateInput{
		Title:           &resolved.Title,
		Slug:            &resolved.Slug,
		MenuTypeID:      &resolved.MenuTypeID,
		ParentID:        &resolved.ParentID,
		ContentKind:     &resolved.ContentKind,
		Body:            &resolved.Body,
		ExternalURL:     &resolved.ExternalURL,
		OpenInNewWindow: &resolved.OpenInNewWindow,
		Enabled:         &resolved.Enabled,
		SEO:             &resolved.SEO,
		UpdatedBy:       auth.CurrentActor(r),
	}
	if fileRef != nil {
		input.File = fileRef
	} else if resolved.ContentKind != models.ContentKindFile && existing.File != nil {
		// Switching away from a file page drops the attachment.
		input.ClearFile = true
	}

	if err := h.pages.Update(r.Context(), id, input); err != nil {
		if fileRef != nil {
			h.deleteStoredFile(r, fileRef)
		}
		if isDuplicateKey(err) {
			jsonutil.BadRequest(w, slugExistsMessage)
			return
		}
		h.logger.Error("failed to update page", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to update page")
		return
	}

	// The previous attachment is gone from the page record; remove the
	// bytes best-effort.
	if existing.File != nil && (fileRef != nil || input.ClearFile) {
		h.deleteStoredFile(r, existing.File)
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to reload page", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to update page")
		return
	}

	h.auditLogger.PageUpdated(r, page.ID, page.Slug)
	jsonutil.SuccessMessage(w, "Page updated successfully", page)
}

// del handles DELETE /{id}. The page's attached file, if any, is removed
// from storage best-effort after the record is gone.
func (h *Handler) del(w http.ResponseWriter, r *http.Request) {
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
		jsonutil.InternalError(w, "Failed to delete page")
		return
	}

	if err := h.pages.Delete(r.Context(), id); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Page not found")
			return
		}
		h.logger.Error("failed to delete page", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to delete page")
		return
	}

	if page.File != nil {
		h.deleteStoredFile(r, page.File)
	}

	h.auditLogger.PageDeleted(r, page.ID, page.Slug)
	jsonutil.SuccessMessage(w, "Page deleted successfully", nil)
}

// toggle handles PATCH /{id}/toggle-status.
func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	page, err := h.pages.ToggleEnabled(r.Context(), id, auth.CurrentActor(r))
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Page not found")
			return
		}
		h.logger.Error("failed to toggle page", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to update page status")
		return
	}

	h.auditLogger.PageToggled(r, page.ID, page.Enabled)

	state := "disabled"
	if page.Enabled {
		state = "enabled"
	}
	jsonutil.SuccessMessage(w, fmt.Sprintf("Page %s successfully", state), page)
}

// checkReferences verifies the menu type exists and the parent (when set)
// is a page in the same menu. excludeID is the page being updated, so its
// own slug does not count as a collision.
func (h *Handler) checkReferences(w http.ResponseWriter, r *http.Request, in *resolvedInput, excludeID *primitive.ObjectID) bool {
	ctx := r.Context()

	if _, err := h.menuTypes.GetByID(ctx, in.MenuTypeID); err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.BadRequest(w, "Menu type does not exist")
			return false
		}
		h.logger.Error("failed to check menu type", zap.Error(err))
		jsonutil.InternalError(w, "Failed to save page")
		return false
	}

	if in.ParentID != nil {
		parent, err := h.pages.GetByID(ctx, *in.ParentID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				jsonutil.BadRequest(w, "Parent page does not exist")
				return false
			}
			h.logger.Error("failed to check parent page", zap.Error(err))
			jsonutil.InternalError(w, "Failed to save page")
			return false
		}
		if parent.MenuTypeID != in.MenuTypeID {
			jsonutil.BadRequest(w, "Parent page must belong to the same menu type")
			return false
		}
		if excludeID != nil && !h.checkParentChain(w, r, parent, *excludeID) {
			return false
		}
	}

	exists, err := h.pages.SlugExists(ctx, in.Slug, excludeID)
	if err != nil {
		h.logger.Error("failed to check slug", zap.Error(err))
		jsonutil.InternalError(w, "Failed to save page")
		return false
	}
	if exists {
		jsonutil.BadRequest(w, slugExistsMessage)
		return false
	}

	return true
}

// checkParentChain walks the new parent's ancestor chain and rejects the
// write if it reaches pageID: reparenting a page under its own descendant
// would create a cycle, and cycle members cannot be placed in the tree.
func (h *Handler) checkParentChain(w http.ResponseWriter, r *http.Request, parent *models.Page, pageID primitive.ObjectID) bool {
	ctx := r.Context()
	seen := map[primitive.ObjectID]struct{}{}

	cur := parent
	for {
		if cur.ID == pageID {
			jsonutil.BadRequest(w, "A page cannot be moved under its own descendant")
			return false
		}
		if cur.ParentID == nil {
			return true
		}
		if _, dup := seen[cur.ID]; dup {
			// Pre-existing cycle in stored data; this write is not what
			// creates it, and the tree builder renders such pages at root.
			return true
		}
		seen[cur.ID] = struct{}{}

		next, err := h.pages.GetByID(ctx, *cur.ParentID)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				return true
			}
			h.logger.Error("failed to walk parent chain", zap.String("id", cur.ParentID.Hex()), zap.Error(err))
			jsonutil.InternalError(w, "Failed to save page")
			return false
		}
		cur = next
	}
}

// extractFile pulls a validated attachment out of a multipart request and
// stores it. Returns (nil, true) when the request carries no file. The
// second return is false when a response has already been written.
func (h *Handler) extractFile(w http.ResponseWriter, r *http.Request, kind models.ContentKind) (*models.FileRef, bool) {
	file, header, err := upload.FromRequest(r)
	if err != nil {
		if errors.Is(err, upload.ErrNoFile) {
			return nil, true
		}
		var sizeErr *upload.SizeError
		if errors.As(err, &sizeErr) {
			jsonutil.BadRequest(w, "File is too large (max 10MB)")
			return nil, false
		}
		var typeErr *upload.TypeError
		if errors.As(err, &typeErr) {
			jsonutil.BadRequest(w, "File type is not allowed")
			return nil, false
		}
		jsonutil.BadRequest(w, "Invalid file upload")
		return nil, false
	}
	defer file.Close()

	if kind != models.ContentKindFile {
		jsonutil.BadRequest(w, "A file can only be attached to file pages")
		return nil, false
	}

	fileRef, err := upload.Save(r, h.fileStorage, file, header)
	if err != nil {
		h.logger.Error("failed to store attachment",
			zap.String("filename", header.Filename), zap.Error(err))
		jsonutil.InternalError(w, "Failed to store file")
		return nil, false
	}

	return fileRef, true
}

// deleteStoredFile removes an attachment from storage. Failures are logged
// and swallowed; the database record is already consistent.
func (h *Handler) deleteStoredFile(r *http.Request, ref *models.FileRef) {
	if ref == nil || ref.StoragePath == "" {
		return
	}
	if err := h.fileStorage.Delete(r.Context(), ref.StoragePath); err != nil {
		h.logger.Warn("failed to delete stored file",
			zap.String("path", ref.StoragePath),
			zap.Error(err))
	}
}

// isDuplicateKey reports whether err is a Mongo unique index violation.
func isDuplicateKey(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}
