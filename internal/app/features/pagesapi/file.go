package pagesapi

import (
	"fmt"
	"io"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
)

// serveFile handles GET /file/{id}: streams the page's attached file with
// its stored MIME type and the original file name, inline so browsers can
// preview PDFs and images.
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	page, err := h.pages.GetByID(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			jsonutil.NotFound(w, "Page not found")
			return
		}
		h.logger.Error("failed to get page for file", zap.String("id", id.Hex()), zap.Error(err))
		jsonutil.InternalError(w, "Failed to fetch file")
		return
	}

	if !page.HasFile() {
		jsonutil.NotFound(w, "File not found")
		return
	}

	reader, err := h.fileStorage.Get(ctx, page.File.StoragePath)
	if err != nil {
		h.logger.Error("failed to get file from storage",
			zap.String("path", page.File.StoragePath), zap.Error(err))
		jsonutil.NotFound(w, "File not found on server")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", page.File.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", page.File.OriginalName))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream file",
			zap.String("path", page.File.StoragePath),
			zap.Error(err))
	}
}
