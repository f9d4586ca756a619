// Package upload handles multipart file attachments for pages: size and
// type validation, unique storage naming, and persistence to the configured
// storage backend.
package upload

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"

	"github.com/dalemusser/stratacms/internal/domain/models"
)

// MaxFileSize is the upload size limit for page attachments.
const MaxFileSize = 10 << 20 // 10MB

// FieldName is the multipart form field that carries the attachment.
const FieldName = "file"

// allowedTypes is the set of MIME types accepted for page attachments:
// office documents, plain text, and web images.
var allowedTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-powerpoint":                                     true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain": true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ErrNoFile indicates the request carried no file in the expected field.
var ErrNoFile = fmt.Errorf("no file provided")

// SizeError indicates the uploaded file exceeds MaxFileSize.
type SizeError struct {
	Size int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("file size %d exceeds limit of %d bytes", e.Size, MaxFileSize)
}

// TypeError indicates the uploaded file's MIME type is not accepted.
type TypeError struct {
	ContentType string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("file type %q is not allowed", e.ContentType)
}

// IsAllowedType reports whether contentType is accepted for page attachments.
func IsAllowedType(contentType string) bool {
	return allowedTypes[contentType]
}

// FromRequest extracts the attachment from a multipart request, if present.
// It returns ErrNoFile when the field is absent, which callers treat as
// "no attachment" rather than a failure. Size and type limits are enforced
// before any storage I/O happens.
func FromRequest(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, nil, ErrNoFile
	}

	file, header, err := r.FormFile(FieldName)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, ErrNoFile
		}
		return nil, nil, err
	}

	if header.Size > MaxFileSize {
		file.Close()
		return nil, nil, &SizeError{Size: header.Size}
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !IsAllowedType(contentType) {
		file.Close()
		return nil, nil, &TypeError{ContentType: contentType}
	}

	return file, header, nil
}

// Save writes the attachment to the storage backend under a unique
// date-partitioned path and returns the file metadata recorded on the page.
func Save(r *http.Request, store storage.Store, file multipart.File, header *multipart.FileHeader) (*models.FileRef, error) {
	ctx := r.Context()

	// Storage path: files/YYYY/MM/<unique><ext>
	now := time.Now().UTC()
	ext := filepath.Ext(header.Filename)
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String()[:8], ext)
	storagePath := fmt.Sprintf("files/%04d/%02d/%s", now.Year(), int(now.Month()), uniqueName)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := &storage.PutOptions{
		ContentType: contentType,
	}
	if err := store.Put(ctx, storagePath, file, opts); err != nil {
		return nil, fmt.Errorf("store attachment: %w", err)
	}

	return &models.FileRef{
		StoredName:   uniqueName,
		OriginalName: header.Filename,
		Size:         header.Size,
		MimeType:     contentType,
		StoragePath:  storagePath,
	}, nil
}
