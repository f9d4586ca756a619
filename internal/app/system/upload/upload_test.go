package upload

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
)

func multipartRequest(t *testing.T, fieldName, fileName, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/cms-pages", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestFromRequest_AcceptsAllowedType(t *testing.T) {
	req := multipartRequest(t, FieldName, "report.pdf", "application/pdf", []byte("%PDF-1.4"))

	file, header, err := FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	defer file.Close()

	if header.Filename != "report.pdf" {
		t.Errorf("filename = %q, want report.pdf", header.Filename)
	}
}

func TestFromRequest_RejectsDisallowedType(t *testing.T) {
	req := multipartRequest(t, FieldName, "tool.exe", "application/x-msdownload", []byte("MZ"))

	_, _, err := FromRequest(req)
	var typeErr *TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("err = %v, want *TypeError", err)
	}
	if typeErr.ContentType != "application/x-msdownload" {
		t.Errorf("ContentType = %q", typeErr.ContentType)
	}
}

func TestFromRequest_MissingFileField(t *testing.T) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	_ = writer.WriteField("title", "No attachment here")
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/cms-pages", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	_, _, err := FromRequest(req)
	if !errors.Is(err, ErrNoFile) {
		t.Fatalf("err = %v, want ErrNoFile", err)
	}
}

func TestIsAllowedType(t *testing.T) {
	allowed := []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
		"image/png",
		"image/webp",
	}
	for _, ct := range allowed {
		if !IsAllowedType(ct) {
			t.Errorf("IsAllowedType(%q) = false, want true", ct)
		}
	}

	denied := []string{
		"application/x-sh",
		"text/html",
		"application/octet-stream",
		"video/mp4",
		"",
	}
	for _, ct := range denied {
		if IsAllowedType(ct) {
			t.Errorf("IsAllowedType(%q) = true, want false", ct)
		}
	}
}
