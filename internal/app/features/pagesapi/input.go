package pagesapi

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/stratacms/internal/app/system/htmlsanitize"
	"github.com/dalemusser/stratacms/internal/app/system/jsonutil"
	"github.com/dalemusser/stratacms/internal/app/system/slugify"
	"github.com/dalemusser/stratacms/internal/app/system/upload"
	"github.com/dalemusser/stratacms/internal/domain/models"
)

// pageInput is the request payload for creating or updating a page. It is
// populated either from a JSON body or from multipart form fields when a
// file is attached.
type pageInput struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	MenuTypeID      string     `json:"menuTypeId"`
	ParentID        string     `json:"parentId"`
	ContentKind     string     `json:"contentKind"`
	Body            string     `json:"body"`
	ExternalURL     string     `json:"externalUrl"`
	OpenInNewWindow bool       `json:"openInNewWindow"`
	Enabled         *bool      `json:"enabled"`
	SEO             models.SEO `json:"seo"`
}

// parsePageInput reads a page payload from the request. Multipart requests
// (file uploads) carry the fields as form values; everything else is JSON.
func parsePageInput(r *http.Request) (*pageInput, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(upload.MaxFileSize); err != nil {
			return nil, err
		}

		in := &pageInput{
			Title:       strings.TrimSpace(r.FormValue("title")),
			Slug:        strings.TrimSpace(r.FormValue("slug")),
			MenuTypeID:  strings.TrimSpace(r.FormValue("menuTypeId")),
			ParentID:    strings.TrimSpace(r.FormValue("parentId")),
			ContentKind: strings.TrimSpace(r.FormValue("contentKind")),
			Body:        r.FormValue("body"),
			ExternalURL: strings.TrimSpace(r.FormValue("externalUrl")),
			SEO: models.SEO{
				WindowTitle:     strings.TrimSpace(r.FormValue("windowTitle")),
				MetaKeywords:    strings.TrimSpace(r.FormValue("metaKeywords")),
				MetaDescription: strings.TrimSpace(r.FormValue("metaDescription")),
			},
		}
		if v := r.FormValue("openInNewWindow"); v != "" {
			in.OpenInNewWindow, _ = strconv.ParseBool(v)
		}
		if v := r.FormValue("enabled"); v != "" {
			enabled, _ := strconv.ParseBool(v)
			in.Enabled = &enabled
		}
		return in, nil
	}

	var in pageInput
	if err := jsonutil.Decode(r, &in); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.MenuTypeID = strings.TrimSpace(in.MenuTypeID)
	in.ParentID = strings.TrimSpace(in.ParentID)
	in.ContentKind = strings.TrimSpace(in.ContentKind)
	in.ExternalURL = strings.TrimSpace(in.ExternalURL)
	return &in, nil
}

// resolvedInput is a validated page payload with parsed references.
type resolvedInput struct {
	Title           string
	Slug            string
	MenuTypeID      primitive.ObjectID
	ParentID        *primitive.ObjectID
	ContentKind     models.ContentKind
	Body            string
	ExternalURL     string
	OpenInNewWindow bool
	Enabled         bool
	SEO             models.SEO
}

// resolve validates field contents and parses the reference IDs. It returns
// field-level validation errors keyed by field name; referential checks
// (menu type exists, parent in same menu, slug collision) happen separately
// against the store.
func (in *pageInput) resolve() (*resolvedInput, map[string]string) {
	errs := map[string]string{}

	if in.Title == "" {
		errs["title"] = "required"
	} else if utf8.RuneCountInString(in.Title) > models.MaxTitleLen {
		errs["title"] = "must be at most 200 characters"
	}

	slug := in.Slug
	if slug == "" {
		slug = slugify.Make(in.Title)
	}
	if slug == "" {
		errs["slug"] = "required"
	} else if !slugify.IsValid(slug) {
		errs["slug"] = "lowercase letters, numbers, and hyphens only"
	}

	kind := models.ContentKind(in.ContentKind)
	if in.ContentKind == "" {
		kind = models.ContentKindContent
	} else if !models.IsValidContentKind(kind) {
		errs["contentKind"] = "must be one of content, external_link, file"
	}

	if kind == models.ContentKindExternalLink {
		if in.ExternalURL == "" {
			errs["externalUrl"] = "required for external link pages"
		} else if utf8.RuneCountInString(in.ExternalURL) > models.MaxExternalURLLen {
			errs["externalUrl"] = "must be at most 500 characters"
		}
	}

	if utf8.RuneCountInString(in.SEO.WindowTitle) > models.MaxWindowTitleLen {
		errs["windowTitle"] = "must be at most 100 characters"
	}
	if utf8.RuneCountInString(in.SEO.MetaKeywords) > models.MaxMetaKeywordsLen {
		errs["metaKeywords"] = "must be at most 500 characters"
	}
	if utf8.RuneCountInString(in.SEO.MetaDescription) > models.MaxMetaDescriptionLen {
		errs["metaDescription"] = "must be at most 300 characters"
	}

	out := &resolvedInput{
		Title:           in.Title,
		Slug:            slug,
		ContentKind:     kind,
		ExternalURL:     in.ExternalURL,
		OpenInNewWindow: in.OpenInNewWindow,
		Enabled:         true,
		SEO:             in.SEO,
	}

	// Page bodies come from a rich text editor; strip anything dangerous
	// before it reaches the database.
	if kind == models.ContentKindContent {
		out.Body = htmlsanitize.Sanitize(in.Body)
	}

	if in.Enabled != nil {
		out.Enabled = *in.Enabled
	}

	if in.MenuTypeID == "" {
		errs["menuTypeId"] = "required"
	} else {
		id, err := primitive.ObjectIDFromHex(in.MenuTypeID)
		if err != nil {
			errs["menuTypeId"] = "not a valid ID"
		} else {
			out.MenuTypeID = id
		}
	}

	if in.ParentID != "" {
		id, err := primitive.ObjectIDFromHex(in.ParentID)
		if err != nil {
			errs["parentId"] = "not a valid ID"
		} else {
			out.ParentID = &id
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}
