package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentKind identifies which content field of a Page is active.
// A page carries exactly one of body, external URL, or attached file.
type ContentKind string

const (
	ContentKindContent      ContentKind = "content"
	ContentKindExternalLink ContentKind = "external_link"
	ContentKindFile         ContentKind = "file"
)

// IsValidContentKind checks if a content kind value is valid.
func IsValidContentKind(k ContentKind) bool {
	switch k {
	case ContentKindContent, ContentKindExternalLink, ContentKindFile:
		return true
	}
	return false
}

// FileRef holds the metadata of a file attached to a page. The file bytes
// live in the storage backend under StoragePath.
type FileRef struct {
	StoredName   string `bson:"stored_name" json:"storedName"`
	OriginalName string `bson:"original_name" json:"originalName"`
	Size         int64  `bson:"size" json:"size"`
	MimeType     string `bson:"mime_type" json:"mimeType"`
	StoragePath  string `bson:"storage_path" json:"-"`
}

// SEO holds the optional search metadata of a page.
type SEO struct {
	WindowTitle     string `bson:"window_title,omitempty" json:"windowTitle,omitempty"`
	MetaKeywords    string `bson:"meta_keywords,omitempty" json:"metaKeywords,omitempty"`
	MetaDescription string `bson:"meta_description,omitempty" json:"metaDescription,omitempty"`
}

// Page is a single CMS entry: rich content, an external link, or an
// uploaded file, positioned in the page tree of one menu type.
type Page struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title      string              `bson:"title" json:"title"`
	TitleCI    string              `bson:"title_ci" json:"-"` // Case-insensitive for sorting/search
	Slug       string              `bson:"slug" json:"slug"`
	MenuTypeID primitive.ObjectID  `bson:"menu_type_id" json:"menuTypeId"`
	ParentID   *primitive.ObjectID `bson:"parent_id,omitempty" json:"parentId,omitempty"` // nil = root of its menu
	Order      int                 `bson:"order_id" json:"order"`

	ContentKind ContentKind `bson:"content_kind" json:"contentKind"`
	Body        string      `bson:"body,omitempty" json:"body,omitempty"`
	ExternalURL string      `bson:"external_url,omitempty" json:"externalUrl,omitempty"`
	File        *FileRef    `bson:"file,omitempty" json:"file,omitempty"`

	OpenInNewWindow bool `bson:"open_in_new_window" json:"openInNewWindow"`
	Enabled         bool `bson:"is_enabled" json:"enabled"`

	SEO SEO `bson:"seo,omitempty" json:"seo,omitempty"`

	CreatedBy string    `bson:"created_by" json:"createdBy"`
	UpdatedBy string    `bson:"updated_by" json:"updatedBy"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsRoot returns true if the page is at the top level of its menu.
func (p *Page) IsRoot() bool {
	return p.ParentID == nil
}

// HasFile returns true if the page has an attached file.
func (p *Page) HasFile() bool {
	return p.ContentKind == ContentKindFile && p.File != nil
}

// FileURL returns the serving URL for the attached file, or "" when the
// page has none. The URL is derived, never stored.
func (p *Page) FileURL() string {
	if !p.HasFile() {
		return ""
	}
	return "/api/cms-pages/file/" + p.ID.Hex()
}

// Field length limits, matching what the admin UI enforces client-side.
const (
	MaxTitleLen           = 200
	MaxExternalURLLen     = 500
	MaxWindowTitleLen     = 100
	MaxMetaKeywordsLen    = 500
	MaxMetaDescriptionLen = 300
)
