// Package htmlsanitize provides HTML sanitization for page body content.
// It uses bluemonday to strip potentially dangerous HTML while preserving
// the formatting produced by rich text editors.
package htmlsanitize

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// embedSrc matches the embed URLs of the media hosts the page editor
// offers. Iframes pointing anywhere else lose their src.
var embedSrc = regexp.MustCompile(`^https://(www\.)?(youtube\.com|youtube-nocookie\.com)/embed/|^https://player\.vimeo\.com/video/`)

var (
	// policy is the shared bluemonday policy for sanitizing page bodies.
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared sanitization policy, creating it on first use.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		// Start with UGC (User Generated Content) policy as base
		policy = bluemonday.UGCPolicy()

		// Allow tables produced by the page editor
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
		policy.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		policy.AllowAttrs("class").OnElements("table", "th", "td", "tr")

		// Allow common text formatting
		policy.AllowElements("u", "s", "sub", "sup", "mark")

		// Allow data attributes used by editor extensions
		policy.AllowDataAttributes()

		// Allow style attribute on specific elements for tables
		policy.AllowAttrs("style").OnElements("table", "th", "td")

		// Allow iframes for embedded media, but only from known video
		// hosts so page bodies cannot embed arbitrary origins
		policy.AllowAttrs("width", "height", "frameborder", "allowfullscreen").OnElements("iframe")
		policy.AllowAttrs("src").Matching(embedSrc).OnElements("iframe")
		policy.AllowElements("iframe")
	})
	return policy
}

// Sanitize cleans HTML input, removing potentially dangerous elements and
// attributes. It preserves safe formatting like bold, italic, lists, links,
// tables, and images.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}

// IsPlainText checks if content appears to be plain text (no HTML tags).
func IsPlainText(content string) bool {
	if content == "" {
		return true
	}
	// Valid HTML tags require both characters, so if either is missing,
	// treat as plain text.
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}
