// Package slugify derives URL-safe page slugs from display titles and
// validates client-supplied slugs. Use these helpers instead of scattered
// string munging so slug rules stay consistent across the application.
package slugify

import (
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
	validSlug    = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Make derives a slug from a title: lowercase, strip everything outside
// [a-z0-9 -], collapse whitespace to single hyphens, collapse hyphen
// runs, trim leading/trailing hyphens. Idempotent: Make(Make(x)) == Make(x).
func Make(title string) string {
	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValid reports whether s is a well-formed slug: non-empty, lowercase
// letters, digits, and hyphens only.
func IsValid(s string) bool {
	return validSlug.MatchString(s)
}
