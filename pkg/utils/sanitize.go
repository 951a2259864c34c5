package utils

import (
	"regexp"
	"strings"
)

var invalidSlugChars = regexp.MustCompile(`[^a-z0-9._-]+`) // Anything outside the portable filename set
var consecutiveDashes = regexp.MustCompile(`-{2,}`)

const maxSlugLength = 100

// BookSlug turns a book name (which may be a nested location like
// "guides/v2") into a single filename component for per-book artifacts.
func BookSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = invalidSlugChars.ReplaceAllString(slug, "-")
	slug = consecutiveDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-.")

	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-.")
	}

	if slug == "" {
		slug = "book"
	}
	return slug
}
