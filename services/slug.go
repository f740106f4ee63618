package services

import (
	"net/url"
	"regexp"
	"strings"
)

var nonSlugRun = regexp.MustCompile(`[^a-z0-9\p{L}]+`)

// Slugify lowercases s, collapses everything but letters and digits into
// single dashes, and path-escapes the result
func Slugify(s string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	slug = strings.Trim(slug, "-")
	return url.PathEscape(slug)
}
