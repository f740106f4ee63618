package apkfab

import (
	"net/url"
	"strings"
	"unicode"
)

// reservedSegments are route words that never name an app or its slug
var reservedSegments = map[string]bool{
	"versions":  true,
	"download":  true,
	"related":   true,
	"category":  true,
	"developer": true,
	"app":       true,
}

// Identifier names an app on the source: its URL slug and package name
type Identifier struct {
	Slug        string
	PackageName string
}

// ExtractSlugAndPackage resolves an app identifier from a path or URL such
// as "/some-app/com.example.app/download". The package is the rightmost
// dotted, whitespace-free, non-reserved segment; the slug is the segment
// before it when that one is neither reserved nor package-like. Always
// returns, possibly with empty fields.
func ExtractSlugAndPackage(input string) Identifier {
	s := strings.TrimSpace(input)
	if decoded, err := url.QueryUnescape(s); err == nil {
		s = decoded
	}

	path := s
	if u, err := url.Parse(s); err == nil && (u.Path != "" || u.Host != "") {
		path = u.Path
	}

	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	for i := len(segments) - 1; i >= 0; i-- {
		if !isPackageSegment(segments[i]) {
			continue
		}
		id := Identifier{PackageName: segments[i]}
		if i > 0 {
			prev := segments[i-1]
			if !reservedSegments[strings.ToLower(prev)] && !strings.Contains(prev, ".") {
				id.Slug = prev
			}
		}
		return id
	}
	return Identifier{}
}

func isPackageSegment(seg string) bool {
	return strings.Contains(seg, ".") &&
		strings.IndexFunc(seg, unicode.IsSpace) < 0 &&
		!reservedSegments[strings.ToLower(seg)]
}
