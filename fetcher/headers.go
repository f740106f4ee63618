package fetcher

import (
	"net/url"
	"regexp"
	"strings"
)

// browserHeaders mimics a top-level navigation from the source's own pages
func browserHeaders(referer string) map[string]string {
	return map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "same-origin",
		"Sec-Fetch-User":            "?1",
		"Upgrade-Insecure-Requests": "1",
		"Referer":                   referer,
	}
}

// xhrHeaders is used for paginated listing partials that come back as JSON
func xhrHeaders(referer string) map[string]string {
	return map[string]string{
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"Accept-Language":  "en-US,en;q=0.9",
		"X-Requested-With": "XMLHttpRequest",
		"Sec-Fetch-Dest":   "empty",
		"Sec-Fetch-Mode":   "cors",
		"Sec-Fetch-Site":   "same-origin",
		"Referer":          referer,
	}
}

var locationRe = regexp.MustCompile(`(?im)^Location:[ \t]*(.*?)\s*$`)

// extractLocation pulls the Location header out of a raw header block
func extractLocation(rawHeaders string) string {
	m := locationRe.FindStringSubmatch(rawHeaders)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// PreserveQuery re-attaches the query string of original onto target,
// merging with '&' when target already carries one
func PreserveQuery(original, target string) string {
	u, err := url.Parse(original)
	if err != nil || u.RawQuery == "" {
		return target
	}
	if strings.Contains(target, "?") {
		return target + "&" + u.RawQuery
	}
	return target + "?" + u.RawQuery
}

// resolveReference makes a possibly relative Location absolute against base
func resolveReference(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
