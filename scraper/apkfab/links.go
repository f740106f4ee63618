package apkfab

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Normalizer rewrites links found on source pages so rendered output never
// points back at the source host
type Normalizer struct {
	sourceDomain string
	sourceHost   string
	userHost     string
}

// NewNormalizer builds a Normalizer for the given source and user domains
func NewNormalizer(sourceDomain, userDomain string) *Normalizer {
	return &Normalizer{
		sourceDomain: sourceDomain,
		sourceHost:   canonicalHost(sourceDomain),
		userHost:     canonicalHost(userDomain),
	}
}

// SourceDomain is the domain pages are scraped from
func (n *Normalizer) SourceDomain() string {
	return n.sourceDomain
}

func canonicalHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(h)), "www.")
}

func (n *Normalizer) isInternal(host string) bool {
	h := canonicalHost(host)
	return h != "" && (h == n.sourceHost || h == n.userHost)
}

var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// Normalize maps a scraped href or src to a root-relative internal path when
// it targets the source (or user) host, and leaves external URLs untouched.
// It is idempotent.
func (n *Normalizer) Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == "#" {
		return ""
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "//"):
		return n.absolute("https:"+s, s)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return n.absolute(s, s)
	case strings.HasPrefix(s, "/"):
		return rootRelative(s)
	case schemePrefix.MatchString(s):
		// mailto:, data:, javascript: and friends
		return s
	default:
		return rootRelative("/" + strings.TrimLeft(s, "./"))
	}
}

func (n *Normalizer) absolute(abs, original string) string {
	u, err := url.Parse(abs)
	if err != nil || u.Host == "" || !n.isInternal(u.Hostname()) {
		return original
	}
	p := u.EscapedPath()
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return rootRelative(p)
}

// rootRelative strips trailing slashes from the path part, keeping the query
func rootRelative(s string) string {
	path, query, hasQuery := strings.Cut(s, "?")
	path = strings.TrimRight(path, "/")
	if path == "" {
		path = "/"
	}
	if hasQuery {
		return path + "?" + query
	}
	return path
}

// AppLink is the internal detail-page path; slug and package are used as
// given (slugs are already path-safe)
func AppLink(slug, pkg string) string {
	if slug == "" {
		slug = "app"
	}
	return "/" + slug + "/" + pkg
}

// LatestDownloadLink is the internal download-page path of an app
func LatestDownloadLink(slug, pkg string) string {
	return AppLink(slug, pkg) + "/download"
}

// VersionDownloadLink is the internal download path of one variant; empty
// unless slug, package and sha1 are all known
func VersionDownloadLink(slug, pkg, sha1 string) string {
	if slug == "" || pkg == "" || sha1 == "" {
		return ""
	}
	return "/" + slug + "/" + pkg + "/download?sha1=" + sha1
}

// CategoryLink is the internal category listing path
func CategoryLink(main, sub string) string {
	link := "/category/" + url.PathEscape(main)
	if sub != "" {
		link += "/" + url.PathEscape(sub)
	}
	return link
}

// DeveloperLink is the internal developer listing path
func DeveloperLink(name string) string {
	return "/developer/" + url.PathEscape(name)
}

// PlayStoreLink is the Google Play storefront URL of a package
func PlayStoreLink(pkg string) string {
	if pkg == "" {
		return ""
	}
	return "https://play.google.com/store/apps/details?id=" + url.QueryEscape(pkg)
}

// sourceURLs builds the outbound URLs requested from the source site
type sourceURLs struct {
	base string
}

func (s sourceURLs) app(slug, pkg string) string {
	if slug == "" {
		return s.base + "/" + url.PathEscape(pkg)
	}
	return s.base + "/" + slug + "/" + url.PathEscape(pkg)
}

func (s sourceURLs) download(slug, pkg, sha1 string) string {
	u := s.app(slug, pkg) + "/download"
	if sha1 != "" {
		u += "?sha1=" + url.QueryEscape(sha1)
	}
	return u
}

func (s sourceURLs) versions(slug, pkg string) string {
	return s.app(slug, pkg) + "/versions"
}

func (s sourceURLs) categoryIndex() string {
	return s.base + "/category"
}

func (s sourceURLs) category(main, sub string, page int) string {
	var u string
	if sub == "" && (main == "apps" || main == "games") {
		u = s.base + "/" + main
	} else {
		u = s.base + CategoryLink(main, sub)
	}
	return withPage(u, page)
}

func (s sourceURLs) hot(kind string) string {
	return s.base + "/" + kind
}

func (s sourceURLs) latest(kind string, page int) string {
	return withPage(s.base+"/new-"+kind, page)
}

func (s sourceURLs) developer(name string, page int) string {
	return withPage(s.base+DeveloperLink(name), page)
}

func (s sourceURLs) search(keyword string) string {
	return s.base + "/search?q=" + url.QueryEscape(keyword)
}

func withPage(u string, page int) string {
	if page > 1 {
		return u + "?page=" + strconv.Itoa(page)
	}
	return u
}
