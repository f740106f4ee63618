package apkfab

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"apkmirror/fetcher"
	"apkmirror/models"
	"apkmirror/parser"
	"apkmirror/services"
)

const (
	defaultArch = "Universal"
	defaultDPI  = "No Dpi"
	notStated   = "N/A"
)

// DownloadRequest identifies the download view being asked for. An empty
// SHA1 means the latest build.
type DownloadRequest struct {
	ID   Identifier
	SHA1 string
}

// ResolveDownload builds the download view. Every failure is reported on
// the returned view's Error field; the view is never nil.
func (s *Scraper) ResolveDownload(ctx context.Context, req DownloadRequest) *models.DownloadView {
	view := &models.DownloadView{
		Versions:    []models.VersionHistoryEntry{},
		IsLatest:    req.SHA1 == "",
		WaitSeconds: s.cfg.CountdownSeconds,
		Error:       models.ErrNone,
	}

	var sha1 string
	if !view.IsLatest {
		var ok bool
		if sha1, ok = services.NormalizeSHA1(req.SHA1); !ok {
			return fail(view, models.ErrInvalidSHA1, "the requested version hash is not a valid SHA1")
		}
		view.RequestedSHA1 = sha1
	}

	app, err := s.fetchAppDetail(ctx, req.ID)
	if err != nil {
		return failWith(view, err, models.ErrAppDetails)
	}
	view.App = app
	src := sourceIdentifier(req.ID, app)
	link := Identifier{Slug: app.Slug, PackageName: app.PackageName}

	if view.IsLatest {
		s.resolveLatest(ctx, view, src, link)
	} else {
		s.resolveBySHA1(ctx, view, src, link, sha1)
	}
	if view.Error != models.ErrNone {
		return view
	}
	s.finalize(view, req.ID)
	return view
}

func (s *Scraper) resolveLatest(ctx context.Context, view *models.DownloadView, src, link Identifier) {
	app := view.App
	page, ok := s.fetchDownloadPage(ctx, src, "")
	if !ok {
		fail(view, models.ErrDownloadNotAvailable, "the source has no download available for this app")
		return
	}
	view.Versions = s.fetchVersions(ctx, src, link)

	dl := &view.Download
	dl.FinalURL = page.Href
	dl.FileSize = firstNonEmpty(page.FileSize, app.FileSize)
	dl.FileType = page.FileType
	dl.VersionName = firstNonEmpty(page.Version, app.VersionName)
	dl.UpdateDate = firstNonEmpty(page.UpdateDate, app.UpdateDateRaw)
	dl.AndroidRequirement = app.AndroidRequirement

	if m, ok := MatchLatestBySize(view.Versions, page.FileSize); ok {
		applyVariant(dl, m)
	}
	dl.Arch = firstNonEmpty(dl.Arch, defaultArch)
	dl.DPI = firstNonEmpty(dl.DPI, defaultDPI)
}

func (s *Scraper) resolveBySHA1(ctx context.Context, view *models.DownloadView, src, link Identifier, sha1 string) {
	view.Versions = s.fetchVersions(ctx, src, link)
	m, ok := FindVariantBySHA1(view.Versions, sha1)
	if !ok {
		fail(view, models.ErrInvalidSHA1, "the requested version was not found for this app")
		return
	}

	dl := &view.Download
	applyVariant(dl, m)

	page, ok := s.fetchDownloadPage(ctx, src, sha1)
	if !ok {
		fail(view, models.ErrDownloadNotAvailable, "the requested version is no longer available for download")
		return
	}
	dl.FinalURL = page.Href
	dl.FileSize = firstNonEmpty(dl.FileSize, page.FileSize)
	if dl.FileType == "" {
		dl.FileType = page.FileType
	}
}

// applyVariant copies a matched variant, and its version entry, onto dl
func applyVariant(dl *models.DownloadInfo, m VariantMatch) {
	v := m.Variant
	dl.SHA1 = v.SHA1
	dl.Arch = firstNonEmpty(v.Arch, dl.Arch)
	dl.DPI = firstNonEmpty(v.DPI, dl.DPI)
	dl.AndroidRequirement = firstNonEmpty(v.AndroidRequirement, dl.AndroidRequirement)
	dl.FileSize = firstNonEmpty(v.Size, m.Entry.Size, dl.FileSize)
	if v.Type != "" {
		dl.FileType = v.Type
	} else if m.Entry.Type != "" {
		dl.FileType = m.Entry.Type
	}
	dl.VersionName = firstNonEmpty(m.Entry.Version, dl.VersionName)
	dl.UpdateDate = firstNonEmpty(v.Date, m.Entry.Date, dl.UpdateDate)
}

func (s *Scraper) finalize(view *models.DownloadView, requested Identifier) {
	dl := &view.Download
	dl.FileSize = firstNonEmpty(dl.FileSize, notStated)
	if dl.FileType == "" {
		dl.FileType = models.FileAPK
	}
	dl.VersionName = firstNonEmpty(dl.VersionName, notStated)
	dl.AndroidRequirement = firstNonEmpty(dl.AndroidRequirement, notStated)

	view.DownloadTitle = strings.TrimSpace(fmt.Sprintf("Download %s %s", dl.FileType, dl.VersionName))
	view.Filename = DownloadFilename(view.App.Name, view.App.PackageName, dl.VersionName, dl.SHA1, s.cfg.UserDomain, dl.FileType)

	src := sourceIdentifier(requested, view.App)
	q := url.Values{}
	q.Set("id", src.Slug+"/"+src.PackageName)
	q.Set("file", view.Filename)
	if !view.IsLatest && dl.SHA1 != "" {
		q.Set("sha1", dl.SHA1)
	}
	view.ProxyLink = "/download-proxy?" + q.Encode()
}

func fail(view *models.DownloadView, kind models.ErrorKind, msg string) *models.DownloadView {
	view.Error = kind
	view.ErrorMessage = msg
	return view
}

func failWith(view *models.DownloadView, err error, fallback models.ErrorKind) *models.DownloadView {
	if de, ok := models.AsDomainError(err); ok {
		return fail(view, de.Kind, de.Message)
	}
	return fail(view, fallback, err.Error())
}

// DownloadFilename names the file handed to the visitor, e.g.
// "some-app_1.2.3_Example.Com.apk"
func DownloadFilename(name, pkg, version, sha1, userDomain string, fileType models.FileType) string {
	base := services.Slugify(firstNonEmpty(name, pkg))
	if base == "" {
		base = "app"
	}
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}

	var tag string
	switch {
	case version != "" && version != notStated:
		tag = strings.ReplaceAll(version, " ", "_")
	case len(sha1) >= 7:
		tag = "s-" + sha1[:7]
	default:
		tag = "latest"
	}

	ext := strings.ToLower(string(fileType))
	if ext == "" {
		ext = "apk"
	}
	file := base + "_" + tag + "_" + userDomain + "." + ext
	file = strings.ReplaceAll(file, "__", "_")
	file = strings.ReplaceAll(file, "_N/A_", "_")
	return services.SanitizeFilename(file)
}

// ProxyDownload resolves the binary URL behind the source's download button
// for id, optionally pinned to sha1, and returns where to send the visitor
func (s *Scraper) ProxyDownload(ctx context.Context, id Identifier, file, sha1 string) (string, error) {
	if id.PackageName == "" {
		return "", models.NewDomainError(models.ErrDownloadNotAvailable, "no app was named in the download request")
	}
	if sha1 != "" {
		var ok bool
		if sha1, ok = services.NormalizeSHA1(sha1); !ok {
			return "", models.NewDomainError(models.ErrInvalidSHA1, "the requested version hash is not a valid SHA1")
		}
	}
	file = services.SanitizeFilename(file)

	opts := fetcher.Options{Timeout: s.cfg.DownloadTimeout}
	rawURL := s.urls.download(id.Slug, id.PackageName, sha1)
	resp, err := s.fetcher.GetPreservingQuery(ctx, rawURL, opts)
	if err != nil {
		s.logger.Warn("proxy %s: %v", rawURL, err)
		return "", models.NewDomainError(models.ErrDownloadNotAvailable, "could not fetch the download page from the source")
	}
	doc, err := parser.Parse(resp.Body)
	if err != nil {
		return "", models.NewDomainError(models.ErrDownloadNotAvailable, "could not read the download page from the source")
	}
	page, ok := ExtractDownloadPage(doc.Selection)
	if !ok {
		return "", models.NewDomainError(models.ErrDownloadNotAvailable, "could not find the download button on the source page; the version may be unavailable")
	}

	intermediate := resolveAgainst(s.urls.base+"/", page.Href)
	final, err := s.fetcher.ResolveFinalURL(ctx, intermediate, opts)
	if err != nil || final == "" {
		s.logger.Warn("proxy final url %s: %v", intermediate, err)
		return "", models.NewDomainError(models.ErrDownloadNotAvailable, "could not resolve the final download URL; the link may have expired")
	}
	s.logger.Info("proxy %s -> %s", id.PackageName, final)
	return WithFilenameHint(final, file), nil
}

// WithFilenameHint adds the "_fn" parameter the winudf CDN uses to name the
// served file. Other hosts are returned unchanged.
func WithFilenameHint(rawURL, file string) string {
	u, err := url.Parse(rawURL)
	if err != nil || file == "" || !strings.HasSuffix(strings.ToLower(u.Hostname()), ".winudf.com") {
		return rawURL
	}
	q := u.Query()
	q.Set("_fn", base64.StdEncoding.EncodeToString([]byte(file)))
	u.RawQuery = q.Encode()
	return u.String()
}

func resolveAgainst(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
