// Package apkfab scrapes the app catalog source and normalizes it into
// the records served by this mirror.
package apkfab

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"apkmirror/config"
	"apkmirror/fetcher"
	"apkmirror/models"
	"apkmirror/parser"
	"apkmirror/utils"

	"github.com/PuerkitoBio/goquery"
)

// Scraper runs one synchronous fetch-parse-normalize pipeline per call.
// It holds no per-request state and is safe for concurrent use.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	fetcher fetcher.Fetcher
	links   *Normalizer
	urls    sourceURLs
}

// NewScraper creates a new Scraper
func NewScraper(cfg *config.Config, logger *utils.Logger, f fetcher.Fetcher) *Scraper {
	return &Scraper{
		cfg:     cfg,
		logger:  logger.With("component", "scraper"),
		fetcher: f,
		links:   NewNormalizer(cfg.SourceDomain, cfg.UserDomain),
		urls:    sourceURLs{base: cfg.SourceBaseURL()},
	}
}

// Links exposes the normalizer bound to the configured domains
func (s *Scraper) Links() *Normalizer {
	return s.links
}

func (s *Scraper) fetchDocument(ctx context.Context, rawURL string, opts fetcher.Options) (*goquery.Document, error) {
	resp, err := s.fetcher.Get(ctx, rawURL, opts)
	if err != nil {
		return nil, err
	}
	body := resp.Body
	if opts.XHR {
		if body, err = parser.UnwrapAJAX(body); err != nil {
			return nil, err
		}
	}
	return parser.Parse(body)
}

func (s *Scraper) listing(ctx context.Context, rawURL string, xhr bool, kind models.PageKind, limit int) ([]models.AppSummary, *goquery.Document, error) {
	doc, err := s.fetchDocument(ctx, rawURL, fetcher.Options{XHR: xhr})
	if errors.Is(err, parser.ErrNoHTML) {
		return []models.AppSummary{}, nil, nil
	}
	if err != nil {
		s.logger.Warn("%s listing %s: %v", kind, rawURL, err)
		return nil, nil, err
	}
	apps := ExtractListing(doc.Selection, kind, s.links, limit)
	s.logger.Debug("%s listing %s: %d apps", kind, rawURL, len(apps))
	return apps, doc, nil
}

// Categories returns the category index
func (s *Scraper) Categories(ctx context.Context) (models.CategoryIndex, error) {
	doc, err := s.fetchDocument(ctx, s.urls.categoryIndex(), fetcher.Options{})
	if err != nil {
		return models.CategoryIndex{}, err
	}
	return ExtractCategoryIndex(doc.Selection), nil
}

// Category lists one category page; main "apps" or "games" without a
// sub-category lists the top-level section
func (s *Scraper) Category(ctx context.Context, main, sub string, page int) ([]models.AppSummary, error) {
	apps, _, err := s.listing(ctx, s.urls.category(main, sub, page), page > 1, models.PageCategory, 0)
	return apps, err
}

// Hot lists the trending apps or games, capped at the configured limit
func (s *Scraper) Hot(ctx context.Context, kind string) ([]models.AppSummary, error) {
	if err := checkSection(kind); err != nil {
		return nil, err
	}
	apps, _, err := s.listing(ctx, s.urls.hot(kind), false, models.PageHot, s.cfg.HotLimit)
	return apps, err
}

// Latest lists newly added apps or games
func (s *Scraper) Latest(ctx context.Context, kind string, page int) ([]models.AppSummary, error) {
	if err := checkSection(kind); err != nil {
		return nil, err
	}
	apps, _, err := s.listing(ctx, s.urls.latest(kind, page), page > 1, models.PageLatest, 0)
	return apps, err
}

// ErrUnknownSection rejects hot/latest sections other than apps and games
var ErrUnknownSection = errors.New("unknown section")

func checkSection(kind string) error {
	if kind != "apps" && kind != "games" {
		return fmt.Errorf("%w %q", ErrUnknownSection, kind)
	}
	return nil
}

// Developer lists a developer's apps; page 1 also carries the banner info
func (s *Scraper) Developer(ctx context.Context, name string, page int) (*models.DeveloperPage, error) {
	apps, doc, err := s.listing(ctx, s.urls.developer(name, page), page > 1, models.PageDeveloper, 0)
	if err != nil {
		return nil, err
	}
	out := &models.DeveloperPage{Apps: apps}
	if page <= 1 && doc != nil {
		out.Info = ExtractDeveloperInfo(doc.Selection, s.links)
	}
	return out, nil
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// CleanKeyword strips markup and bounds a search keyword to max runes
func CleanKeyword(keyword string, max int) string {
	k := strings.TrimSpace(tagPattern.ReplaceAllString(keyword, ""))
	if max > 0 && utf8.RuneCountInString(k) > max {
		k = strings.TrimSpace(string([]rune(k)[:max]))
	}
	return k
}

// Search runs a keyword search. When nothing matches, the source's related
// keywords are returned instead.
func (s *Scraper) Search(ctx context.Context, keyword string) (*models.SearchResult, error) {
	kw := CleanKeyword(keyword, s.cfg.SearchKeywordMax)
	result := &models.SearchResult{Keyword: kw, Apps: []models.AppSummary{}}
	if kw == "" {
		return result, nil
	}
	apps, doc, err := s.listing(ctx, s.urls.search(kw), false, models.PageSearch, 0)
	if err != nil {
		return nil, err
	}
	result.Apps = apps
	if len(apps) == 0 && doc != nil {
		result.RelatedKeywords = ExtractRelatedKeywords(doc.Selection)
	}
	return result, nil
}

// Suggest returns compact autocomplete entries for a partial query
func (s *Scraper) Suggest(ctx context.Context, query string) ([]models.Suggestion, error) {
	kw := CleanKeyword(query, s.cfg.SearchKeywordMax)
	out := []models.Suggestion{}
	if kw == "" {
		return out, nil
	}
	doc, err := s.fetchDocument(ctx, s.urls.search(kw), fetcher.Options{Timeout: s.cfg.SuggestTimeout})
	if err != nil {
		return nil, err
	}
	for _, app := range ExtractListing(doc.Selection, models.PageSearch, s.links, s.cfg.SuggestLimit) {
		out = append(out, models.Suggestion{Title: app.Title, Icon: app.IconURL, URL: app.InternalLink})
	}
	return out, nil
}

// fetchAppDetail fetches and parses only the main app page
func (s *Scraper) fetchAppDetail(ctx context.Context, id Identifier) (*models.AppDetail, error) {
	if id.PackageName == "" {
		return nil, models.NewDomainError(models.ErrAppDetails, "no package name in the request")
	}
	doc, err := s.fetchDocument(ctx, s.urls.app(id.Slug, id.PackageName), fetcher.Options{Timeout: s.cfg.DetailTimeout})
	if err != nil {
		s.logger.Warn("detail %s: %v", id.PackageName, err)
		return nil, models.NewDomainError(models.ErrAppDetails, "could not load the app page from the source")
	}
	return ExtractAppDetail(doc.Selection, s.links, id)
}

// fetchVersions loads the version history; any failure yields an empty list
func (s *Scraper) fetchVersions(ctx context.Context, src, link Identifier) []models.VersionHistoryEntry {
	doc, err := s.fetchDocument(ctx, s.urls.versions(src.Slug, src.PackageName), fetcher.Options{})
	if err != nil {
		if !fetcher.IsNotFound(err) {
			s.logger.Warn("versions %s: %v", src.PackageName, err)
		}
		return []models.VersionHistoryEntry{}
	}
	return ExtractVersionHistory(doc.Selection, link)
}

// fetchDownloadPage loads /download, through the query-preserving fetch when
// a specific hash is requested
func (s *Scraper) fetchDownloadPage(ctx context.Context, src Identifier, sha1 string) (DownloadPage, bool) {
	opts := fetcher.Options{Timeout: s.cfg.DownloadTimeout}
	rawURL := s.urls.download(src.Slug, src.PackageName, sha1)

	var resp *fetcher.Response
	var err error
	if sha1 != "" {
		resp, err = s.fetcher.GetPreservingQuery(ctx, rawURL, opts)
	} else {
		resp, err = s.fetcher.Get(ctx, rawURL, opts)
	}
	if err != nil {
		s.logger.Warn("download page %s: %v", rawURL, err)
		return DownloadPage{}, false
	}
	doc, err := parser.Parse(resp.Body)
	if err != nil {
		return DownloadPage{}, false
	}
	page, ok := ExtractDownloadPage(doc.Selection)
	if ok {
		page.Href = resolveAgainst(s.urls.base+"/", page.Href)
	}
	return page, ok
}

// AppDetail builds the detail view: the app page, plus for free apps the
// latest download button matched against the newest version's variants
func (s *Scraper) AppDetail(ctx context.Context, id Identifier) (*models.AppDetail, error) {
	d, err := s.fetchAppDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.IsPaid() {
		return d, nil
	}

	src := sourceIdentifier(id, d)
	page, ok := s.fetchDownloadPage(ctx, src, "")
	if !ok {
		return d, nil
	}
	d.LatestDownloadLink = LatestDownloadLink(d.Slug, d.PackageName)
	if page.FileSize != "" {
		d.FileSize = page.FileSize
	}
	d.FileType = page.FileType

	entries := s.fetchVersions(ctx, src, Identifier{Slug: d.Slug, PackageName: d.PackageName})
	if m, ok := MatchLatestBySizeAndRequirement(entries, page.FileSize, d.AndroidRequirement); ok {
		d.MatchedSHA1 = m.Variant.SHA1
		d.MatchedArch = firstNonEmpty(m.Variant.Arch, "Universal")
	}
	return d, nil
}

// sourceIdentifier prefers the slug the visitor requested, which is the
// source's own, over the one derived from the app name
func sourceIdentifier(requested Identifier, d *models.AppDetail) Identifier {
	src := Identifier{Slug: requested.Slug, PackageName: requested.PackageName}
	if src.PackageName == "" {
		src.PackageName = d.PackageName
	}
	if src.Slug == "" {
		src.Slug = d.Slug
	}
	return src
}
