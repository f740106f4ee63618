// Package fetcher issues the outbound requests to the source site.
package fetcher

import (
	"context"
	"net/http"
	"time"

	"apkmirror/config"
	"apkmirror/utils"
)

// Options tune a single outbound call
type Options struct {
	// Timeout bounds the whole call; zero uses the fetcher default
	Timeout time.Duration
	// XHR marks an incremental AJAX request (JSON partial)
	XHR bool
	// Headers override the default browser-like headers
	Headers map[string]string
}

// Response is the raw result of a successful fetch
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	FinalURL string
}

// Fetcher is the contract every extractor and resolver depends on
type Fetcher interface {
	// Get follows redirects and returns the final body
	Get(ctx context.Context, rawURL string, opts Options) (*Response, error)
	// GetPreservingQuery does not follow the first redirect; it re-attaches the
	// original query string to the Location target and then follows from there
	GetPreservingQuery(ctx context.Context, rawURL string, opts Options) (*Response, error)
	// ResolveFinalURL follows redirects with body-less requests and returns the effective URL
	ResolveFinalURL(ctx context.Context, rawURL string, opts Options) (string, error)
}

// New picks the backend named by cfg.FetchMode. The returned func releases it.
func New(cfg *config.Config, logger *utils.Logger) (Fetcher, func()) {
	hops := NewHTTPFetcher(cfg, logger)
	if cfg.FetchMode == "browser" {
		b := NewBrowserFetcher(cfg, logger, hops)
		return b, b.Close
	}
	return hops, func() {}
}
