package fetcher

import (
	"context"
	"time"

	"apkmirror/config"
	"apkmirror/utils"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in headless Chrome for sources that gate
// content behind scripts. Redirect hops and JSON partials still go through
// the embedded HTTPFetcher.
type BrowserFetcher struct {
	*HTTPFetcher
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	logger      *utils.Logger
}

// NewBrowserFetcher starts one browser allocator shared by all tabs
func NewBrowserFetcher(cfg *config.Config, logger *utils.Logger, hops *HTTPFetcher) *BrowserFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.BrowserHeadless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1280, 900),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		HTTPFetcher: hops,
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		logger:      logger.With("component", "browser"),
	}
}

// Get renders rawURL in a fresh tab and returns the serialized DOM
func (b *BrowserFetcher) Get(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	if opts.XHR {
		return b.HTTPFetcher.Get(ctx, rawURL, opts)
	}

	tabCtx, cancelTab := chromedp.NewContext(b.allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.timeoutFor(opts))
	defer cancelTimeout()

	headers := network.Headers{}
	for k, v := range b.headersFor(opts) {
		headers[k] = v
	}

	start := time.Now()
	var html, location string
	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(headers),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		b.logger.Warn("render %s failed: %v", rawURL, err)
		return nil, &TransportError{URL: rawURL, Message: "browser navigation failed", Err: err}
	}
	b.logger.Debug("rendered %s in %s (%d bytes)", rawURL, time.Since(start), len(html))

	out := &Response{Status: 200, Body: []byte(html), FinalURL: location}
	if err := checkResponse(rawURL, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Close shuts the browser down
func (b *BrowserFetcher) Close() {
	b.cancelAlloc()
}
