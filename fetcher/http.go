package fetcher

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"apkmirror/config"
	"apkmirror/utils"

	"github.com/imroc/req/v3"
	"github.com/valyala/fasthttp"
)

const maxRedirects = 10

// HTTPFetcher talks to the source over plain HTTP. Redirect-following GETs go
// through req; the manual-redirect and HEAD hops go through fasthttp, whose
// client never follows redirects on its own.
type HTTPFetcher struct {
	referer string
	timeout time.Duration
	logger  *utils.Logger
	client  *req.Client
	fast    *fasthttp.Client
}

// NewHTTPFetcher builds both clients from cfg
func NewHTTPFetcher(cfg *config.Config, logger *utils.Logger) *HTTPFetcher {
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}

	client := req.C().
		ImpersonateChrome().
		SetUserAgent(cfg.UserAgent).
		SetTimeout(cfg.RequestTimeout).
		SetDial(dialer.DialContext).
		SetRedirectPolicy(req.MaxRedirectPolicy(maxRedirects))
	if cfg.InsecureSkipVerify {
		client.EnableInsecureSkipVerify()
	}

	connectTimeout := cfg.ConnectTimeout
	fast := &fasthttp.Client{
		Name:                cfg.UserAgent,
		ReadTimeout:         cfg.RequestTimeout,
		WriteTimeout:        cfg.RequestTimeout,
		ReadBufferSize:      16 << 10,
		MaxResponseBodySize: 32 << 20,
		TLSConfig:           &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
		Dial: func(addr string) (net.Conn, error) {
			return fasthttp.DialTimeout(addr, connectTimeout)
		},
	}

	return &HTTPFetcher{
		referer: cfg.SourceBaseURL() + "/",
		timeout: cfg.RequestTimeout,
		logger:  logger.With("component", "fetcher"),
		client:  client,
		fast:    fast,
	}
}

func (f *HTTPFetcher) timeoutFor(opts Options) time.Duration {
	if opts.Timeout > 0 {
		return opts.Timeout
	}
	return f.timeout
}

func (f *HTTPFetcher) headersFor(opts Options) map[string]string {
	h := browserHeaders(f.referer)
	if opts.XHR {
		h = xhrHeaders(f.referer)
	}
	for k, v := range opts.Headers {
		h[k] = v
	}
	return h
}

// Get fetches rawURL following redirects
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeoutFor(opts))
	defer cancel()

	start := time.Now()
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeaders(f.headersFor(opts)).
		Get(rawURL)
	if err != nil {
		f.logger.Warn("GET %s failed: %v", rawURL, err)
		return nil, &TransportError{URL: rawURL, Message: "request failed", Err: err}
	}

	out := &Response{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     resp.Bytes(),
		FinalURL: rawURL,
	}
	if resp.Response != nil && resp.Response.Request != nil && resp.Response.Request.URL != nil {
		out.FinalURL = resp.Response.Request.URL.String()
	}

	f.logger.Zerolog().Debug().
		Str("url", rawURL).
		Int("status", out.Status).
		Int("bytes", len(out.Body)).
		Dur("elapsed", time.Since(start)).
		Msg("fetched")

	if err := checkResponse(rawURL, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPreservingQuery issues rawURL without following the first redirect. A 3xx
// Location is resolved, gets the original query re-attached, and is then
// fetched with redirects allowed.
func (f *HTTPFetcher) GetPreservingQuery(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{URL: rawURL, Message: "request cancelled", Err: err}
	}

	request := fasthttp.AcquireRequest()
	response := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(request)
	defer fasthttp.ReleaseResponse(response)

	request.SetRequestURI(rawURL)
	request.Header.SetMethod(fasthttp.MethodGet)
	for k, v := range f.headersFor(opts) {
		request.Header.Set(k, v)
	}

	if err := f.fast.DoTimeout(request, response, f.timeoutFor(opts)); err != nil {
		f.logger.Warn("manual-redirect GET %s failed: %v", rawURL, err)
		return nil, &TransportError{URL: rawURL, Message: "request failed", Err: err}
	}

	status := response.StatusCode()
	if !fasthttp.StatusCodeIsRedirect(status) {
		out := &Response{
			Status:   status,
			Header:   toHTTPHeader(&response.Header),
			Body:     append([]byte(nil), response.Body()...),
			FinalURL: rawURL,
		}
		if err := checkResponse(rawURL, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	location := extractLocation(response.Header.String())
	if location == "" {
		return nil, &TransportError{URL: rawURL, Status: status, Message: "redirect without Location header"}
	}
	target := PreserveQuery(rawURL, resolveReference(rawURL, location))
	f.logger.Debug("redirect %s -> %s", rawURL, target)

	return f.Get(ctx, target, opts)
}

// ResolveFinalURL follows the redirect chain of rawURL with HEAD requests
func (f *HTTPFetcher) ResolveFinalURL(ctx context.Context, rawURL string, opts Options) (string, error) {
	current := rawURL
	for hop := 0; hop <= maxRedirects; hop++ {
		if err := ctx.Err(); err != nil {
			return "", &TransportError{URL: current, Message: "request cancelled", Err: err}
		}

		status, location, err := f.head(current, opts)
		if err != nil {
			return "", err
		}
		if !fasthttp.StatusCodeIsRedirect(status) {
			if status >= 400 {
				return "", &TransportError{URL: current, Status: status, Message: "final hop returned an error status"}
			}
			return current, nil
		}
		if location == "" {
			return current, nil
		}
		current = resolveReference(current, location)
	}
	return "", &TransportError{URL: rawURL, Message: "too many redirects"}
}

func (f *HTTPFetcher) head(rawURL string, opts Options) (int, string, error) {
	request := fasthttp.AcquireRequest()
	response := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(request)
	defer fasthttp.ReleaseResponse(response)

	request.SetRequestURI(rawURL)
	request.Header.SetMethod(fasthttp.MethodHead)
	for k, v := range f.headersFor(opts) {
		request.Header.Set(k, v)
	}
	response.SkipBody = true

	if err := f.fast.DoTimeout(request, response, f.timeoutFor(opts)); err != nil {
		return 0, "", &TransportError{URL: rawURL, Message: "HEAD failed", Err: err}
	}
	return response.StatusCode(), string(response.Header.Peek(fasthttp.HeaderLocation)), nil
}

func toHTTPHeader(h *fasthttp.ResponseHeader) http.Header {
	out := make(http.Header)
	h.VisitAll(func(k, v []byte) {
		out.Add(string(k), string(v))
	})
	return out
}
