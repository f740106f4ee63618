package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"apkmirror/config"
	"apkmirror/fetcher"
	"apkmirror/models"
	"apkmirror/scraper/apkfab"
	"apkmirror/storage"
	"apkmirror/utils"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubFetcher struct {
	pages  map[string]string
	finals map[string]string
}

func (f *stubFetcher) Get(_ context.Context, rawURL string, _ fetcher.Options) (*fetcher.Response, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, &fetcher.TransportError{URL: rawURL, Status: http.StatusNotFound, Message: "source returned an error status"}
	}
	return &fetcher.Response{Status: http.StatusOK, Body: []byte(body), FinalURL: rawURL}, nil
}

func (f *stubFetcher) GetPreservingQuery(ctx context.Context, rawURL string, opts fetcher.Options) (*fetcher.Response, error) {
	return f.Get(ctx, rawURL, opts)
}

func (f *stubFetcher) ResolveFinalURL(_ context.Context, rawURL string, _ fetcher.Options) (string, error) {
	if final, ok := f.finals[rawURL]; ok {
		return final, nil
	}
	return "", &fetcher.TransportError{URL: rawURL, Message: "no route"}
}

type memVisits struct {
	loads   []*models.Visit
	unloads map[string]int
}

func (m *memVisits) LogPageLoad(_ context.Context, v *models.Visit) (int64, error) {
	m.loads = append(m.loads, v)
	return int64(len(m.loads)), nil
}

func (m *memVisits) LogPageUnload(_ context.Context, session string, seconds int) error {
	for _, v := range m.loads {
		if v.SessionID == session {
			m.unloads[session] = seconds
			return nil
		}
	}
	return storage.ErrUnknownSession
}

func (m *memVisits) Close() {}

const listHTML = `<div class="list-template">
<div class="list"><a href="/alpha/com.alpha.app"><div class="icon"><img src="/a.png"></div><div class="title">Alpha</div></a></div>
<div class="list"><a href="/beta/com.beta.app"><div class="icon"></div><div class="title">Beta</div></a></div>
</div>`

const detailHTML = `<div class="detail_banner"><h1>Some App</h1><span>Update on: 2025-05-10</span></div>
<div class="detail_more_info"><div class="item"><p>Package Name</p><p>com.example.app</p></div></div>`

func newTestServer(pages map[string]string, visits storage.VisitStore) (*gin.Engine, *stubFetcher) {
	cfg := &config.Config{
		SourceDomain:     "apkfab.com",
		UserDomain:       "Yandux.Biz",
		HotLimit:         24,
		SuggestLimit:     8,
		SearchKeywordMax: 40,
		CountdownSeconds: 8,
	}
	f := &stubFetcher{pages: pages, finals: map[string]string{}}
	logger := utils.NewNopLogger()
	return New(cfg, logger, apkfab.NewScraper(cfg, logger, f), visits).Router(), f
}

func do(r http.Handler, method, target string, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestListingRoutesAndAjaxFlag(t *testing.T) {
	r, _ := newTestServer(map[string]string{
		"https://apkfab.com/new-apps":            listHTML,
		"https://apkfab.com/category/apps/tools": listHTML,
	}, nil)

	w := do(r, http.MethodGet, "/api/latest/apps", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var full struct {
		Kind     string              `json:"kind"`
		Apps     []models.AppSummary `json:"apps"`
		NextPage int                 `json:"next_page"`
	}
	decode(t, w, &full)
	if full.Kind != "latest" || len(full.Apps) != 2 || full.NextPage != 2 {
		t.Fatalf("latest = %+v", full)
	}

	tests := []struct {
		name    string
		target  string
		headers map[string]string
	}{
		{"header", "/api/category/apps/tools", map[string]string{"X-Requested-With": "XMLHttpRequest"}},
		{"query", "/api/category/apps/tools?ajax=1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.target, "", tt.headers)
			var m map[string]json.RawMessage
			decode(t, w, &m)
			if len(m) != 1 || m["apps"] == nil {
				t.Fatalf("ajax body = %s", w.Body.String())
			}
		})
	}
}

func TestErrorsAreRenderedNotRaw500(t *testing.T) {
	r, _ := newTestServer(map[string]string{
		"https://apkfab.com/broken/com.broken.app": `<p>no container</p>`,
	}, nil)

	tests := []struct {
		target string
		status int
		kind   string
	}{
		{"/api/hot/movies", http.StatusNotFound, "not_found"},
		{"/api/category/apps/missing", http.StatusNotFound, "not_found"},
		{"/api/app/broken/com.broken.app", http.StatusNotFound, string(models.ErrAppDetails)},
		{"/download-proxy?id=some-app/com.example.app&file=x.apk", http.StatusBadGateway, string(models.ErrDownloadNotAvailable)},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.target, "", nil)
			var body errorBody
			decode(t, w, &body)
			if w.Code != tt.status || body.Error != tt.kind || body.RecoveryLink == "" {
				t.Fatalf("got %d %+v", w.Code, body)
			}
		})
	}
}

func TestAppDetailFormatsDate(t *testing.T) {
	r, _ := newTestServer(map[string]string{"https://apkfab.com/some-app/com.example.app": detailHTML}, nil)
	w := do(r, http.MethodGet, "/api/app/some-app/com.example.app", "", nil)
	var d models.AppDetail
	decode(t, w, &d)
	if w.Code != http.StatusOK || d.Name != "Some App" || d.UpdateDate != "May 10, 2025" {
		t.Fatalf("got %d %+v", w.Code, d)
	}
}

func TestDownloadInvalidSHA1(t *testing.T) {
	r, _ := newTestServer(nil, nil)
	w := do(r, http.MethodGet, "/api/download/some-app/com.example.app?sha1=deadbeef", "", nil)
	var view models.DownloadView
	decode(t, w, &view)
	if w.Code != http.StatusNotFound || view.Error != models.ErrInvalidSHA1 {
		t.Fatalf("got %d %+v", w.Code, view)
	}
	if view.RecoveryLink != "/some-app/com.example.app/download" {
		t.Errorf("RecoveryLink = %q", view.RecoveryLink)
	}
}

func TestDownloadProxyRedirects(t *testing.T) {
	r, f := newTestServer(map[string]string{
		"https://apkfab.com/some-app/com.example.app/download": `<a class="down_btn" href="/go/1">Download APK (1 MB)</a>`,
	}, nil)
	f.finals["https://apkfab.com/go/1"] = "https://cdn.example.org/file.apk"

	w := do(r, http.MethodGet, "/download-proxy?id=some-app/com.example.app&file=a.apk", "", nil)
	if w.Code != http.StatusFound || w.Header().Get("Location") != "https://cdn.example.org/file.apk" {
		t.Fatalf("got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestLogVisit(t *testing.T) {
	store := &memVisits{unloads: map[string]int{}}
	r, _ := newTestServer(nil, store)

	w := do(r, http.MethodPost, "/log_visit", `{"action":"page_load","visited_url":"/x"}`, map[string]string{"User-Agent": "ua"})
	var resp visitResponse
	decode(t, w, &resp)
	if w.Code != http.StatusOK || resp.SessionID == "" || len(store.loads) != 1 {
		t.Fatalf("page_load: %d %+v", w.Code, resp)
	}
	if v := store.loads[0]; v.Browser != "Unknown" || v.UserAgent != "ua" || v.Country != "N/A" {
		t.Errorf("visit = %+v", v)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("tracking endpoint must allow any origin")
	}

	body := `{"action":"page_unload","session_id":"` + resp.SessionID + `","time_on_page_seconds":37}`
	w = do(r, http.MethodPost, "/log_visit", body, nil)
	if w.Code != http.StatusOK || store.unloads[resp.SessionID] != 37 {
		t.Fatalf("page_unload: %d %v", w.Code, store.unloads)
	}

	if w := do(r, http.MethodPost, "/log_visit", `not json`, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad payload status %d", w.Code)
	}
	if w := do(r, http.MethodPost, "/log_visit", `{"action":"page_unload"}`, nil); w.Code != http.StatusBadRequest {
		t.Errorf("unload without session status %d", w.Code)
	}
}

func TestLogVisitDisabled(t *testing.T) {
	r, _ := newTestServer(nil, nil)
	if w := do(r, http.MethodPost, "/log_visit", `{}`, nil); w.Code != http.StatusNoContent {
		t.Fatalf("status %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/nope", "", nil); w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "recovery_link") {
		t.Fatalf("no route: %d %s", w.Code, w.Body.String())
	}
}
