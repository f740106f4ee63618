package apkfab

import (
	"context"
	"strings"

	"apkmirror/config"
	"apkmirror/fetcher"
	"apkmirror/utils"

	json "github.com/goccy/go-json"
)

var (
	shaA = strings.Repeat("a", 40)
	shaB = strings.Repeat("b", 40)
	shaC = strings.Repeat("c", 40)
)

const (
	appURL      = "https://apkfab.com/some-app/com.example.app"
	downloadURL = appURL + "/download"
	versionsURL = appURL + "/versions"
)

func fixture(s string) string {
	return strings.NewReplacer("{A}", shaA, "{B}", shaB, "{C}", shaC).Replace(s)
}

var detailHTML = fixture(`<html><body>
<div class="detail_banner">
  <h1>Some App <small>1.2.3</small></h1>
  <img class="icon" data-src="https://apkfab.com/img/some.png" src="data:image/gif;base64,R0lGOD">
  <span style="color: #0284fe">1.2.3</span>
  <span>Update on: May 10, 2025</span>
  <a class="developers" href="https://apkfab.com/developer/Acme"><span>Acme Inc</span></a>
  <a href="/category/apps/tools">Tools</a>
  <p><strong>Requires Android:</strong> Android 5.0+</p>
</div>
<div class="detail_more_info">
  <div class="item"><p>Package Name</p><p>com.example.app</p></div>
  <div class="item"><p>Installs</p><p>1,000,000+</p></div>
  <div class="item"><p>Google Play</p><p><a href="https://play.google.com/store/apps/details?id=evil">Get it</a></p></div>
</div>
<div class="description"><div class="content"><p>An app. Visit https://example.org today.</p></div></div>
</body></html>`)

var downloadHTML = fixture(`<html><body>
<div class="app_info"><h1 class="app-name">Some App <small>1.2.3</small></h1></div>
<a class="down_btn" href="https://download.apkfab.com/go/latest" data-dt-file-size="45 MB" data-dt-file-type="APK">Download APK (45 MB)</a>
</body></html>`)

var downloadSHAHTML = fixture(`<html><body>
<a class="down_btn" href="/go/{C}">Download XAPK (30 MB)</a>
</body></html>`)

var versionsHTML = fixture(`<html><body>
<div class="version_history">
  <div class="list">
    <span class="version">1.2.3</span>
    <div class="text"><span>May 10, 2025</span><span>45 MB</span></div>
    <span class="apk">APK</span>
    <div class="table">
      <div class="table-row table-head"><div class="table-cell">Variant</div></div>
      <div class="table-row">
        <div class="table-cell"><div class="ver-info"><p><strong>Size:</strong> 45 MB</p><p><strong>Architecture:</strong> x86</p><p><strong>Screen DPI:</strong> 480dpi</p><p><strong>SHA1:</strong> {A}</p></div></div>
        <div class="table-cell">arm64-v8a</div>
        <div class="table-cell">Android 5.0+</div>
        <div class="table-cell">nodpi</div>
        <div class="table-cell"><a class="down_text" href="/some-app/com.example.app/download?sha1={A}">Download</a></div>
      </div>
      <div class="table-row">
        <div class="table-cell"><div class="ver-info"><p><strong>Size:</strong> 45MB</p><p><strong>SHA1:</strong> {B}</p></div></div>
        <div class="table-cell">armeabi-v7a</div>
        <div class="table-cell">Android 5.0+</div>
        <div class="table-cell">nodpi</div>
        <div class="table-cell"><a class="down_text" href="/some-app/com.example.app/download?sha1={B}">Download</a></div>
      </div>
    </div>
  </div>
  <div class="list">
    <span class="version">1.2.2</span>
    <div class="text"><span>April 1, 2025</span><span>30 MB</span></div>
    <span class="xapk">XAPK</span>
    <div class="v_h_button"><a class="down_text" href="/some-app/com.example.app/download?sha1={C}">Download</a></div>
    <div class="info_box">
      <p><strong>Requires Android:</strong> Android 6.0+</p>
      <p><strong>SHA1:</strong> {C}</p>
    </div>
  </div>
  <div class="list">
    <span class="version"></span>
    <div class="text"><span>March 1, 2025</span><span>29 MB</span></div>
  </div>
</div>
</body></html>`)

var hotHTML = `<html><body>
<div class="list-template">
  <div class="list"><a href="https://apkfab.com/alpha-app/com.alpha.app" title="Alpha">
    <div class="icon"><img data-src="https://apkfab.com/i/a.png" src="data:image/gif;base64,R0lGOD"></div>
    <div class="title">Alpha</div><span class="rating">4.5</span><span class="review">1,234 reviews</span></a></div>
  <div class="list"><a href="/alpha-app/com.alpha.app"><div class="icon"><img src="/i/a2.png"></div><div class="title">Alpha again</div></a></div>
  <div class="list"><a href="/beta/com.beta.app"><div class="icon"></div><div class="title">Beta</div></a></div>
  <div class="list"><a href="/nothing/here"><div class="icon"></div><div class="title">No package</div></a></div>
</div>
</body></html>`

// fakeFetcher serves canned pages by URL and records every call
type fakeFetcher struct {
	pages  map[string]string
	finals map[string]string
	calls  []string
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{pages: pages, finals: map[string]string{}}
}

func (f *fakeFetcher) respond(rawURL string) (*fetcher.Response, error) {
	body, ok := f.pages[rawURL]
	if !ok {
		return nil, &fetcher.TransportError{URL: rawURL, Status: 404, Message: "source returned an error status"}
	}
	return &fetcher.Response{Status: 200, Body: []byte(body), FinalURL: rawURL}, nil
}

func (f *fakeFetcher) Get(_ context.Context, rawURL string, _ fetcher.Options) (*fetcher.Response, error) {
	f.calls = append(f.calls, "GET "+rawURL)
	return f.respond(rawURL)
}

func (f *fakeFetcher) GetPreservingQuery(_ context.Context, rawURL string, _ fetcher.Options) (*fetcher.Response, error) {
	f.calls = append(f.calls, "KEEPQ "+rawURL)
	return f.respond(rawURL)
}

func (f *fakeFetcher) ResolveFinalURL(_ context.Context, rawURL string, _ fetcher.Options) (string, error) {
	f.calls = append(f.calls, "HEAD "+rawURL)
	final, ok := f.finals[rawURL]
	if !ok {
		return "", &fetcher.TransportError{URL: rawURL, Message: "no route"}
	}
	return final, nil
}

func (f *fakeFetcher) fetched(substr string) bool {
	for _, c := range f.calls {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

func testConfig() *config.Config {
	return &config.Config{
		SourceDomain:     "apkfab.com",
		UserDomain:       "Yandux.Biz",
		HotLimit:         24,
		SuggestLimit:     8,
		SearchKeywordMax: 40,
		CountdownSeconds: 8,
	}
}

func newTestScraper(f *fakeFetcher) *Scraper {
	return NewScraper(testConfig(), utils.NewNopLogger(), f)
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
