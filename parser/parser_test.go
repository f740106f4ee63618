package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const fixture = `<html><body>
<div class="app_info">
  <h1>Sample <small>1.2</small></h1>
  <span class="rating">4.5</span>
  <img class="icon" src="/placeholder.png" data-src="https://img.example/icon.png">
</div>
<dl><dt>Version</dt><dd>3.4.5</dd><dt>Size</dt><dd>12 MB</dd></dl>
<div class="info_box">
  <p><strong>SHA1:</strong> 0123456789abcdef0123456789abcdef01234567</p>
  <p><strong>Size:</strong>  48.2 MB </p>
</div>
<div class="broken"><p>unclosed <b>tags
</body></html>`

func TestFirstFallsThroughChain(t *testing.T) {
	doc, err := ParseString(fixture)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got := First(doc.Selection, CSS("div.detail_banner"), CSS("div.app_info"))
	if got.Length() != 1 || !got.HasClass("app_info") {
		t.Fatalf("expected app_info container, got %d nodes", got.Length())
	}

	none := First(doc.Selection, CSS("div.nope"), XPath("//section[@id='nope']"))
	if none.Length() != 0 {
		t.Fatalf("expected empty selection, got %d", none.Length())
	}
}

func TestFirstValue(t *testing.T) {
	doc, _ := ParseString(fixture)
	container := doc.Find("div.app_info")

	tests := []struct {
		name   string
		fields []Field
		want   string
	}{
		{"css text", []Field{Text(CSS("span.rating"))}, "4.5"},
		{"attr over text", []Field{Attr(CSS("img.icon"), "data-src")}, "https://img.example/icon.png"},
		{"skips blank then falls back", []Field{Text(CSS("span.missing")), Text(CSS("h1 small"))}, "1.2"},
		{"global xpath sibling axis", []Field{Text(Global(XPath("//dt[text()='Version']/following-sibling::dd[1]")))}, "3.4.5"},
		{"scoped xpath does not escape", []Field{Text(XPath(".//dd"))}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstValue(container, tt.fields...); got != tt.want {
				t.Fatalf("FirstValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLabeledValue(t *testing.T) {
	doc, _ := ParseString(fixture)
	box := doc.Find("div.info_box")

	if got := LabeledValue(box, "SHA1:"); got != "0123456789abcdef0123456789abcdef01234567" {
		t.Fatalf("SHA1 = %q", got)
	}
	if got := LabeledValue(box, "Size:"); got != "48.2 MB" {
		t.Fatalf("Size = %q", got)
	}
	if got := LabeledValue(box, "Architecture:"); got != "" {
		t.Fatalf("missing label = %q", got)
	}
}

func TestLookupsLeaveScopeUntouched(t *testing.T) {
	doc, _ := ParseString(fixture)
	box := doc.Find("div.info_box")

	lookups := []struct {
		name  string
		chain []Selector
	}{
		{"global css", []Selector{Global(CSS("span.rating"))}},
		{"global xpath", []Selector{Global(XPath("//dt[text()='Size']/following-sibling::dd[1]"))}},
		{"scoped xpath", []Selector{XPath(".//p/strong")}},
		{"miss then global", []Selector{CSS("span.nope"), Global(CSS("h1"))}},
	}
	for _, tt := range lookups {
		t.Run(tt.name, func(t *testing.T) {
			if got := First(box, tt.chain...); got.Length() == 0 {
				t.Fatalf("lookup matched nothing")
			}
			if box.Length() != 1 || goquery.NodeName(box) != "div" || !box.HasClass("info_box") {
				t.Fatalf("scope changed to %d x %q", box.Length(), goquery.NodeName(box))
			}
		})
	}
}

func TestLabeledValueRequirement(t *testing.T) {
	doc, _ := ParseString(`<div><p><strong>Requires Android:</strong> Android 5.0+</p></div>`)
	if got := LabeledValue(doc.Find("div"), "Requires Android"); got != "Android 5.0+" {
		t.Fatalf("LabeledValue = %q", got)
	}
	if got := FirstValue(doc.Selection, Text(Global(XPath("//p[contains(strong,'Requires Android')]/text()[normalize-space(.)]")))); got != "Android 5.0+" {
		t.Fatalf("xpath text step = %q", got)
	}
}

func TestImageSrc(t *testing.T) {
	doc, _ := ParseString(`<img id="a" src="https://x/real.png" data-src="data:image/gif;base64,AAA">
<img id="b" data-original="https://x/lazy.png" src="https://x/placeholder.svg">`)

	if got := ImageSrc(doc.Find("#a")); got != "https://x/real.png" {
		t.Fatalf("ImageSrc(a) = %q", got)
	}
	if got := ImageSrc(doc.Find("#b"), "data-src", "src", "data-original"); got != "https://x/lazy.png" {
		t.Fatalf("ImageSrc(b) = %q", got)
	}
}

func TestParseFragment(t *testing.T) {
	root, err := ParseFragment(`<p>one</p><p>two <a href="/x">x</a></p>`)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	if n := root.Children().Length(); n != 2 {
		t.Fatalf("children = %d, want 2", n)
	}
	if got := FragmentHTML(root); !strings.HasPrefix(got, "<p>one</p>") {
		t.Fatalf("FragmentHTML = %q", got)
	}
}

func TestUnwrapAJAX(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"json html key", `{"html":"<div class=\"list\">a</div>","page":2}`, `<div class="list">a</div>`, false},
		{"plain html", "  <div>x</div>", "<div>x</div>", false},
		{"empty html", `{"html":""}`, "", true},
		{"garbage", `not json`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnwrapAJAX([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if string(got) != tt.want {
				t.Fatalf("UnwrapAJAX = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	if got := CleanText("  a \n\t b  "); got != "a b" {
		t.Fatalf("CleanText = %q", got)
	}
}
