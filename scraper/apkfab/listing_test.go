package apkfab

import (
	"testing"

	"apkmirror/models"
	"apkmirror/parser"
)

func TestExtractListingDedupAndFields(t *testing.T) {
	doc, err := parser.ParseString(hotHTML)
	if err != nil {
		t.Fatal(err)
	}
	n := NewNormalizer("apkfab.com", "Yandux.Biz")
	apps := ExtractListing(doc.Selection, models.PageHot, n, 0)
	if len(apps) != 2 {
		t.Fatalf("want 2 apps, got %d: %+v", len(apps), apps)
	}

	alpha := apps[0]
	if alpha.Title != "Alpha" || alpha.PackageName != "com.alpha.app" {
		t.Fatalf("first occurrence not kept: %+v", alpha)
	}
	if alpha.InternalLink != "/alpha-app/com.alpha.app" {
		t.Errorf("InternalLink = %q", alpha.InternalLink)
	}
	if alpha.IconURL != "/i/a.png" {
		t.Errorf("IconURL = %q, want lazy data-src normalized", alpha.IconURL)
	}
	if alpha.Rating != "4.5" {
		t.Errorf("Rating = %q", alpha.Rating)
	}
	if alpha.ReviewCountFormatted != "1.2K" || alpha.ReviewCountNumeric != 1234 {
		t.Errorf("reviews = %q / %v", alpha.ReviewCountFormatted, alpha.ReviewCountNumeric)
	}
	if apps[1].PackageName != "com.beta.app" || apps[1].Rating != "" {
		t.Errorf("second app = %+v", apps[1])
	}

}

func TestExtractListingLimitCountsKeptItems(t *testing.T) {
	doc, _ := parser.ParseString(hotHTML)
	n := NewNormalizer("apkfab.com", "Yandux.Biz")

	tests := []struct {
		limit int
		want  []string
	}{
		{1, []string{"com.alpha.app"}},
		// the duplicate Alpha is the second DOM item and must not use up a slot
		{2, []string{"com.alpha.app", "com.beta.app"}},
		{3, []string{"com.alpha.app", "com.beta.app"}},
	}
	for _, tt := range tests {
		apps := ExtractListing(doc.Selection, models.PageHot, n, tt.limit)
		if len(apps) != len(tt.want) {
			t.Fatalf("limit %d: got %d apps %+v", tt.limit, len(apps), apps)
		}
		for i, pkg := range tt.want {
			if apps[i].PackageName != pkg {
				t.Errorf("limit %d: apps[%d] = %q, want %q", tt.limit, i, apps[i].PackageName, pkg)
			}
		}
	}
}

func TestExtractCategoryIndex(t *testing.T) {
	doc, _ := parser.ParseString(`<html><body>
<div class="category-page"><div class="category-tag"><ul>
  <li><a href="https://apkfab.com/category/apps/tools">Tools</a></li>
  <li><a href="/category/apps/social">Social</a></li>
</ul></div></div>
<div class="category-page"><div class="category-tag"><ul>
  <li><a href="/category/games/action">Action</a></li>
  <li><a href="/somewhere/else">Else</a></li>
</ul></div></div>
</body></html>`)
	idx := ExtractCategoryIndex(doc.Selection)
	if len(idx.Apps) != 2 || len(idx.Games) != 1 {
		t.Fatalf("index = %+v", idx)
	}
	if idx.Apps[0].Link != "/category/apps/tools" || idx.Apps[0].Slug != "tools" {
		t.Errorf("first app category = %+v", idx.Apps[0])
	}
	if idx.Games[0].Name != "Action" {
		t.Errorf("game category = %+v", idx.Games[0])
	}
}

func TestExtractRelatedKeywords(t *testing.T) {
	doc, _ := parser.ParseString(`<div class="related-searches"><a>chat</a><a>Chat</a><a> video call </a></div>`)
	got := ExtractRelatedKeywords(doc.Selection)
	if len(got) != 2 || got[0] != "chat" || got[1] != "video call" {
		t.Fatalf("related keywords = %q", got)
	}
}
