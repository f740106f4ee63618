package services

import (
	"path"
	"regexp"
	"strings"

	"apkmirror/parser"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	priceRegex   = regexp.MustCompile(`(?i)(?:Price:)?\s*([$€£¥₹])?\s*(\d+(?:\.\d+)?)`)
	readMore     = regexp.MustCompile(`(?i)\.{0,3}\s*read more\s*\.{0,3}`)
	bareURL      = regexp.MustCompile(`https?://[^\s"<]+`)
	knownHeading = regexp.MustCompile(`(?i)^(editor's review|about|what's new)`)
)

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
}

var headingNames = map[string]string{
	"editor's review": "Editor's Review",
	"about":           "About",
	"what's new":      "What's New",
}

// ParsePrice extracts a numeric price and ISO currency from visible price
// text such as "Price: $4.99". Free or unparsable text yields ("0", "").
func ParsePrice(raw string) (price, currency string) {
	t := strings.TrimSpace(raw)
	if t == "" || strings.Contains(strings.ToLower(t), "free") {
		return "0", ""
	}
	m := priceRegex.FindStringSubmatch(t)
	if m == nil {
		return "0", ""
	}
	return m[2], currencySymbols[m[1]]
}

// SanitizeFilename drops traversal sequences and keeps only the base name
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("..", "", `\`, "").Replace(strings.TrimSpace(name))
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// ProcessDescription cleans the description HTML scraped from a detail page:
// "read more" links back to the source are dropped, bare URLs become
// anchors, and known sub-headings are promoted to styled paragraphs
func ProcessDescription(raw, sourceDomain string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	root, err := parser.ParseFragment(raw)
	if err != nil {
		return raw
	}

	root.Find("a").Each(func(_ int, a *goquery.Selection) {
		href := strings.ToLower(a.AttrOr("href", ""))
		text := strings.ToLower(parser.NodeText(a))
		if strings.Contains(text, "read more") && (sourceDomain == "" || strings.Contains(href, strings.ToLower(sourceDomain)) || strings.HasPrefix(href, "/")) {
			a.Remove()
		}
	})

	for _, n := range root.Nodes {
		cleanText(n)
	}

	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		strong := p.ChildrenFiltered("strong")
		if p.Children().Length() != 1 || strong.Length() != 1 {
			return
		}
		if parser.NodeText(p) != parser.NodeText(strong) {
			return
		}
		m := knownHeading.FindStringSubmatch(parser.NodeText(strong))
		if m == nil {
			return
		}
		p.ReplaceWithHtml(`<p class="text-sm font-semibold text-blue-700">` + headingNames[strings.ToLower(m[1])] + `</p>`)
	})

	return parser.FragmentHTML(root)
}

// cleanText strips "read more" text and links bare URLs, outside anchors
func cleanText(n *html.Node) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		return
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode {
			c.Data = readMore.ReplaceAllString(c.Data, "")
			linkify(c)
		} else {
			cleanText(c)
		}
		c = next
	}
}

func linkify(t *html.Node) {
	locs := bareURL.FindAllStringIndex(t.Data, -1)
	if len(locs) == 0 {
		return
	}
	parent, text, last := t.Parent, t.Data, 0
	for _, loc := range locs {
		u := strings.TrimRight(text[loc[0]:loc[1]], ".,;:!?)")
		if loc[0] > last {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:loc[0]]}, t)
		}
		a := &html.Node{
			Type:     html.ElementNode,
			Data:     "a",
			DataAtom: atom.A,
			Attr: []html.Attribute{
				{Key: "href", Val: u},
				{Key: "target", Val: "_blank"},
				{Key: "rel", Val: "nofollow noopener"},
			},
		}
		a.AppendChild(&html.Node{Type: html.TextNode, Data: u})
		parent.InsertBefore(a, t)
		last = loc[0] + len(u)
	}
	if last < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[last:]}, t)
	}
	parent.RemoveChild(t)
}
