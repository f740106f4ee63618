package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Selector locates nodes relative to a scope. Not finding anything yields an
// empty selection, never an error.
type Selector interface {
	Select(scope *goquery.Selection) *goquery.Selection
}

// CSS is a goquery/cascadia selector evaluated under the scope
type CSS string

func (c CSS) Select(scope *goquery.Selection) *goquery.Selection {
	return scope.Find(string(c))
}

// XPath is evaluated with each scope node as the context node. Used where
// CSS has no equivalent: sibling axes, text-node steps, text predicates.
type XPath string

func (x XPath) Select(scope *goquery.Selection) *goquery.Selection {
	out := empty(scope)
	for _, n := range scope.Nodes {
		nodes, err := htmlquery.QueryAll(n, string(x))
		if err != nil {
			return out
		}
		out = out.AddNodes(nodes...)
	}
	return out
}

type global struct {
	inner Selector
}

// Global evaluates inner from the document root instead of the scope
func Global(inner Selector) Selector {
	return global{inner: inner}
}

func (g global) Select(scope *goquery.Selection) *goquery.Selection {
	return g.inner.Select(Root(scope))
}

// Root returns the document node that owns scope
func Root(scope *goquery.Selection) *goquery.Selection {
	if scope.Length() == 0 {
		return scope
	}
	n := scope.Nodes[0]
	for n.Parent != nil {
		n = n.Parent
	}
	return empty(scope).AddNodes(n)
}

// empty returns a selection with its own node slice, so AddNodes on it
// never writes into scope's backing array
func empty(scope *goquery.Selection) *goquery.Selection {
	return scope.FilterFunction(func(int, *goquery.Selection) bool { return false })
}

// First tries each selector in priority order and returns the first node
// of the first one that matches anything
func First(scope *goquery.Selection, chain ...Selector) *goquery.Selection {
	for _, sel := range chain {
		if m := sel.Select(scope); m.Length() > 0 {
			return m.First()
		}
	}
	return empty(scope)
}

// All returns every match of the first selector in chain that matches anything
func All(scope *goquery.Selection, chain ...Selector) *goquery.Selection {
	for _, sel := range chain {
		if m := sel.Select(scope); m.Length() > 0 {
			return m
		}
	}
	return empty(scope)
}

// Field pairs a selector with the attribute to read; an empty Attr reads text
type Field struct {
	Sel  Selector
	Attr string
}

// Text reads the normalized text of the first node matched by sel
func Text(sel Selector) Field { return Field{Sel: sel} }

// Attr reads attribute name of the first node matched by sel
func Attr(sel Selector, name string) Field { return Field{Sel: sel, Attr: name} }

// FirstValue returns the first non-blank value produced by fields, in order
func FirstValue(scope *goquery.Selection, fields ...Field) string {
	for _, f := range fields {
		m := f.Sel.Select(scope)
		if m.Length() == 0 {
			continue
		}
		var v string
		if f.Attr != "" {
			v = strings.TrimSpace(m.First().AttrOr(f.Attr, ""))
		} else {
			v = CleanText(m.First().Text())
		}
		if v != "" {
			return v
		}
	}
	return ""
}

// CleanText collapses runs of whitespace and trims
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NodeText is CleanText over a selection's text
func NodeText(s *goquery.Selection) string {
	return CleanText(s.Text())
}

// InnerHTML returns the serialized children of the first node
func InnerHTML(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	h, err := s.First().Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}

// ImageSrc reads the first usable image URL from attrs in order, skipping
// placeholders and inline data URIs
func ImageSrc(img *goquery.Selection, attrs ...string) string {
	if img.Length() == 0 {
		return ""
	}
	if len(attrs) == 0 {
		attrs = []string{"data-src", "src"}
	}
	for _, a := range attrs {
		v := strings.TrimSpace(img.AttrOr(a, ""))
		if v == "" || strings.HasPrefix(v, "data:") || strings.Contains(v, "placeholder") {
			continue
		}
		return v
	}
	return ""
}

// LabeledValue reads the text that follows a <strong>label</strong> inside a
// paragraph, e.g. <p><strong>SHA1:</strong> 3f2a...</p>
func LabeledValue(scope *goquery.Selection, label string) string {
	expr := ".//p[contains(strong, '" + label + "')]/text()[normalize-space(.)]"
	for _, n := range scope.Nodes {
		t, err := htmlquery.Query(n, expr)
		if err != nil {
			return ""
		}
		if t != nil {
			return CleanText(textOf(t))
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	return htmlquery.InnerText(n)
}
