// Package parser loads source HTML and evaluates ordered selector fallbacks.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
)

const fragmentID = "__fragment_root"

// Parse loads an HTML document. Malformed markup is repaired by the HTML5
// tokenizer; only a failing reader produces an error.
func Parse(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// ParseString is Parse for string input
func ParseString(html string) (*goquery.Document, error) {
	return Parse([]byte(html))
}

// ParseFragment parses a partial HTML snippet and returns a wrapper element
// whose children are the snippet's top-level nodes
func ParseFragment(fragment string) (*goquery.Selection, error) {
	doc, err := ParseString(`<div id="` + fragmentID + `">` + fragment + `</div>`)
	if err != nil {
		return nil, err
	}
	return doc.Find("#" + fragmentID), nil
}

// FragmentHTML serializes the children of a wrapper returned by ParseFragment
func FragmentHTML(root *goquery.Selection) string {
	html, err := root.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(html)
}

// ErrNoHTML means a paginated partial came back without markup (end of list)
var ErrNoHTML = errors.New("ajax payload has no html")

// UnwrapAJAX extracts the HTML fragment from a paginated listing response.
// The source answers XHR requests with {"html": "..."}; a plain HTML body
// is passed through unchanged.
func UnwrapAJAX(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return trimmed, nil
	}
	var payload struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decode ajax payload: %w", err)
	}
	if strings.TrimSpace(payload.HTML) == "" {
		return nil, ErrNoHTML
	}
	return []byte(payload.HTML), nil
}
