// Package pattern holds the ordered library of extraction strategies that
// turn an HTML document into candidate video URLs.
package pattern

import (
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Document is a fetched page together with the URL it was loaded from.
// The DOM is parsed once, on first use.
type Document struct {
	URL  string
	HTML string

	once sync.Once
	dom  *goquery.Document
	err  error
}

// NewDocument wraps html fetched from pageURL.
func NewDocument(pageURL, html string) *Document {
	return &Document{URL: pageURL, HTML: html}
}

// DOM returns the parsed document.
func (d *Document) DOM() (*goquery.Document, error) {
	d.once.Do(func() {
		d.dom, d.err = goquery.NewDocumentFromReader(strings.NewReader(d.HTML))
		if d.err != nil {
			d.err = fmt.Errorf("parsing HTML from %s: %w", d.URL, d.err)
		}
	})
	return d.dom, d.err
}

// ParseError reports a strategy that could not make sense of its input.
// It is never fatal: the strategy is skipped and the others still run.
type ParseError struct {
	Strategy string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("strategy %s: %v", e.Strategy, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
