package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"canlidizi/internal/httputil"
	"canlidizi/internal/media"
)

// DefaultBase is the site root used when no base is configured.
const DefaultBase = "https://www.canlidizi14.com"

// ErrNoResults is returned by Search when the results page lists nothing.
var ErrNoResults = errors.New("no results")

// CanliDizi implements the Provider interface for canlidizi14.com and its
// mirrors.
type CanliDizi struct {
	base    string
	fetcher Fetcher
}

// NewCanliDizi creates a provider rooted at base, e.g. "https://www.canlidizi14.com".
func NewCanliDizi(base string, fetcher Fetcher) *CanliDizi {
	if base == "" {
		base = DefaultBase
	}
	return &CanliDizi{
		base:    strings.TrimRight(base, "/"),
		fetcher: fetcher,
	}
}

// Base returns the site root without a trailing slash.
func (c *CanliDizi) Base() string {
	return c.base
}

// Home returns the non-empty sections of the main page.
func (c *CanliDizi) Home(ctx context.Context) ([]media.HomeSection, error) {
	doc, err := c.fetchDocument(ctx, c.base+"/")
	if err != nil {
		return nil, fmt.Errorf("getting home page: %w", err)
	}
	return parseHome(doc, c.base), nil
}

// Search returns the listing boxes of the site's search page.
func (c *CanliDizi) Search(ctx context.Context, query string) ([]media.SearchResult, error) {
	query = httputil.SanitizeQuery(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	searchURL := c.base + "/?s=" + httputil.EncodeQuery(query)
	doc, err := c.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("searching for %q: %w", query, err)
	}

	results := parseSearchResults(doc, c.base)
	if len(results) == 0 {
		return nil, fmt.Errorf("searching for %q: %w", query, ErrNoResults)
	}
	return results, nil
}

// Load fetches a content page. Series pages (URL contains "kategori") are
// parsed with their episode list, anything else as a single movie or episode.
func (c *CanliDizi) Load(ctx context.Context, url string) (*media.ContentDetail, error) {
	if err := httputil.ValidateURL(url); err != nil {
		return nil, err
	}

	doc, err := c.fetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}

	if isSeriesURL(url) {
		return parseSeries(doc, url, c.base), nil
	}
	return parseSingle(doc, url, c.base), nil
}

// fetchDocument fetches a URL and parses it into a goquery Document.
func (c *CanliDizi) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.fetcher.Fetch(ctx, url, c.base+"/")
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}
