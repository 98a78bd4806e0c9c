// Package provider defines the interface for listing sources and the
// canlidizi14.com implementation.
package provider

import (
	"context"

	"canlidizi/internal/media"
)

// Provider is the interface that listing sources must implement.
type Provider interface {
	// Home returns the titled rows of the site's main page.
	Home(ctx context.Context) ([]media.HomeSection, error)

	// Search returns matching results for a query.
	Search(ctx context.Context, query string) ([]media.SearchResult, error)

	// Load returns the metadata of a series, movie or episode page.
	// Series pages also carry their episode list.
	Load(ctx context.Context, url string) (*media.ContentDetail, error)
}

// Fetcher downloads a page body. httputil.Fetcher satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, url, referer string) (string, error)
}
