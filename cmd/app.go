package cmd

import (
	"fmt"

	"canlidizi/internal/extract"
	"canlidizi/internal/httputil"
	"canlidizi/internal/provider"
	"canlidizi/internal/resolve"
)

// newFetcher builds the page fetcher from cfg.
func newFetcher() (*httputil.Fetcher, error) {
	client, err := httputil.NewClient(httputil.Options{
		Timeout:     cfg.FetchTimeout(),
		Fingerprint: cfg.Fingerprint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating HTTP client: %w", err)
	}
	return httputil.NewFetcher(client, cfg.UserAgent), nil
}

func newProvider(f *httputil.Fetcher) *provider.CanliDizi {
	return provider.NewCanliDizi(cfg.BaseURL(), f)
}

// newResolver builds a resolver from cfg. all forces accumulate mode.
func newResolver(f *httputil.Fetcher, all bool) (*resolve.Resolver, error) {
	mode, err := resolve.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	if all {
		mode = resolve.Accumulate
	}

	return resolve.New(f,
		resolve.WithMode(mode),
		resolve.WithRegistry(extract.DefaultRegistry(cfg.ExtraDenylist...)),
		resolve.WithLogger(log),
		resolve.WithUserAgent(f.UserAgent()),
		resolve.WithTimeout(cfg.FetchTimeout()),
	), nil
}
