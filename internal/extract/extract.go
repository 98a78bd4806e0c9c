// Package extract resolves pages of known third-party video hosts into
// candidate stream URLs.
package extract

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"canlidizi/internal/classify"
	"canlidizi/internal/media"
)

// ErrFetchNotAllowed is returned by handlers that need to load a player page
// when the resolver has no recursion budget left.
var ErrFetchNotAllowed = errors.New("fetch not allowed at this depth")

// FetchFunc loads url with the given Referer and returns the response body.
type FetchFunc func(ctx context.Context, url, referer string) (string, error)

// Page is the document on which host URLs were found.
type Page struct {
	URL  string
	HTML string

	// Links are the normalized URLs on the page that this handler matched,
	// in first-seen order.
	Links []string

	// Fetch loads a player page. Nil when no further fetches are allowed.
	Fetch FetchFunc

	// FirstOnly asks the handler to stop after the first player that yields
	// candidates.
	FirstOnly bool
}

// HostHandler resolves URLs of one video host.
type HostHandler interface {
	Name() string
	Matches(u string) bool
	Resolve(ctx context.Context, page Page) ([]media.Candidate, error)
}

// Registry is an ordered, read-only set of host handlers.
type Registry struct {
	handlers []HostHandler
}

// NewRegistry returns a registry that consults handlers in the given order.
func NewRegistry(handlers ...HostHandler) *Registry {
	return &Registry{handlers: append([]HostHandler(nil), handlers...)}
}

// DefaultRegistry returns the CanliPlayer, BetaPlayer and YouTube handlers.
// extraDeny extends the packed-token denylist used by CanliPlayer.
func DefaultRegistry(extraDeny ...string) *Registry {
	return NewRegistry(
		NewCanliPlayer(extraDeny...),
		NewBetaPlayer(),
		NewYouTube(),
	)
}

// Lookup returns the first handler that claims u, or nil.
func (r *Registry) Lookup(u string) HostHandler {
	if r == nil {
		return nil
	}
	for _, h := range r.handlers {
		if h.Matches(u) {
			return h
		}
	}
	return nil
}

// Handlers returns the registered handlers in priority order.
func (r *Registry) Handlers() []HostHandler {
	if r == nil {
		return nil
	}
	return append([]HostHandler(nil), r.handlers...)
}

func candidatesFrom(urls []string, origin, strategy string) []media.Candidate {
	out := make([]media.Candidate, 0, len(urls))
	for _, u := range urls {
		out = append(out, media.Candidate{RawValue: u, OriginContext: origin, Strategy: strategy})
	}
	return out
}

// splitMediaFiles separates links that already point at a media file from
// player pages that still have to be fetched. Media files the classifier
// rejects are dropped.
func splitMediaFiles(links []string) (files, players []string) {
	files, players = lo.FilterReject(links, func(u string, _ int) bool {
		return classify.HasMediaExtension(u)
	})
	return lo.Filter(files, func(u string, _ int) bool { return classify.IsPlayableVideo(u) }), players
}
