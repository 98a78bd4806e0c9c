package cmd

import (
	"strconv"

	"github.com/samber/lo"

	"canlidizi/internal/media"
)

// pickLink returns the link matching quality ("auto", "720", ...). Without
// an exact match the best quality not above the preference wins, then the
// first link found. links must not be empty.
func pickLink(links []media.ResolvedLink, quality string) media.ResolvedLink {
	want, err := strconv.Atoi(quality)
	if err != nil || want <= 0 {
		return links[0]
	}

	if l, ok := lo.Find(links, func(l media.ResolvedLink) bool {
		return int(l.Quality()) == want
	}); ok {
		return l
	}

	below := lo.Filter(links, func(l media.ResolvedLink, _ int) bool {
		return l.Quality() != media.QualityUnknown && int(l.Quality()) < want
	})
	if len(below) > 0 {
		return lo.MaxBy(below, func(a, b media.ResolvedLink) bool { return a.Quality() > b.Quality() })
	}
	return links[0]
}
