package extract

import (
	"context"
	"regexp"

	"github.com/samber/lo"

	"canlidizi/internal/media"
	"canlidizi/internal/urlutil"
)

var youtubePatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube(?:-nocookie)?\.com/watch\?(?:[^"'\s]*&)?v=([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube(?:-nocookie)?\.com/embed/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`videoId["']?\s*:\s*["']([A-Za-z0-9_-]{11})["']`),
}

// WatchURL returns the canonical watch page for a YouTube video ID.
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// FindYouTubeIDs returns the video IDs referenced in text by watch, short or
// embed URLs and by videoId config keys, in pattern order.
func FindYouTubeIDs(text string) []string {
	var ids []string
	for _, re := range youtubePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			ids = append(ids, m[1])
		}
	}
	return lo.Uniq(ids)
}

// YouTube turns YouTube links into canonical watch URLs. It never fetches.
type YouTube struct{}

// NewYouTube returns the YouTube handler.
func NewYouTube() *YouTube { return &YouTube{} }

func (y *YouTube) Name() string { return "YouTube" }

func (y *YouTube) Matches(u string) bool {
	return urlutil.MatchesDomain(u, "youtube.com") ||
		urlutil.MatchesDomain(u, "youtu.be") ||
		urlutil.MatchesDomain(u, "youtube-nocookie.com")
}

func (y *YouTube) Resolve(_ context.Context, page Page) ([]media.Candidate, error) {
	var ids []string
	for _, link := range page.Links {
		ids = append(ids, FindYouTubeIDs(link)...)
	}
	// Player configs on the same page may name further videos by ID only.
	ids = lo.Uniq(append(ids, FindYouTubeIDs(page.HTML)...))
	if page.FirstOnly && len(ids) > 1 {
		ids = ids[:1]
	}
	return candidatesFrom(lo.Map(ids, func(id string, _ int) string { return WatchURL(id) }), page.URL, y.Name()), nil
}
