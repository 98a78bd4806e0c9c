package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"canlidizi/internal/media"
	"canlidizi/internal/urlutil"
)

var betaFileRe = regexp.MustCompile(`(?i)file\s*:\s*["'](https?://[^"']+)["']`)

// BetaPlayer resolves betaplayer.site embeds.
type BetaPlayer struct{}

// NewBetaPlayer returns the handler.
func NewBetaPlayer() *BetaPlayer { return &BetaPlayer{} }

func (b *BetaPlayer) Name() string { return "BetaPlayer" }

func (b *BetaPlayer) Matches(u string) bool {
	return urlutil.MatchesDomain(u, "betaplayer.site")
}

func (b *BetaPlayer) Resolve(ctx context.Context, page Page) ([]media.Candidate, error) {
	// Media files hosted on the player's domain are links already.
	files, players := splitMediaFiles(page.Links)
	out := candidatesFrom(files, page.URL, b.Name())
	if page.FirstOnly && len(out) > 0 {
		return out, nil
	}

	sort.SliceStable(players, func(i, j int) bool {
		return strings.Contains(players[i], "/embed/") && !strings.Contains(players[j], "/embed/")
	})

	var errs []error
	for _, player := range players {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if page.Fetch == nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", b.Name(), player, ErrFetchNotAllowed))
			continue
		}
		html, err := page.Fetch(ctx, player, page.URL)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		found := candidatesFrom(b.scan(html), player, b.Name())
		out = append(out, found...)
		if page.FirstOnly && len(found) > 0 {
			break
		}
	}
	return out, errors.Join(errs...)
}

// scan tries the player's <source> tags, the file: setting, YouTube
// references and finally any media URL in the page.
func (b *BetaPlayer) scan(html string) []string {
	var urls []string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
		doc.Find("video source[src]").Each(func(_ int, s *goquery.Selection) {
			urls = append(urls, strings.TrimSpace(s.AttrOr("src", "")))
		})
	}
	for _, m := range betaFileRe.FindAllStringSubmatch(html, -1) {
		urls = append(urls, m[1])
	}
	for _, id := range FindYouTubeIDs(html) {
		urls = append(urls, WatchURL(id))
	}
	urls = append(urls, directMedia(html)...)
	return lo.Uniq(lo.Compact(urls))
}
