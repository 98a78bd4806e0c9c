package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"canlidizi/internal/media"
	"canlidizi/internal/urlutil"
)

var directMediaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(https?://[^"'\s]+\.m3u8(?:\?[^"'\s]*)?)`),
	regexp.MustCompile(`(?i)(https?://[^"'\s]+\.mp4(?:\?[^"'\s]*)?)`),
	regexp.MustCompile(`(?i)file\s*:\s*["'](https?://[^"']+)["']`),
	regexp.MustCompile(`(?i)source\s*:\s*["'](https?://[^"']+)["']`),
}

// directMedia returns stream URLs written out in a player page, in pattern
// order.
func directMedia(html string) []string {
	html = strings.ReplaceAll(html, `\/`, "/")
	var urls []string
	for _, re := range directMediaPatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			urls = append(urls, m[1])
		}
	}
	return lo.Uniq(urls)
}

// CanliPlayer resolves canliplayer.com (FirePlayer) embeds. The player page
// hides its source in a packed script whose keyword list carries either a
// YouTube ID or a base64-encoded stream URL.
type CanliPlayer struct {
	deny []string
}

// NewCanliPlayer returns the handler. extraDeny is added to DefaultDenylist.
func NewCanliPlayer(extraDeny ...string) *CanliPlayer {
	return &CanliPlayer{deny: append([]string(nil), extraDeny...)}
}

func (c *CanliPlayer) Name() string { return "CanliPlayer" }

func (c *CanliPlayer) Matches(u string) bool {
	return urlutil.MatchesDomain(u, "canliplayer.com") || urlutil.MatchesDomain(u, "fireplayer.com")
}

// playerRank orders player URLs: FirePlayer video pages, other video pages,
// then anything else on the host.
func playerRank(u string) int {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, "/fireplayer/video/"):
		return 0
	case strings.Contains(lower, "video"):
		return 1
	default:
		return 2
	}
}

func (c *CanliPlayer) Resolve(ctx context.Context, page Page) ([]media.Candidate, error) {
	// Media files hosted on the player's domain are links already.
	files, players := splitMediaFiles(page.Links)
	out := candidatesFrom(files, page.URL, c.Name())
	if page.FirstOnly && len(out) > 0 {
		return out, nil
	}

	sort.SliceStable(players, func(i, j int) bool { return playerRank(players[i]) < playerRank(players[j]) })

	var errs []error
	for _, player := range players {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if page.Fetch == nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", c.Name(), player, ErrFetchNotAllowed))
			continue
		}
		html, err := page.Fetch(ctx, player, page.URL)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		found, err := c.scan(html, player)
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, found...)
		if page.FirstOnly && len(found) > 0 {
			break
		}
	}
	return out, errors.Join(errs...)
}

// scan looks through a fetched player page: packed keyword lists first, then
// the unpacked script, then plain media URLs, then base64 payload fields.
func (c *CanliPlayer) scan(html, player string) ([]media.Candidate, error) {
	var urls []string
	var errs []error

	for _, script := range PackedScripts(html) {
		tokens, err := PackedTokens(script)
		if err != nil {
			errs = append(errs, &DecodeError{Kind: "packed", Input: script, Err: err})
			continue
		}
		for _, id := range YouTubeIDs(tokens, c.deny...) {
			urls = append(urls, WatchURL(id))
		}
		b64, err := Base64URLs(tokens)
		if err != nil {
			errs = append(errs, err)
		}
		urls = append(urls, b64...)

		unpacked, err := Unpack(script)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		urls = append(urls, directMedia(unpacked)...)
	}

	urls = append(urls, directMedia(html)...)

	payload, err := PayloadField(html)
	if err != nil {
		errs = append(errs, err)
	}
	urls = append(urls, payload...)

	return candidatesFrom(lo.Uniq(urls), player, c.Name()), errors.Join(errs...)
}
