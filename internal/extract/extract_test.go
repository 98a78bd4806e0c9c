package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canlidizi/internal/media"
)

const embedPage = "https://www.canlidizi14.com/dizi/bolum-12.html"

type fetchCall struct {
	url, referer string
}

// fakeFetch serves canned bodies keyed by URL and records every call.
func fakeFetch(bodies map[string]string, calls *[]fetchCall) FetchFunc {
	return func(_ context.Context, url, referer string) (string, error) {
		*calls = append(*calls, fetchCall{url, referer})
		body, ok := bodies[url]
		if !ok {
			return "", errors.New("404 " + url)
		}
		return body, nil
	}
}

func rawValues(cs []media.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.RawValue)
	}
	return out
}

func TestRegistryLookup(t *testing.T) {
	reg := DefaultRegistry()

	tests := []struct {
		url  string
		want string
	}{
		{"https://canliplayer.com/fireplayer/video/abc123", "CanliPlayer"},
		{"https://www.fireplayer.com/v/1", "CanliPlayer"},
		{"https://betaplayer.site/embed/42", "BetaPlayer"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "YouTube"},
		{"https://youtu.be/dQw4w9WgXcQ", "YouTube"},
		{"https://cdn.example.com/v.mp4", ""},
	}
	for _, tt := range tests {
		h := reg.Lookup(tt.url)
		if tt.want == "" {
			assert.Nil(t, h, tt.url)
			continue
		}
		require.NotNil(t, h, tt.url)
		assert.Equal(t, tt.want, h.Name(), tt.url)
	}

	var nilReg *Registry
	assert.Nil(t, nilReg.Lookup("https://betaplayer.site/embed/1"))
	assert.Len(t, reg.Handlers(), 3)
}

func TestCanliPlayerResolve(t *testing.T) {
	player := "https://canliplayer.com/fireplayer/video/abc123"
	var calls []fetchCall
	page := Page{
		URL:   embedPage,
		Links: []string{"https://canliplayer.com/assets/logo.png", player},
		Fetch: fakeFetch(map[string]string{player: readFixture(t, "canliplayer.html")}, &calls),
	}

	got, err := NewCanliPlayer().Resolve(context.Background(), page)
	// The logo URL is tried last and fails; that is not fatal.
	assert.Error(t, err)
	assert.Equal(t, []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://cdn.example.com/v.m3u8",
	}, rawValues(got))
	for _, c := range got {
		assert.Equal(t, player, c.OriginContext)
		assert.Equal(t, "CanliPlayer", c.Strategy)
	}

	require.NotEmpty(t, calls)
	assert.Equal(t, fetchCall{player, embedPage}, calls[0])
}

func TestCanliPlayerFirstOnly(t *testing.T) {
	first := "https://canliplayer.com/fireplayer/video/a"
	second := "https://canliplayer.com/fireplayer/video/b"
	body := readFixture(t, "canliplayer.html")
	var calls []fetchCall
	page := Page{
		URL:       embedPage,
		Links:     []string{first, second},
		Fetch:     fakeFetch(map[string]string{first: body, second: body}, &calls),
		FirstOnly: true,
	}

	got, err := NewCanliPlayer().Resolve(context.Background(), page)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	assert.Len(t, calls, 1)
}

func TestCanliPlayerExtraDenylist(t *testing.T) {
	player := "https://canliplayer.com/fireplayer/video/abc123"
	var calls []fetchCall
	page := Page{
		URL:   embedPage,
		Links: []string{player},
		Fetch: fakeFetch(map[string]string{player: readFixture(t, "canliplayer.html")}, &calls),
	}

	got, err := NewCanliPlayer("dQw4w9WgXcQ").Resolve(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/v.m3u8"}, rawValues(got))
}

func TestCanliPlayerBase64Payload(t *testing.T) {
	player := "https://canliplayer.com/fireplayer/video/xyz"
	body := `<script>FirePlayer("x", {"2":"aHR0cHM6Ly9jZG4uZXhhbXBsZS5jb20vcGF5bG9hZC83MjAubXA0"}, false);</script>`
	var calls []fetchCall
	page := Page{
		URL:   embedPage,
		Links: []string{player},
		Fetch: fakeFetch(map[string]string{player: body}, &calls),
	}

	got, err := NewCanliPlayer().Resolve(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/payload/720.mp4"}, rawValues(got))
}

func TestCanliPlayerWithoutFetch(t *testing.T) {
	page := Page{URL: embedPage, Links: []string{"https://canliplayer.com/fireplayer/video/a"}}

	got, err := NewCanliPlayer().Resolve(context.Background(), page)
	assert.Empty(t, got)
	assert.ErrorIs(t, err, ErrFetchNotAllowed)
}

func TestHostedMediaFilesAreNotFetched(t *testing.T) {
	tests := []struct {
		handler HostHandler
		file    string
		player  string
	}{
		{NewCanliPlayer(), "https://canliplayer.com/files/ep.mp4", "https://canliplayer.com/fireplayer/video/a"},
		{NewBetaPlayer(), "https://cdn.betaplayer.site/hls/ep/master.m3u8", "https://betaplayer.site/embed/1"},
	}

	for _, tt := range tests {
		t.Run(tt.handler.Name(), func(t *testing.T) {
			page := Page{URL: embedPage, Links: []string{tt.file}}
			got, err := tt.handler.Resolve(context.Background(), page)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.file}, rawValues(got))
			assert.Equal(t, embedPage, got[0].OriginContext)

			// With a player page beside it, FirstOnly stops at the file.
			var calls []fetchCall
			page = Page{
				URL:       embedPage,
				Links:     []string{tt.player, tt.file},
				Fetch:     fakeFetch(nil, &calls),
				FirstOnly: true,
			}
			got, err = tt.handler.Resolve(context.Background(), page)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.file}, rawValues(got))
			assert.Empty(t, calls)
		})
	}
}

func TestHostedDecoyFilesAreDropped(t *testing.T) {
	var calls []fetchCall
	page := Page{
		URL:   embedPage,
		Links: []string{"https://canliplayer.com/ads/preroll.mp4"},
		Fetch: fakeFetch(nil, &calls),
	}

	got, err := NewCanliPlayer().Resolve(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, calls)
}

func TestBetaPlayerResolve(t *testing.T) {
	root := "https://betaplayer.site/"
	embed := "https://betaplayer.site/embed/42"
	var calls []fetchCall
	page := Page{
		URL:   embedPage,
		Links: []string{root, embed},
		Fetch: fakeFetch(map[string]string{embed: readFixture(t, "betaplayer.html")}, &calls),
	}

	got, err := NewBetaPlayer().Resolve(context.Background(), page)
	assert.Error(t, err, "root page is not served")
	assert.Equal(t, []string{
		"/hls/bolum-12/master.m3u8",
		"https://cdn.betaplayer.site/hls/bolum-12/720.m3u8",
	}, rawValues(got))
	assert.Equal(t, embed, got[0].OriginContext)

	// Embed pages are tried before anything else on the host.
	require.Len(t, calls, 2)
	assert.Equal(t, fetchCall{embed, embedPage}, calls[0])
}

func TestBetaPlayerYouTube(t *testing.T) {
	embed := "https://betaplayer.site/embed/7"
	body := `<script>new YT.Player("p", {videoId: "dQw4w9WgXcQ"});</script>`
	var calls []fetchCall
	page := Page{
		URL:   embedPage,
		Links: []string{embed},
		Fetch: fakeFetch(map[string]string{embed: body}, &calls),
	}

	got, err := NewBetaPlayer().Resolve(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}, rawValues(got))
}

func TestYouTubeResolve(t *testing.T) {
	page := Page{
		URL: embedPage,
		Links: []string{
			"https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1",
			"https://youtu.be/9bZkp7q19f0",
			"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ",
		},
		HTML: `<script>var cfg = {videoId: 'kJQP7kiw5Fk'};</script>`,
	}

	got, err := NewYouTube().Resolve(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=9bZkp7q19f0",
		"https://www.youtube.com/watch?v=kJQP7kiw5Fk",
	}, rawValues(got))

	page.FirstOnly = true
	got, err = NewYouTube().Resolve(context.Background(), page)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestResolveStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []fetchCall
	page := Page{
		URL:   embedPage,
		Links: []string{"https://betaplayer.site/embed/1"},
		Fetch: fakeFetch(nil, &calls),
	}
	_, err := NewBetaPlayer().Resolve(ctx, page)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, calls)
}
