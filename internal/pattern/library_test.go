package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canlidizi/internal/media"
)

const page = "https://www.canlidizi14.com/dizi/bolum-1.html"

func values(cs []media.Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.RawValue)
	}
	return out
}

func TestLibraryOrder(t *testing.T) {
	lib := Library()
	require.NotEmpty(t, lib)
	for i := 1; i < len(lib); i++ {
		assert.LessOrEqual(t, int(lib[i-1].Stage), int(lib[i].Stage), "%s before %s", lib[i-1].ID, lib[i].ID)
	}

	// Mutating the returned slice must not touch the library.
	lib[0].ID = "changed"
	assert.NotEqual(t, "changed", Library()[0].ID)

	assert.Equal(t, []media.Stage{
		media.StageDirectMedia, media.StageDataAttribute, media.StageInlineScript,
		media.StageRawHTML, media.StageKnownHost, media.StageIframe,
	}, Stages())
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name string
		id   string
		html string
		want []string
	}{
		{
			name: "video src",
			id:   "video-src",
			html: `<video src="/media/ep1.mp4"></video><audio src="https://a.com/s.mp3"></audio>`,
			want: []string{"/media/ep1.mp4", "https://a.com/s.mp3"},
		},
		{
			name: "video source",
			id:   "video-source",
			html: `<video><source src="//cdn.example.com/720.m3u8" label="720p"><source src="//cdn.example.com/480.m3u8"></video>`,
			want: []string{"//cdn.example.com/720.m3u8", "//cdn.example.com/480.m3u8"},
		},
		{
			name: "anchor m3u8",
			id:   "anchor-m3u8",
			html: `<a href="/live/index.m3u8">live</a><a href="/about">about</a>`,
			want: []string{"/live/index.m3u8"},
		},
		{
			name: "data attributes skip images and iframes",
			id:   "data-attr",
			html: `<div data-file="https://cdn.example.com/v.mp4"></div><img data-src="/poster.jpg"><iframe data-src="https://player.example.com/e/1"></iframe><span data-video-src="/stream/1"></span>`,
			want: []string{"https://cdn.example.com/v.mp4", "/stream/1"},
		},
		{
			name: "script key value",
			id:   "script-keyvalue",
			html: `<script>var cfg = {file: "https://cdn.example.com/a.m3u8", title: "Bölüm 1", poster: "x.jpg", "videoUrl":"\/v\/b.mp4"};</script>`,
			want: []string{"https://cdn.example.com/a.m3u8", `\/v\/b.mp4`},
		},
		{
			name: "jwplayer setup",
			id:   "script-jwplayer",
			html: `<script>jwplayer("p").setup({ width: "100%", file: "https://cdn.example.com/jw.m3u8" });</script>`,
			want: []string{"https://cdn.example.com/jw.m3u8"},
		},
		{
			name: "m3u8 literal",
			id:   "script-m3u8",
			html: `<script>load('https://cdn.example.com/x/master.m3u8?token=1')</script>`,
			want: []string{"https://cdn.example.com/x/master.m3u8?token=1"},
		},
		{
			name: "external scripts are not scanned",
			id:   "script-m3u8",
			html: `<script src="/app.js">'https://cdn.example.com/x.m3u8'</script>`,
			want: []string{},
		},
		{
			name: "raw html",
			id:   "raw-media",
			html: `<p>Mirror: https://cdn.example.com/a/b/video.mp4?x=1 and "https:\/\/cdn.example.com\/c.webm"</p>`,
			want: []string{"https://cdn.example.com/a/b/video.mp4?x=1", "https://cdn.example.com/c.webm"},
		},
		{
			name: "iframes prefer player frames",
			id:   "iframe",
			html: `<iframe src="https://ads.example.com/frame"></iframe><iframe src="about:blank" data-src="//player.example.com/embed/9"></iframe><iframe src=""></iframe><embed src="https://video.example.com/v/2">`,
			want: []string{"//player.example.com/embed/9", "https://video.example.com/v/2", "https://ads.example.com/frame"},
		},
	}

	byID := map[string]Strategy{}
	for _, s := range Library() {
		byID[s.ID] = s
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, ok := byID[tt.id]
			require.True(t, ok, "unknown strategy %s", tt.id)

			got, err := s.Match(NewDocument(page, tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.want, values(got))
			for _, c := range got {
				assert.Equal(t, page, c.OriginContext)
				assert.Equal(t, tt.id, c.Strategy)
			}
		})
	}
}

func TestVideoSourceLabel(t *testing.T) {
	got, err := videoSource(NewDocument(page, `<video><source src="/a.mp4" label="1080p"></video>`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1080p", got[0].Label)
}

func TestScriptPlaylist(t *testing.T) {
	html := `<script>
	var player = jwplayer("vplayer");
	player.setup({"playlist": [{"sources": [
		{"file": "https://cdn.example.com/1080/v.mp4", "label": "1080p"},
		{"file": "https://cdn.example.com/720/v.mp4", "label": 720}
	]}]});
	</script>`

	got, err := scriptPlaylist(NewDocument(page, html))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "https://cdn.example.com/1080/v.mp4", got[0].RawValue)
	assert.Equal(t, "1080p", got[0].Label)
	assert.Equal(t, "720", got[1].Label)
}

func TestScriptPlaylistParseError(t *testing.T) {
	// JavaScript object literals are not JSON; the strategy reports the
	// failure and returns what it could decode.
	html := `<script>setup({playlist: [{file: 'https://cdn.example.com/a.mp4'}]})</script>`

	got, err := scriptPlaylist(NewDocument(page, html))
	assert.Empty(t, got)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "script-playlist", perr.Strategy)
}

func TestHostURLs(t *testing.T) {
	html := `<iframe src="https://canliplayer.com/fireplayer/video/abc"></iframe>
	<a href="/dizi/x">x</a>
	<script>var u = "https:\/\/betaplayer.site\/embed\/42";</script>`

	got, err := hostURLs(NewDocument(page, html))
	require.NoError(t, err)
	vals := values(got)
	assert.Contains(t, vals, "https://canliplayer.com/fireplayer/video/abc")
	assert.Contains(t, vals, "https://betaplayer.site/embed/42")
	assert.Contains(t, vals, "/dizi/x")
}

func TestSubtitles(t *testing.T) {
	html := `<video src="/v.mp4">
		<track kind="subtitles" src="/subs/tr.vtt" srclang="tr" label="Türkçe">
		<track src="/subs/en.vtt" srclang="en" label="English">
		<track kind="chapters" src="/chapters.vtt">
		<track kind="captions" src="/subs/cc.vtt">
	</video>`

	got := Subtitles(NewDocument(page, html))
	assert.Equal(t, []media.SubtitleTrack{
		{Language: "tr", Label: "Türkçe", URL: "/subs/tr.vtt"},
		{Language: "en", Label: "English", URL: "/subs/en.vtt"},
		{URL: "/subs/cc.vtt"},
	}, got)
}

func TestBalanced(t *testing.T) {
	s := `x = [1, "a]b", [2, 3]] tail`
	got, ok := balanced(s, 4)
	require.True(t, ok)
	assert.Equal(t, `[1, "a]b", [2, 3]]`, got)

	_, ok = balanced(`[1, 2`, 0)
	assert.False(t, ok)
	_, ok = balanced(`abc`, 0)
	assert.False(t, ok)
}

func TestDocumentParsesOnce(t *testing.T) {
	d := NewDocument(page, `<p>hi</p>`)
	a, err := d.DOM()
	require.NoError(t, err)
	b, err := d.DOM()
	require.NoError(t, err)
	assert.Same(t, a, b)
}
