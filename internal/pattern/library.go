package pattern

import (
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"canlidizi/internal/media"
)

// MatchFunc scans a document and returns candidates in document order.
type MatchFunc func(d *Document) ([]media.Candidate, error)

// Strategy is one named extraction rule bound to a pipeline stage.
type Strategy struct {
	ID    string
	Stage media.Stage
	Match MatchFunc
}

var (
	keyValueRe  = regexp.MustCompile(`(?i)["']?\b(?:file|source|src|url|video_?url|hls|stream)["']?\s*[:=]\s*["']([^"'\s]+)["']`)
	jwSetupRe   = regexp.MustCompile(`(?is)\.setup\(\s*\{.*?["']?\bfile["']?\s*:\s*["']([^"']+)["']`)
	playlistRe  = regexp.MustCompile(`["']?playlist["']?\s*:\s*\[`)
	m3u8LitRe   = regexp.MustCompile(`["']([^"'\s]*\.m3u8[^"'\s]*)["']`)
	rawMediaRe  = regexp.MustCompile(`(?i)https?://[^\s"'<>]+\.(?:m3u8|mp4|webm)\b(?:\?[^\s"'<>]*)?`)
	anyURLRe    = regexp.MustCompile(`(?:https?:)?//[A-Za-z0-9.-]+\.[A-Za-z]{2,}[^\s"'<>()]*`)
	playerishRe = regexp.MustCompile(`(?i)embed|player|video`)
)

var library = []Strategy{
	{ID: "video-src", Stage: media.StageDirectMedia, Match: videoSrc},
	{ID: "video-source", Stage: media.StageDirectMedia, Match: videoSource},
	{ID: "anchor-m3u8", Stage: media.StageDirectMedia, Match: anchorM3U8},
	{ID: "data-attr", Stage: media.StageDataAttribute, Match: dataAttr},
	{ID: "script-keyvalue", Stage: media.StageInlineScript, Match: scriptKeyValue},
	{ID: "script-jwplayer", Stage: media.StageInlineScript, Match: scriptJWSetup},
	{ID: "script-playlist", Stage: media.StageInlineScript, Match: scriptPlaylist},
	{ID: "script-m3u8", Stage: media.StageInlineScript, Match: scriptM3U8},
	{ID: "raw-media", Stage: media.StageRawHTML, Match: rawMedia},
	{ID: "host-urls", Stage: media.StageKnownHost, Match: hostURLs},
	{ID: "iframe", Stage: media.StageIframe, Match: iframes},
}

var stages = []media.Stage{
	media.StageDirectMedia,
	media.StageDataAttribute,
	media.StageInlineScript,
	media.StageRawHTML,
	media.StageKnownHost,
	media.StageIframe,
}

// Library returns a copy of the ordered strategy list.
func Library() []Strategy {
	out := make([]Strategy, len(library))
	copy(out, library)
	return out
}

// Stages returns the fixed order in which stages run.
func Stages() []media.Stage {
	out := make([]media.Stage, len(stages))
	copy(out, stages)
	return out
}

// ForStage returns the strategies of one stage in library order.
func ForStage(stage media.Stage) []Strategy {
	var out []Strategy
	for _, s := range library {
		if s.Stage == stage {
			out = append(out, s)
		}
	}
	return out
}

// Subtitles returns the subtitle and caption tracks declared on the page.
func Subtitles(d *Document) []media.SubtitleTrack {
	doc, err := d.DOM()
	if err != nil {
		return nil
	}

	var tracks []media.SubtitleTrack
	doc.Find("track[src]").Each(func(_ int, s *goquery.Selection) {
		kind := strings.ToLower(strings.TrimSpace(s.AttrOr("kind", "subtitles")))
		if kind != "subtitles" && kind != "captions" {
			return
		}
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" {
			return
		}
		tracks = append(tracks, media.SubtitleTrack{
			Language: strings.TrimSpace(s.AttrOr("srclang", "")),
			Label:    strings.TrimSpace(s.AttrOr("label", "")),
			URL:      src,
		})
	})
	return tracks
}

func candidate(d *Document, id, raw, label string) media.Candidate {
	return media.Candidate{
		RawValue:      strings.TrimSpace(raw),
		OriginContext: d.URL,
		Strategy:      id,
		Label:         strings.TrimSpace(label),
	}
}

// qualityLabel reads the attributes players commonly use for a rendition name.
func qualityLabel(s *goquery.Selection) string {
	for _, attr := range []string{"label", "size", "res", "data-quality", "title"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func attrs(d *Document, id, sel string, names ...string) ([]media.Candidate, error) {
	doc, err := d.DOM()
	if err != nil {
		return nil, err
	}
	var out []media.Candidate
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		for _, name := range names {
			if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
				out = append(out, candidate(d, id, v, qualityLabel(s)))
				return
			}
		}
	})
	return out, nil
}

func videoSrc(d *Document) ([]media.Candidate, error) {
	return attrs(d, "video-src", "video[src], audio[src]", "src")
}

func videoSource(d *Document) ([]media.Candidate, error) {
	return attrs(d, "video-source", "video source[src], audio source[src]", "src")
}

func anchorM3U8(d *Document) ([]media.Candidate, error) {
	return attrs(d, "anchor-m3u8", `a[href*=".m3u8"]`, "href")
}

var dataAttrNames = []string{"data-src", "data-file", "data-video-src", "data-url"}

func dataAttr(d *Document) ([]media.Candidate, error) {
	doc, err := d.DOM()
	if err != nil {
		return nil, err
	}
	var out []media.Candidate
	doc.Find("[data-src], [data-file], [data-video-src], [data-url]").Each(func(_ int, s *goquery.Selection) {
		// Lazy-loaded images and iframes are handled elsewhere or not at all.
		switch goquery.NodeName(s) {
		case "iframe", "img", "embed":
			return
		}
		for _, name := range dataAttrNames {
			if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
				out = append(out, candidate(d, "data-attr", v, qualityLabel(s)))
			}
		}
	})
	return out, nil
}

// scripts returns the bodies of inline script elements. When the DOM cannot
// be built the whole HTML is scanned instead.
func scripts(d *Document) []string {
	doc, err := d.DOM()
	if err != nil {
		return []string{d.HTML}
	}
	var bodies []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		if body := s.Text(); strings.TrimSpace(body) != "" {
			bodies = append(bodies, body)
		}
	})
	return bodies
}

func submatches(d *Document, id string, re *regexp.Regexp) []media.Candidate {
	var out []media.Candidate
	for _, body := range scripts(d) {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			out = append(out, candidate(d, id, m[1], ""))
		}
	}
	return out
}

func scriptKeyValue(d *Document) ([]media.Candidate, error) {
	var out []media.Candidate
	for _, c := range submatches(d, "script-keyvalue", keyValueRe) {
		v := c.RawValue
		if strings.HasPrefix(v, "http") || strings.HasPrefix(v, "/") || strings.HasPrefix(v, `\/`) {
			out = append(out, c)
		}
	}
	return out, nil
}

func scriptJWSetup(d *Document) ([]media.Candidate, error) {
	return submatches(d, "script-jwplayer", jwSetupRe), nil
}

func scriptM3U8(d *Document) ([]media.Candidate, error) {
	return submatches(d, "script-m3u8", m3u8LitRe), nil
}

// label accepts both "720p" and 720 in player configs.
type label string

func (l *label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = label(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*l = label(n.String())
	return nil
}

type playlistSource struct {
	File  string `json:"file"`
	Label label  `json:"label"`
}

type playlistItem struct {
	File    string           `json:"file"`
	Sources []playlistSource `json:"sources"`
}

func scriptPlaylist(d *Document) ([]media.Candidate, error) {
	var out []media.Candidate
	var errs []error
	for _, body := range scripts(d) {
		for _, loc := range playlistRe.FindAllStringIndex(body, -1) {
			raw, ok := balanced(body, loc[1]-1)
			if !ok {
				errs = append(errs, errors.New("unterminated playlist array"))
				continue
			}
			var items []playlistItem
			if err := json.Unmarshal([]byte(raw), &items); err != nil {
				errs = append(errs, err)
				continue
			}
			for _, item := range items {
				if item.File != "" {
					out = append(out, candidate(d, "script-playlist", item.File, ""))
				}
				for _, src := range item.Sources {
					if src.File != "" {
						out = append(out, candidate(d, "script-playlist", src.File, string(src.Label)))
					}
				}
			}
		}
	}
	if len(errs) > 0 {
		return out, &ParseError{Strategy: "script-playlist", Err: errors.Join(errs...)}
	}
	return out, nil
}

// balanced returns the bracketed text starting at s[start], honouring quoted
// strings so that brackets inside values do not end the match early.
func balanced(s string, start int) (string, bool) {
	if start < 0 || start >= len(s) {
		return "", false
	}
	open := s[start]
	var closing byte
	switch open {
	case '[':
		closing = ']'
	case '{':
		closing = '}'
	default:
		return "", false
	}

	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func rawMedia(d *Document) ([]media.Candidate, error) {
	html := strings.ReplaceAll(d.HTML, `\/`, "/")
	var out []media.Candidate
	for _, m := range rawMediaRe.FindAllString(html, -1) {
		out = append(out, candidate(d, "raw-media", m, ""))
	}
	return out, nil
}

// hostURLs collects every URL-like string on the page. The resolver keeps
// only those that belong to a registered host handler.
func hostURLs(d *Document) ([]media.Candidate, error) {
	var out []media.Candidate
	if doc, err := d.DOM(); err == nil {
		doc.Find("iframe, embed, a[href]").Each(func(_ int, s *goquery.Selection) {
			for _, name := range []string{"src", "data-src", "href"} {
				if v, ok := s.Attr(name); ok && strings.TrimSpace(v) != "" {
					out = append(out, candidate(d, "host-urls", v, ""))
				}
			}
		})
	}

	html := strings.ReplaceAll(d.HTML, `\/`, "/")
	for _, m := range anyURLRe.FindAllString(html, -1) {
		out = append(out, candidate(d, "host-urls", m, ""))
	}
	return out, nil
}

// iframes returns embedded frames, player-looking ones first, each group in
// document order.
func iframes(d *Document) ([]media.Candidate, error) {
	doc, err := d.DOM()
	if err != nil {
		return nil, err
	}
	var out []media.Candidate
	doc.Find("iframe, embed[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || src == "about:blank" {
			src = strings.TrimSpace(s.AttrOr("data-src", ""))
		}
		if src == "" || src == "about:blank" || strings.HasPrefix(strings.ToLower(src), "javascript:") {
			return
		}
		out = append(out, candidate(d, "iframe", src, ""))
	})
	sort.SliceStable(out, func(i, j int) bool {
		return playerishRe.MatchString(out[i].RawValue) && !playerishRe.MatchString(out[j].RawValue)
	})
	return out, nil
}
