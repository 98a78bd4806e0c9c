// Package subtitle picks a subtitle track for the preferred language and
// stores it in a private temp directory for players that cannot fetch it
// themselves.
package subtitle

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"canlidizi/internal/httputil"
	"canlidizi/internal/media"
)

// aliases maps a configured language name to the codes and labels embed
// players use for it.
var aliases = map[string][]string{
	"turkish": {"tr", "tur", "turkish", "türkçe", "turkce"},
	"english": {"en", "eng", "english", "ingilizce"},
	"arabic":  {"ar", "ara", "arabic", "arapça"},
	"german":  {"de", "ger", "deu", "german", "almanca"},
}

func terms(language string) []string {
	lang := strings.ToLower(strings.TrimSpace(language))
	if a, ok := aliases[lang]; ok {
		return a
	}
	for _, a := range aliases {
		if lo.Contains(a, lang) {
			return a
		}
	}
	return []string{lang}
}

// Filter returns subtitles matching the preferred language (case-insensitive).
// Language codes must match exactly, labels may contain the name.
func Filter(subtitles []media.SubtitleTrack, language string) []media.SubtitleTrack {
	if strings.TrimSpace(language) == "" {
		return subtitles
	}

	want := terms(language)
	return lo.Filter(subtitles, func(sub media.SubtitleTrack, _ int) bool {
		code := strings.ToLower(sub.Language)
		label := strings.ToLower(sub.Label)
		return lo.SomeBy(want, func(term string) bool {
			return code == term || (len(term) > 3 && strings.Contains(label, term))
		})
	})
}

// BestMatch returns the best matching subtitle for the given language.
// Prefers tracks not marked as forced or SDH.
func BestMatch(subtitles []media.SubtitleTrack, language string) *media.SubtitleTrack {
	filtered := Filter(subtitles, language)
	if len(filtered) == 0 {
		return nil
	}

	for _, sub := range filtered {
		label := strings.ToLower(sub.Label)
		if !strings.Contains(label, "sdh") && !strings.Contains(label, "forced") {
			return &sub
		}
	}

	return &filtered[0]
}

// Fetcher downloads a subtitle body with the stream's Referer.
type Fetcher interface {
	Fetch(ctx context.Context, url, referer string) (string, error)
}

// TempDir manages a secure temporary directory for subtitle files.
type TempDir struct {
	path string
	n    int
}

// NewTempDir creates a randomized temporary directory for subtitle files.
func NewTempDir() (*TempDir, error) {
	dir, err := os.MkdirTemp("", "canlidizi-subs-*")
	if err != nil {
		return nil, fmt.Errorf("creating subtitle temp dir: %w", err)
	}
	return &TempDir{path: dir}, nil
}

// Cleanup removes the temporary directory and all contents.
func (t *TempDir) Cleanup() {
	if t.path != "" {
		os.RemoveAll(t.path)
	}
}

// Download fetches a subtitle file to the temp directory and returns the
// local path. File names are generated, never taken from the URL.
func (t *TempDir) Download(ctx context.Context, f Fetcher, sub media.SubtitleTrack, referer string) (string, error) {
	if err := httputil.ValidateURL(sub.URL); err != nil {
		return "", fmt.Errorf("invalid subtitle URL: %w", err)
	}

	body, err := f.Fetch(ctx, sub.URL, referer)
	if err != nil {
		return "", fmt.Errorf("downloading subtitle: %w", err)
	}

	t.n++
	localPath := filepath.Join(t.path, fmt.Sprintf("subtitle-%d%s", t.n, extension(sub.URL)))
	if err := os.WriteFile(localPath, []byte(body), 0600); err != nil {
		return "", fmt.Errorf("writing subtitle file: %w", err)
	}

	return localPath, nil
}

func extension(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ".vtt"
	}
	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".srt", ".ass", ".ssa", ".vtt":
		return ext
	default:
		return ".vtt"
	}
}
