package subtitle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"canlidizi/internal/media"
)

func TestFilter(t *testing.T) {
	subs := []media.SubtitleTrack{
		{Language: "tr", Label: "Türkçe"},
		{Language: "", Label: "Türkçe (Forced)"},
		{Language: "en", Label: "English"},
		{Language: "ar", Label: "العربية"},
	}

	tests := []struct {
		lang     string
		expected int
	}{
		{"turkish", 2},
		{"tr", 2},
		{"english", 1},
		{"Arabic", 1},
		{"german", 0},
		{"", 4},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			got := Filter(subs, tt.lang)
			if len(got) != tt.expected {
				t.Errorf("Filter(%q) returned %d subs, want %d", tt.lang, len(got), tt.expected)
			}
		})
	}
}

func TestBestMatch(t *testing.T) {
	subs := []media.SubtitleTrack{
		{Language: "tr", Label: "Türkçe (Forced)", URL: "https://example.com/forced.vtt"},
		{Language: "tr", Label: "Türkçe", URL: "https://example.com/tr.vtt"},
		{Language: "en", Label: "English", URL: "https://example.com/en.vtt"},
	}

	best := BestMatch(subs, "turkish")
	if best == nil {
		t.Fatal("BestMatch returned nil for turkish")
	}
	if best.URL != "https://example.com/tr.vtt" {
		t.Errorf("BestMatch preferred %q, want the non-forced track", best.URL)
	}

	best = BestMatch(subs, "english")
	if best == nil || best.Language != "en" {
		t.Errorf("BestMatch(english) = %+v", best)
	}

	if best := BestMatch(subs, "german"); best != nil {
		t.Errorf("BestMatch(german) = %+v, want nil", best)
	}
}

type fakeFetcher struct {
	body    string
	referer string
}

func (f *fakeFetcher) Fetch(_ context.Context, _, referer string) (string, error) {
	f.referer = referer
	if f.body == "" {
		return "", fmt.Errorf("unexpected status 404")
	}
	return f.body, nil
}

func TestTempDirDownload(t *testing.T) {
	dir, err := NewTempDir()
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Cleanup()

	f := &fakeFetcher{body: "WEBVTT\n\n00:00.000 --> 00:01.000\nMerhaba\n"}
	sub := media.SubtitleTrack{Language: "tr", URL: "https://cdn.example.com/subs/../tr.srt?token=1"}

	path, err := dir.Download(context.Background(), f, sub, "https://canliplayer.com/fireplayer/video/a1")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if filepath.Dir(path) != dir.path {
		t.Errorf("file written outside temp dir: %s", path)
	}
	if filepath.Ext(path) != ".srt" {
		t.Errorf("extension = %q, want .srt", filepath.Ext(path))
	}
	if f.referer != "https://canliplayer.com/fireplayer/video/a1" {
		t.Errorf("referer = %q", f.referer)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != f.body {
		t.Errorf("file content = %q", data)
	}

	dir.Cleanup()
	if _, err := os.Stat(dir.path); !os.IsNotExist(err) {
		t.Error("Cleanup() should remove the directory")
	}
}

func TestTempDirDownloadRejectsBadURL(t *testing.T) {
	dir, err := NewTempDir()
	if err != nil {
		t.Fatal(err)
	}
	defer dir.Cleanup()

	if _, err := dir.Download(context.Background(), &fakeFetcher{body: "x"}, media.SubtitleTrack{URL: "file:///etc/passwd"}, ""); err == nil {
		t.Error("Download() should reject non-http URLs")
	}
	if _, err := dir.Download(context.Background(), &fakeFetcher{}, media.SubtitleTrack{URL: "https://example.com/a.vtt"}, ""); err == nil {
		t.Error("Download() should surface fetch errors")
	}
}
