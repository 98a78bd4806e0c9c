// Package classify decides whether a candidate string points at a playable
// video resource.
//
// The check is a best-effort heuristic: an allow list of media extensions and
// streaming keywords combined with a deny list of decoy markers. Both false
// positives and false negatives are possible; callers treat acceptance as
// "worth handing to a player", not as a guarantee.
package classify

import (
	"strings"
)

// MediaExtensions are file extensions that denote a media resource.
var MediaExtensions = []string{".mp4", ".m3u8", ".webm", ".mkv", ".avi", ".mov", ".flv", ".mpd"}

// StreamKeywords mark URLs that usually serve video even without an extension.
var StreamKeywords = []string{"video", "stream", "hls", "dash", "m3u8", "mp4"}

// PlatformTokens identify external video platforms whose watch pages are
// handed to the host player as-is.
var PlatformTokens = []string{"youtube.com/watch?v=", "youtu.be/", "fireplayer"}

// Decoys reject a URL wherever they appear in it, so "adsvideo.mp4" and
// "/wp-content/uploads/" are both rejected.
var Decoys = []string{"data:image", "base64", "placeholder", "blank", "logo", "ads", "banner"}

// IsPlayableVideo reports whether u looks like a playable video URL.
func IsPlayableVideo(u string) bool {
	u = strings.TrimSpace(u)
	if u == "" {
		return false
	}
	lower := strings.ToLower(u)

	if containsAny(lower, Decoys) {
		return false
	}
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}

	return HasMediaExtension(lower) || containsAny(lower, StreamKeywords) || containsAny(lower, PlatformTokens)
}

// HasMediaExtension reports whether u contains one of MediaExtensions.
func HasMediaExtension(u string) bool {
	return containsAny(strings.ToLower(u), MediaExtensions)
}

// IsYouTube reports whether u is a YouTube watch or short link.
func IsYouTube(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, "youtube.com/") || strings.Contains(lower, "youtu.be/")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
