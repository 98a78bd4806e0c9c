package media

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"canlidizi/internal/classify"
)

// StreamType is the delivery format of a resolved stream.
type StreamType int

const (
	Direct StreamType = iota
	HLS
	DASH
)

func (s StreamType) String() string {
	switch s {
	case HLS:
		return "hls"
	case DASH:
		return "dash"
	default:
		return "direct"
	}
}

// StreamTypeOf infers the stream type from a URL.
func StreamTypeOf(u string) StreamType {
	lower := strings.ToLower(u)
	switch {
	case strings.Contains(lower, ".m3u8"):
		return HLS
	case strings.Contains(lower, ".mpd"):
		return DASH
	default:
		return Direct
	}
}

// Quality is a coarse resolution hint.
type Quality int

const (
	QualityUnknown Quality = 0
	P360           Quality = 360
	P480           Quality = 480
	P720           Quality = 720
	P1080          Quality = 1080
)

func (q Quality) String() string {
	if q == QualityUnknown {
		return "unknown"
	}
	return strconv.Itoa(int(q)) + "p"
}

// QualityOf infers a quality hint from the first resolution marker in s.
func QualityOf(s string) Quality {
	switch {
	case strings.Contains(s, "1080"):
		return P1080
	case strings.Contains(s, "720"):
		return P720
	case strings.Contains(s, "480"):
		return P480
	case strings.Contains(s, "360"):
		return P360
	default:
		return QualityUnknown
	}
}

// Stage is a step of the resolution pipeline. The numeric order is the
// order in which stages run.
type Stage int

const (
	StageDirectMedia Stage = iota
	StageDataAttribute
	StageInlineScript
	StageRawHTML
	StageKnownHost
	StageIframe
)

func (s Stage) String() string {
	switch s {
	case StageDirectMedia:
		return "direct-media"
	case StageDataAttribute:
		return "data-attribute"
	case StageInlineScript:
		return "inline-script"
	case StageRawHTML:
		return "raw-html"
	case StageKnownHost:
		return "known-host"
	case StageIframe:
		return "iframe"
	default:
		return "stage(" + strconv.Itoa(int(s)) + ")"
	}
}

// LinkParams carries the fields of a ResolvedLink before validation.
type LinkParams struct {
	SourceLabel string
	DisplayName string
	URL         string
	Referer     string
	Quality     Quality // Overrides the quality inferred from URL when set
	Headers     map[string]string
}

// ResolvedLink is a playable stream ready for hand-off to a player.
// It is immutable once constructed.
type ResolvedLink struct {
	sourceLabel string
	displayName string
	url         string
	referer     string
	streamType  StreamType
	quality     Quality
	headers     map[string]string
}

// NewResolvedLink validates p and builds a link. URLs that the classifier
// rejects never become links.
func NewResolvedLink(p LinkParams) (ResolvedLink, error) {
	if !classify.IsPlayableVideo(p.URL) {
		return ResolvedLink{}, fmt.Errorf("not a playable video URL: %q", p.URL)
	}

	quality := p.Quality
	if quality == QualityUnknown {
		quality = QualityOf(p.URL)
	}

	headers := make(map[string]string, len(p.Headers))
	for k, v := range p.Headers {
		headers[k] = v
	}

	return ResolvedLink{
		sourceLabel: p.SourceLabel,
		displayName: p.DisplayName,
		url:         p.URL,
		referer:     p.Referer,
		streamType:  StreamTypeOf(p.URL),
		quality:     quality,
		headers:     headers,
	}, nil
}

func (l ResolvedLink) SourceLabel() string { return l.sourceLabel }
func (l ResolvedLink) DisplayName() string { return l.displayName }
func (l ResolvedLink) URL() string { return l.url }
func (l ResolvedLink) Referer() string { return l.referer }
func (l ResolvedLink) StreamType() StreamType { return l.streamType }
func (l ResolvedLink) Quality() Quality { return l.quality }

// Headers returns a copy of the request headers the player must send.
func (l ResolvedLink) Headers() map[string]string {
	out := make(map[string]string, len(l.headers))
	for k, v := range l.headers {
		out[k] = v
	}
	return out
}

// MarshalJSON renders the link for machine-readable CLI output.
func (l ResolvedLink) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source  string            `json:"source"`
		Name    string            `json:"name"`
		URL     string            `json:"url"`
		Referer string            `json:"referer,omitempty"`
		Type    string            `json:"type"`
		Quality string            `json:"quality"`
		Headers map[string]string `json:"headers,omitempty"`
	}{
		Source:  l.sourceLabel,
		Name:    l.displayName,
		URL:     l.url,
		Referer: l.referer,
		Type:    l.streamType.String(),
		Quality: l.quality.String(),
		Headers: l.headers,
	})
}
