// Package media defines shared types for the canlidizi application.
package media

// MediaType represents whether a listing is a movie, a series or a single episode.
type MediaType int

const (
	Movie MediaType = iota
	TV
	Episode
)

func (m MediaType) String() string {
	switch m {
	case Movie:
		return "movie"
	case TV:
		return "tv"
	case Episode:
		return "episode"
	default:
		return "unknown"
	}
}

// SearchResult represents a single listing box scraped from the site.
type SearchResult struct {
	Title   string    // Display title
	URL     string    // Full URL to the content or series page
	Poster  string    // Poster image URL
	Type    MediaType // Movie, TV or Episode
	Year    int       // Release year when the site shows one
	Quality string    // Quality badge from the poster title, e.g. "HD"
}

// HomeSection is one titled row of the site's main page.
type HomeSection struct {
	Name  string
	Items []SearchResult
}

// EpisodeInfo represents a single episode of a series.
type EpisodeInfo struct {
	Number int
	Season int
	Name   string
	URL    string
	Poster string
	Date   string
}

// ContentDetail holds the metadata of a series, movie or episode page.
type ContentDetail struct {
	Title    string
	URL      string
	Poster   string
	Plot     string
	Rating   int // IMDb rating scaled to 0-100, 0 when unknown
	Type     MediaType
	Episodes []EpisodeInfo // Newest first; empty for movies and episodes
}

// SubtitleTrack represents a subtitle file offered next to a stream.
type SubtitleTrack struct {
	Language string `json:"language"` // e.g., "tr"
	Label    string `json:"label"`    // Display label, e.g., "Türkçe"
	URL      string `json:"url"`      // URL to the subtitle file (usually VTT)
}

// Candidate is a raw value produced by an extraction strategy or host
// handler, before normalization and classification.
type Candidate struct {
	RawValue      string // URL as found in the document, possibly relative
	OriginContext string // URL of the document the value was found on
	Strategy      string // ID of the strategy or handler that produced it
	Label         string // Optional quality label next to the value, e.g. "720"
}
