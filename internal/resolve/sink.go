package resolve

import (
	"sync"

	"canlidizi/internal/media"
)

// Sink receives links and subtitles as soon as they are accepted.
type Sink interface {
	OnLink(media.ResolvedLink)
	OnSubtitle(media.SubtitleTrack)
}

// SinkFuncs adapts plain functions to Sink. Nil fields are ignored.
type SinkFuncs struct {
	Link     func(media.ResolvedLink)
	Subtitle func(media.SubtitleTrack)
}

func (s SinkFuncs) OnLink(l media.ResolvedLink) {
	if s.Link != nil {
		s.Link(l)
	}
}

func (s SinkFuncs) OnSubtitle(t media.SubtitleTrack) {
	if s.Subtitle != nil {
		s.Subtitle(t)
	}
}

// Collector is a Sink that stores everything it receives. It is safe for
// concurrent use.
type Collector struct {
	mu        sync.Mutex
	links     []media.ResolvedLink
	subtitles []media.SubtitleTrack
}

func (c *Collector) OnLink(l media.ResolvedLink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, l)
}

func (c *Collector) OnSubtitle(t media.SubtitleTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subtitles = append(c.subtitles, t)
}

// Links returns a copy of the links received so far, in arrival order.
func (c *Collector) Links() []media.ResolvedLink {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]media.ResolvedLink(nil), c.links...)
}

// Subtitles returns a copy of the subtitles received so far.
func (c *Collector) Subtitles() []media.SubtitleTrack {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]media.SubtitleTrack(nil), c.subtitles...)
}
