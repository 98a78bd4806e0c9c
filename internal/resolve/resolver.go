// Package resolve turns a content page into playable stream links by walking
// the extraction stages in a fixed order, following embedded frames one level
// deep and delegating known video hosts to their handlers.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"canlidizi/internal/classify"
	"canlidizi/internal/extract"
	"canlidizi/internal/httputil"
	"canlidizi/internal/media"
	"canlidizi/internal/pattern"
	"canlidizi/internal/urlutil"
)

// Mode selects how many links a request produces.
type Mode int

const (
	// FirstMatch stops at the first accepted link.
	FirstMatch Mode = iota
	// Accumulate walks every stage and returns every accepted link.
	Accumulate
)

func (m Mode) String() string {
	if m == Accumulate {
		return "all"
	}
	return "first"
}

// ParseMode accepts "first" and "all" (or "accumulate").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "firstmatch":
		return FirstMatch, nil
	case "all", "accumulate":
		return Accumulate, nil
	default:
		return FirstMatch, fmt.Errorf("unknown mode %q (want first or all)", s)
	}
}

// DefaultLabel is the source label put on every link.
const DefaultLabel = "Canlı Dizi"

// Fetcher loads a page. referer is empty for the primary page.
type Fetcher interface {
	Fetch(ctx context.Context, url, referer string) (string, error)
}

// StageOutcome records what one stage did on one document.
type StageOutcome struct {
	Stage    media.Stage
	URL      string // Document the stage ran on
	Depth    int
	Accepted int
	Rejected int
	Err      error
}

// Result is the terminal state of a request.
type Result struct {
	Links     []media.ResolvedLink
	Subtitles []media.SubtitleTrack
	Outcomes  []StageOutcome
	Errors    []error // Non-fatal errors in the order they occurred
	Fetches   int     // Pages loaded, the primary page included
}

// Resolver is safe for concurrent use; it holds no per-request state.
type Resolver struct {
	fetcher   Fetcher
	mode      Mode
	registry  *extract.Registry
	log       zerolog.Logger
	maxDepth  int
	label     string
	userAgent string
	timeout   time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMode sets FirstMatch or Accumulate.
func WithMode(m Mode) Option { return func(r *Resolver) { r.mode = m } }

// WithRegistry replaces the default host handlers.
func WithRegistry(reg *extract.Registry) Option { return func(r *Resolver) { r.registry = reg } }

// WithLogger sets the logger for non-fatal errors and stage tracing.
func WithLogger(l zerolog.Logger) Option { return func(r *Resolver) { r.log = l } }

// WithMaxDepth sets how many levels of embedded frames are followed.
func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.maxDepth = n
		}
	}
}

// WithLabel sets the source label of emitted links.
func WithLabel(label string) Option { return func(r *Resolver) { r.label = label } }

// WithUserAgent sets the User-Agent header handed to the player.
func WithUserAgent(ua string) Option { return func(r *Resolver) { r.userAgent = ua } }

// WithTimeout bounds each fetch. Zero disables the per-fetch deadline.
func WithTimeout(d time.Duration) Option { return func(r *Resolver) { r.timeout = d } }

// New returns a Resolver that loads pages through fetcher.
func New(fetcher Fetcher, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:   fetcher,
		mode:      FirstMatch,
		registry:  extract.DefaultRegistry(),
		log:       zerolog.Nop(),
		maxDepth:  1,
		label:     DefaultLabel,
		userAgent: httputil.DefaultUserAgent,
		timeout:   httputil.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches pageURL and resolves it. A failure to load pageURL is the
// only fatal error; an empty Result with a nil error means nothing playable
// was found.
func (r *Resolver) Resolve(ctx context.Context, pageURL string, sink Sink) (Result, error) {
	html, err := r.fetch(ctx, pageURL, "")
	if err != nil {
		r.log.Error().Err(err).Str("url", pageURL).Msg("primary page fetch failed")
		return Result{Fetches: 1}, &FetchError{URL: pageURL, Fatal: true, Err: err}
	}
	res, err := r.ResolveHTML(ctx, html, pageURL, sink)
	res.Fetches++
	return res, err
}

// ResolveHTML resolves an already loaded page. The returned error is non-nil
// only when ctx is done; the partial Result is still returned.
func (r *Resolver) ResolveHTML(ctx context.Context, html, pageURL string, sink Sink) (Result, error) {
	if sink == nil {
		sink = SinkFuncs{}
	}
	run := &request{
		Resolver: r,
		sink:     sink,
		seen:     make(map[string]struct{}),
		subSeen:  make(map[string]struct{}),
		visited:  map[string]struct{}{urlutil.DedupKey(pageURL): {}},
	}
	run.walk(ctx, pattern.NewDocument(pageURL, html), 0)

	r.log.Debug().
		Str("url", pageURL).
		Int("links", len(run.res.Links)).
		Int("fetches", run.res.Fetches).
		Int("errors", len(run.res.Errors)).
		Msg("resolve finished")

	return run.res, ctx.Err()
}

func (r *Resolver) fetch(ctx context.Context, url, referer string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.fetcher.Fetch(ctx, url, referer)
}

// request is the mutable state of a single Resolve call.
type request struct {
	*Resolver
	sink    Sink
	res     Result
	seen    map[string]struct{} // candidate URLs already classified
	subSeen map[string]struct{}
	visited map[string]struct{} // pages already fetched
	done    bool
}

func (q *request) stopped(ctx context.Context) bool {
	return q.done || ctx.Err() != nil
}

func (q *request) walk(ctx context.Context, doc *pattern.Document, depth int) {
	q.subtitles(doc)

	for _, stage := range pattern.Stages() {
		if q.stopped(ctx) {
			return
		}
		out := StageOutcome{Stage: stage, URL: doc.URL, Depth: depth}
		switch stage {
		case media.StageKnownHost:
			q.knownHosts(ctx, doc, depth, &out)
		case media.StageIframe:
			q.iframes(ctx, doc, depth, &out)
		default:
			q.generic(doc, stage, &out)
		}
		q.res.Outcomes = append(q.res.Outcomes, out)

		q.log.Trace().
			Str("stage", stage.String()).
			Str("url", doc.URL).
			Int("depth", depth).
			Int("accepted", out.Accepted).
			Int("rejected", out.Rejected).
			Msg("stage done")
	}
}

// fail records a non-fatal error against the current stage.
func (q *request) fail(out *StageOutcome, err error, strategy, handler string) {
	q.res.Errors = append(q.res.Errors, err)
	out.Err = errors.Join(out.Err, err)

	level := zerolog.WarnLevel
	var derr *DecodeError
	if errors.As(err, &derr) || errors.Is(err, extract.ErrFetchNotAllowed) {
		level = zerolog.DebugLevel
	}
	q.log.WithLevel(level).Err(err).
		Str("stage", out.Stage.String()).
		Str("strategy", strategy).
		Str("handler", handler).
		Str("url", out.URL).
		Msg("stage error")
}

func (q *request) generic(doc *pattern.Document, stage media.Stage, out *StageOutcome) {
	for _, s := range pattern.ForStage(stage) {
		cands, err := s.Match(doc)
		if err != nil {
			q.fail(out, err, s.ID, "")
			continue
		}
		for _, c := range cands {
			u := urlutil.Normalize(c.RawValue, doc.URL)
			if q.registry.Lookup(u) != nil {
				continue
			}
			q.accept(c, u, "Direct", doc.URL, out)
			if q.done {
				return
			}
		}
	}
}

func (q *request) knownHosts(ctx context.Context, doc *pattern.Document, depth int, out *StageOutcome) {
	var order []extract.HostHandler
	links := make(map[extract.HostHandler][]string)
	linkSeen := make(map[string]struct{})

	for _, s := range pattern.ForStage(media.StageKnownHost) {
		cands, err := s.Match(doc)
		if err != nil {
			q.fail(out, err, s.ID, "")
			continue
		}
		for _, c := range cands {
			u := urlutil.Normalize(c.RawValue, doc.URL)
			h := q.registry.Lookup(u)
			if h == nil {
				continue
			}
			key := urlutil.DedupKey(u)
			if _, dup := linkSeen[key]; dup {
				continue
			}
			linkSeen[key] = struct{}{}
			if _, known := links[h]; !known {
				order = append(order, h)
			}
			links[h] = append(links[h], u)
		}
	}

	for _, h := range order {
		if q.stopped(ctx) {
			return
		}
		page := extract.Page{
			URL:       doc.URL,
			HTML:      doc.HTML,
			Links:     links[h],
			FirstOnly: q.mode == FirstMatch,
		}
		if depth < q.maxDepth {
			page.Fetch = q.nestedFetch()
		}

		cands, err := h.Resolve(ctx, page)
		if err != nil {
			q.fail(out, err, "", h.Name())
		}
		for _, c := range cands {
			origin := c.OriginContext
			if origin == "" {
				origin = doc.URL
			}
			q.accept(c, urlutil.Normalize(c.RawValue, origin), h.Name(), origin, out)
			if q.done {
				return
			}
		}
	}
}

// nestedFetch is handed to host handlers. Its failures are returned to the
// handler, which reports them, so it does not record them itself.
func (q *request) nestedFetch() extract.FetchFunc {
	return func(ctx context.Context, url, referer string) (string, error) {
		q.res.Fetches++
		q.visited[urlutil.DedupKey(url)] = struct{}{}
		html, err := q.fetch(ctx, url, referer)
		if err != nil {
			return "", &FetchError{URL: url, Err: err}
		}
		return html, nil
	}
}

func (q *request) iframes(ctx context.Context, doc *pattern.Document, depth int, out *StageOutcome) {
	for _, s := range pattern.ForStage(media.StageIframe) {
		cands, err := s.Match(doc)
		if err != nil {
			q.fail(out, err, s.ID, "")
			continue
		}
		for _, c := range cands {
			if q.stopped(ctx) {
				return
			}
			u := urlutil.Normalize(c.RawValue, doc.URL)
			if httputil.ValidateURL(u) != nil || q.registry.Lookup(u) != nil {
				continue
			}
			// A frame pointing straight at a media file is a link, not a page.
			if classify.HasMediaExtension(u) {
				q.accept(c, u, "Direct", doc.URL, out)
				continue
			}
			if depth >= q.maxDepth {
				q.log.Debug().Str("url", u).Int("depth", depth).Msg("frame not followed: depth limit")
				continue
			}
			key := urlutil.DedupKey(u)
			if _, ok := q.visited[key]; ok {
				continue
			}
			q.visited[key] = struct{}{}

			q.res.Fetches++
			html, err := q.fetch(ctx, u, doc.URL)
			if err != nil {
				q.fail(out, &FetchError{URL: u, Err: err}, s.ID, "")
				continue
			}
			q.walk(ctx, pattern.NewDocument(u, html), depth+1)
		}
	}
}

// accept classifies u and emits it as a link unless it was seen before in
// this request.
func (q *request) accept(c media.Candidate, u, source, referer string, out *StageOutcome) {
	key := urlutil.DedupKey(u)
	if _, dup := q.seen[key]; dup {
		return
	}
	q.seen[key] = struct{}{}

	headers := map[string]string{"Referer": referer}
	if q.userAgent != "" {
		headers["User-Agent"] = q.userAgent
	}
	link, err := media.NewResolvedLink(media.LinkParams{
		SourceLabel: q.label,
		DisplayName: q.label + " - " + source,
		URL:         u,
		Referer:     referer,
		Quality:     media.QualityOf(c.Label),
		Headers:     headers,
	})
	if err != nil {
		out.Rejected++
		q.log.Trace().Str("url", u).Str("strategy", c.Strategy).Msg("candidate rejected")
		return
	}

	out.Accepted++
	q.res.Links = append(q.res.Links, link)
	q.sink.OnLink(link)
	q.log.Debug().
		Str("stage", out.Stage.String()).
		Str("strategy", c.Strategy).
		Str("url", u).
		Msg("link accepted")

	if q.mode == FirstMatch {
		q.done = true
	}
}

func (q *request) subtitles(doc *pattern.Document) {
	for _, t := range pattern.Subtitles(doc) {
		t.URL = urlutil.Normalize(t.URL, doc.URL)
		if httputil.ValidateURL(t.URL) != nil {
			continue
		}
		key := urlutil.DedupKey(t.URL)
		if _, dup := q.subSeen[key]; dup {
			continue
		}
		q.subSeen[key] = struct{}{}
		q.res.Subtitles = append(q.res.Subtitles, t)
		q.sink.OnSubtitle(t)
	}
}
