package provider

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"canlidizi/internal/httputil"
	"canlidizi/internal/media"
	"canlidizi/internal/urlutil"
)

const boxSelector = "div.list-episodes div.episode-box"

// homeRows maps the n-th "div.episodes.episode" block of the main page to its
// section name.
var homeRows = []string{"Yerli Diziler", "Dijital Diziler", "Filmler"}

var (
	episodeNumRe = regexp.MustCompile(`^\s*(\d+)\s*\.\s*Bölüm`)
	yearRe       = regexp.MustCompile(`^\d{4}$`)
	resolutionRe = regexp.MustCompile(`(?i)\b(2160|1080|720|480|360)p?\b`)
	badgeRe      = regexp.MustCompile(`(?i)\b(4k|hd|sd|cam)\b`)
)

// parseHome extracts the popular carousel and the three listing rows.
// Empty sections are omitted.
func parseHome(doc *goquery.Document, base string) []media.HomeSection {
	var sections []media.HomeSection

	popular := parseBoxes(doc.Find("div.diziler div.owl-item"), base)
	if len(popular) > 0 {
		sections = append(sections, media.HomeSection{Name: "Popüler Diziler", Items: popular})
	}

	rows := doc.Find("div.episodes.episode")
	for i, name := range homeRows {
		items := parseBoxes(rows.Eq(i).Find(boxSelector), base)
		if len(items) == 0 {
			continue
		}
		sections = append(sections, media.HomeSection{Name: name, Items: items})
	}

	return sections
}

// parseSearchResults extracts the listing boxes of a search page.
func parseSearchResults(doc *goquery.Document, base string) []media.SearchResult {
	return parseBoxes(doc.Find("div.episodes.episode "+boxSelector), base)
}

func parseBoxes(sel *goquery.Selection, base string) []media.SearchResult {
	var results []media.SearchResult
	sel.Each(func(_ int, s *goquery.Selection) {
		if r, ok := parseBox(s, base); ok {
			results = append(results, r)
		}
	})
	// Carousels repeat their items for infinite scrolling.
	return lo.UniqBy(results, func(r media.SearchResult) string { return r.URL })
}

// parseBox converts one listing box. Boxes without a link are skipped.
func parseBox(s *goquery.Selection, base string) (media.SearchResult, bool) {
	href, ok := s.Find("a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return media.SearchResult{}, false
	}

	img := s.Find("img").First()
	serieName := strings.TrimSpace(s.Find("div.serie-name").First().Text())
	episodeName := strings.TrimSpace(s.Find("div.episode-name").First().Text())

	r := media.SearchResult{
		URL:     fixURL(href, base),
		Poster:  posterURL(img, base),
		Quality: parseQuality(img.AttrOr("title", "")),
	}
	r.Type = classifyURL(r.URL)

	switch r.Type {
	case media.TV:
		r.Title = firstNonEmpty(serieName, episodeName)
		if yearRe.MatchString(episodeName) {
			r.Year, _ = strconv.Atoi(episodeName)
		}
	case media.Movie:
		r.Title = firstNonEmpty(episodeName, serieName)
	default:
		r.Title = strings.TrimSpace(serieName + " " + episodeName)
	}

	if r.Title == "" {
		return media.SearchResult{}, false
	}
	return r, true
}

// parseSeries extracts a series page with its episode list, newest first.
func parseSeries(doc *goquery.Document, pageURL, base string) *media.ContentDetail {
	title := strings.TrimSpace(doc.Find("div.title-border").First().Text())
	if title == "" {
		title = pageTitle(doc)
	}

	detail := &media.ContentDetail{
		Title:  title,
		URL:    pageURL,
		Poster: posterURL(doc.Find("div.poster img").First(), base),
		Plot:   strings.TrimSpace(doc.Find("div.synopsis").First().Text()),
		Rating: parseRating(doc.Find("div.episode-date").First().Text()),
		Type:   media.TV,
	}

	var episodes []media.EpisodeInfo
	doc.Find("div.episodes.episode " + boxSelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Find("a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}

		name := strings.TrimSpace(s.Find("div.episode-name").First().Text())
		num, ok := parseEpisodeNumber(name)
		if !ok {
			num = i + 1
		}

		episodes = append(episodes, media.EpisodeInfo{
			Number: num,
			Season: 1,
			Name:   name,
			URL:    fixURL(href, base),
			Poster: posterURL(s.Find("img").First(), base),
			Date:   strings.TrimSpace(s.Find("div.episode-date").First().Text()),
		})
	})
	slices.Reverse(episodes)
	detail.Episodes = episodes

	return detail
}

// parseSingle extracts a movie or episode page.
func parseSingle(doc *goquery.Document, pageURL, base string) *media.ContentDetail {
	detail := &media.ContentDetail{
		Title:  pageTitle(doc),
		URL:    pageURL,
		Poster: posterURL(doc.Find("div.poster img").First(), base),
		Plot:   strings.TrimSpace(doc.Find("div.synopsis").First().Text()),
		Rating: parseRating(doc.Find("div.episode-date").First().Text()),
		Type:   media.Movie,
	}
	if strings.Contains(pageURL, "bolum") {
		detail.Type = media.Episode
	}
	return detail
}

// classifyURL decides the listing type from the site's URL scheme:
// "kategori" pages are series, "-izle.html" pages without "bolum" are movies
// and everything else is a single episode.
func classifyURL(u string) media.MediaType {
	switch {
	case isSeriesURL(u):
		return media.TV
	case strings.Contains(u, "-izle.html") && !strings.Contains(u, "bolum"):
		return media.Movie
	default:
		return media.Episode
	}
}

func isSeriesURL(u string) bool {
	return strings.Contains(u, "kategori")
}

// pageTitle returns the <title> text before the " | " site suffix.
func pageTitle(doc *goquery.Document) string {
	title := doc.Find("title").First().Text()
	if i := strings.Index(title, " | "); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

// posterURL prefers the lazy-load attribute the site's cache plugin writes.
func posterURL(img *goquery.Selection, base string) string {
	if src, ok := img.Attr("data-wpfc-original-src"); ok {
		return fixURL(src, base)
	}
	return fixURL(img.AttrOr("src", ""), base)
}

// parseRating turns "IMDb: 7,5" into 75. Unparseable text yields 0.
func parseRating(text string) int {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "IMDb:")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 10 {
		return 0
	}
	return int(f*10 + 0.5)
}

// parseEpisodeNumber reads "12.Bölüm" style names.
func parseEpisodeNumber(name string) (int, bool) {
	m := episodeNumRe.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseQuality normalizes a poster title such as "Full HD 1080p izle" to a
// short badge, preferring a resolution over a label. Empty when nothing
// recognizable is present.
func parseQuality(title string) string {
	if m := resolutionRe.FindStringSubmatch(title); m != nil {
		return m[1] + "p"
	}
	return strings.ToUpper(badgeRe.FindString(title))
}

func fixURL(raw, base string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u := urlutil.Normalize(raw, base)
	if urlutil.Origin(u) == "" {
		u = httputil.BuildURL(base, raw)
	}
	return u
}

func firstNonEmpty(values ...string) string {
	v, _ := lo.Find(values, func(s string) bool { return s != "" })
	return v
}

// FormatDisplayTitle creates a display string for interactive selection.
func FormatDisplayTitle(r media.SearchResult) string {
	parts := []string{r.Title}
	if r.Year > 0 {
		parts = append(parts, fmt.Sprintf("(%d)", r.Year))
	}
	switch r.Type {
	case media.TV:
		parts = append(parts, "[Dizi]")
	case media.Movie:
		parts = append(parts, "[Film]")
	default:
		parts = append(parts, "[Bölüm]")
	}
	if r.Quality != "" {
		parts = append(parts, r.Quality)
	}
	return strings.Join(parts, " ")
}

// FormatEpisode creates a display string for an episode row.
func FormatEpisode(e media.EpisodeInfo) string {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("%d.Bölüm", e.Number)
	}
	if e.Date != "" {
		return name + " · " + e.Date
	}
	return name
}
