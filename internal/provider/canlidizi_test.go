package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages    map[string]string
	urls     []string
	referers []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url, referer string) (string, error) {
	f.urls = append(f.urls, url)
	f.referers = append(f.referers, referer)
	body, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("unexpected status 404")
	}
	return body, nil
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func TestSearchBuildsQueryURL(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		testBase + "/?s=yal%C4%B1+%C3%A7apk%C4%B1n%C4%B1": fixture(t, "search.html"),
	}}
	p := NewCanliDizi(testBase+"/", f)

	results, err := p.Search(context.Background(), "  yalı   çapkını ")
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, []string{testBase + "/"}, f.referers)
}

func TestSearchNoResults(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		testBase + "/?s=yok": "<html><body></body></html>",
	}}
	p := NewCanliDizi(testBase, f)

	_, err := p.Search(context.Background(), "yok")
	assert.True(t, errors.Is(err, ErrNoResults), "got %v", err)
}

func TestSearchEmptyQuery(t *testing.T) {
	f := &fakeFetcher{}
	p := NewCanliDizi(testBase, f)

	_, err := p.Search(context.Background(), " \t ")
	assert.Error(t, err)
	assert.Empty(t, f.urls, "empty queries must not hit the network")
}

func TestHome(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{testBase + "/": fixture(t, "home.html")}}

	sections, err := NewCanliDizi(testBase, f).Home(context.Background())
	require.NoError(t, err)
	assert.Len(t, sections, 4)
}

func TestHomeFetchError(t *testing.T) {
	_, err := NewCanliDizi(testBase, &fakeFetcher{}).Home(context.Background())
	assert.ErrorContains(t, err, "getting home page")
}

func TestLoadDispatchesOnURL(t *testing.T) {
	seriesURL := testBase + "/kategori/gibi"
	episodeURL := testBase + "/gibi-12-bolum-izle.html"
	f := &fakeFetcher{pages: map[string]string{
		seriesURL:  fixture(t, "series.html"),
		episodeURL: fixture(t, "episode.html"),
	}}
	p := NewCanliDizi(testBase, f)

	series, err := p.Load(context.Background(), seriesURL)
	require.NoError(t, err)
	assert.Len(t, series.Episodes, 3)

	episode, err := p.Load(context.Background(), episodeURL)
	require.NoError(t, err)
	assert.Empty(t, episode.Episodes)
	assert.Equal(t, "Gibi 12.Bölüm izle", episode.Title)
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	f := &fakeFetcher{}
	_, err := NewCanliDizi(testBase, f).Load(context.Background(), "file:///etc/passwd")
	assert.Error(t, err)
	assert.Empty(t, f.urls)
}

func TestNewCanliDiziDefaultBase(t *testing.T) {
	assert.Equal(t, DefaultBase, NewCanliDizi("", &fakeFetcher{}).Base())
}
