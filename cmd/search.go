package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"canlidizi/internal/httputil"
	"canlidizi/internal/media"
	"canlidizi/internal/provider"
	"canlidizi/internal/ui"
)

// searchRun is the default command: canlidizi <query>
func searchRun(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	if query == "" {
		var err error
		query, err = ui.Input("Ara")
		if err != nil {
			return fmt.Errorf("no search query provided")
		}
	}

	log.Debug().Str("query", query).Msg("searching")

	f, err := newFetcher()
	if err != nil {
		return err
	}
	p := newProvider(f)

	results, err := p.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	selected, err := selectResult("Sonuçlar", results)
	if err != nil {
		return err
	}
	return watch(cmd.Context(), f, p, selected)
}

// selectResult lets the user pick one listing item.
func selectResult(prompt string, results []media.SearchResult) (media.SearchResult, error) {
	items := make([]string, len(results))
	for i, r := range results {
		items[i] = provider.FormatDisplayTitle(r)
	}

	idx, err := ui.Select(prompt, items)
	if err != nil {
		return media.SearchResult{}, err
	}
	return results[idx], nil
}

// watch handles episode selection for series and then resolves and plays.
func watch(ctx context.Context, f *httputil.Fetcher, p provider.Provider, selected media.SearchResult) error {
	log.Debug().Str("title", selected.Title).Str("url", selected.URL).Stringer("type", selected.Type).Msg("selected")

	pageURL := selected.URL
	title := selected.Title

	if selected.Type == media.TV {
		detail, err := p.Load(ctx, selected.URL)
		if err != nil {
			return fmt.Errorf("loading series: %w", err)
		}
		if len(detail.Episodes) == 0 {
			return fmt.Errorf("no episodes found for %s", detail.Title)
		}

		items := make([]string, len(detail.Episodes))
		for i, ep := range detail.Episodes {
			items[i] = provider.FormatEpisode(ep)
		}
		idx, err := ui.Select(detail.Title, items)
		if err != nil {
			return err
		}

		ep := detail.Episodes[idx]
		pageURL = ep.URL
		title = fmt.Sprintf("%s %d.Bölüm", detail.Title, ep.Number)
		log.Debug().Int("episode", ep.Number).Str("url", ep.URL).Msg("episode selected")
	}

	return resolveAndPlay(ctx, f, pageURL, title)
}
