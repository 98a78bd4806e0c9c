package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"canlidizi/internal/httputil"
	"canlidizi/internal/media"
	"canlidizi/internal/player"
	"canlidizi/internal/resolve"
	"canlidizi/internal/subtitle"
)

var (
	flagAll  bool
	flagPlay bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Print the playable links of an episode or movie page",
	Long: `resolve loads a page, runs every extraction stage over it and prints each
playable link as soon as it is found. With --play the preferred link is handed
to the configured player.`,
	Args: cobra.ExactArgs(1),
	RunE: resolveRun,
}

func init() {
	resolveCmd.Flags().BoolVarP(&flagAll, "all", "a", false, "Collect links from every stage instead of stopping at the first")
	resolveCmd.Flags().BoolVarP(&flagPlay, "play", "p", false, "Play the preferred link after resolving")
}

func resolveRun(cmd *cobra.Command, args []string) error {
	pageURL := args[0]
	if err := httputil.ValidateURL(pageURL); err != nil {
		return fmt.Errorf("invalid page URL: %w", err)
	}

	f, err := newFetcher()
	if err != nil {
		return err
	}

	if flagPlay {
		return resolveAndPlay(cmd.Context(), f, pageURL, pageURL)
	}

	res, err := runResolver(cmd.Context(), f, pageURL, flagAll, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	reportEmpty(cmd.ErrOrStderr(), res, pageURL)
	return nil
}

// reportEmpty prints a notice to w and reports true when res has no links.
func reportEmpty(w io.Writer, res resolve.Result, pageURL string) bool {
	if len(res.Links) > 0 {
		return false
	}
	fmt.Fprintf(w, "No playable links found on %s\n", pageURL)
	return true
}

// runResolver resolves pageURL. Unless --json is set, links are printed to w
// as they are accepted.
func runResolver(ctx context.Context, f *httputil.Fetcher, pageURL string, all bool, w io.Writer) (resolve.Result, error) {
	r, err := newResolver(f, all)
	if err != nil {
		return resolve.Result{}, err
	}

	sink := resolve.SinkFuncs{
		Subtitle: func(t media.SubtitleTrack) {
			log.Debug().Str("url", t.URL).Str("language", t.Language).Msg("subtitle found")
		},
	}
	if !flagJSON {
		sink.Link = func(l media.ResolvedLink) {
			fmt.Fprintln(w, formatLink(l))
		}
	}

	res, err := r.Resolve(ctx, pageURL, sink)
	if err != nil {
		var fe *resolve.FetchError
		if errors.As(err, &fe) {
			return res, fmt.Errorf("loading %s: %w", fe.URL, fe.Err)
		}
		return res, err
	}
	for _, e := range res.Errors {
		log.Debug().Err(e).Msg("non-fatal resolve error")
	}
	return res, nil
}

// resolveAndPlay resolves pageURL, picks a link by the configured quality and
// plays it with the best subtitle. With --json the whole result is printed
// instead, with player "none" the chosen link.
func resolveAndPlay(ctx context.Context, f *httputil.Fetcher, pageURL, title string) error {
	res, err := runResolver(ctx, f, pageURL, cfg.Quality != "auto", io.Discard)
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(os.Stdout, res)
	}
	if reportEmpty(os.Stderr, res, pageURL) {
		return nil
	}

	link := pickLink(res.Links, cfg.Quality)
	log.Debug().Str("url", link.URL()).Str("source", link.DisplayName()).Msg("selected link")
	if cfg.Player == "none" {
		fmt.Println(formatLink(link))
		return nil
	}

	p := player.New(cfg.Player)
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", cfg.Player)
	}

	var subFile string
	if !flagNoSubs {
		if best := subtitle.BestMatch(res.Subtitles, cfg.SubsLanguage); best != nil {
			tmpDir, err := subtitle.NewTempDir()
			if err == nil {
				defer tmpDir.Cleanup()
				subFile, err = tmpDir.Download(ctx, f, *best, link.Referer())
				if err != nil {
					log.Warn().Err(err).Str("url", best.URL).Msg("subtitle download failed")
					subFile = ""
				}
			}
		}
	}

	fmt.Fprintf(os.Stderr, "Playing %s (%s, %s)\n", title, linkSource(link), link.Quality())
	if err := p.Play(link, title, subFile); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// formatLink renders one link as a tab-separated line: quality, type, source
// and URL.
func formatLink(l media.ResolvedLink) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s", l.Quality(), l.StreamType(), linkSource(l), l.URL())
}

// linkSource names the handler that produced l, e.g. "Canlı Dizi - BetaPlayer".
func linkSource(l media.ResolvedLink) string {
	if l.DisplayName() != "" {
		return l.DisplayName()
	}
	return l.SourceLabel()
}

type jsonResult struct {
	Links     []media.ResolvedLink  `json:"links"`
	Subtitles []media.SubtitleTrack `json:"subtitles"`
	Errors    []string              `json:"errors,omitempty"`
}

func writeJSON(w io.Writer, res resolve.Result) error {
	out := jsonResult{
		Links:     res.Links,
		Subtitles: res.Subtitles,
	}
	if out.Links == nil {
		out.Links = []media.ResolvedLink{}
	}
	if out.Subtitles == nil {
		out.Subtitles = []media.SubtitleTrack{}
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, e.Error())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
