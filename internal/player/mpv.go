package player

import (
	"os/exec"
	"strings"

	"canlidizi/internal/media"
)

// MPV implements the Player interface for mpv.
type MPV struct{}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// Args builds mpv flags. Embed hosts reject stream requests without the
// player page as Referer, so it is always forwarded.
func (m *MPV) Args(link media.ResolvedLink, title string, subFile string) []string {
	return mpvArgs(link, title, subFile, "--")
}

func (m *MPV) Play(link media.ResolvedLink, title string, subFile string) error {
	return run("mpv", m.Args(link, title, subFile))
}

// mpvArgs builds mpv options with the given flag prefix. Front-ends that
// pass options through to mpv use "--mpv-".
func mpvArgs(link media.ResolvedLink, title, subFile, prefix string) []string {
	headers := link.Headers()
	args := []string{link.URL()}

	if title != "" {
		args = append(args, prefix+"force-media-title="+title)
	}
	if ua := headers["User-Agent"]; ua != "" {
		args = append(args, prefix+"user-agent="+ua)
	}
	if ref := link.Referer(); ref != "" {
		args = append(args, prefix+"referrer="+ref)
	}
	if extra := extraHeaders(link); len(extra) > 0 {
		// mpv splits the list on commas.
		for i, h := range extra {
			extra[i] = strings.ReplaceAll(h, ",", `\,`)
		}
		args = append(args, prefix+"http-header-fields="+strings.Join(extra, ","))
	}
	if subFile != "" {
		args = append(args, prefix+"sub-file="+subFile)
	}

	return args
}
