package player

import (
	"os/exec"

	"canlidizi/internal/media"
)

// VLC implements the Player interface for VLC media player.
type VLC struct{}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

// Args builds VLC flags. VLC has no option for arbitrary HTTP headers,
// only Referer and User-Agent are forwarded.
func (v *VLC) Args(link media.ResolvedLink, title string, subFile string) []string {
	args := []string{
		link.URL(),
		"--play-and-exit",
	}

	if title != "" {
		args = append(args, "--meta-title", title)
	}
	if ref := link.Referer(); ref != "" {
		args = append(args, "--http-referrer="+ref)
	}
	if ua := link.Headers()["User-Agent"]; ua != "" {
		args = append(args, "--http-user-agent="+ua)
	}
	if subFile != "" {
		args = append(args, "--sub-file", subFile)
	}

	return args
}

func (v *VLC) Play(link media.ResolvedLink, title string, subFile string) error {
	return run("vlc", v.Args(link, title, subFile))
}
