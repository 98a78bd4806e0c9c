package player

import (
	"os/exec"

	"canlidizi/internal/media"
)

// Generic implements the Player interface for mpv front-ends like iina and
// celluloid, which pass "--mpv-" prefixed options through to mpv.
type Generic struct {
	name string
}

func (g *Generic) Name() string { return g.name }

func (g *Generic) Available() bool {
	_, err := exec.LookPath(g.name)
	return err == nil
}

func (g *Generic) Args(link media.ResolvedLink, title string, subFile string) []string {
	return mpvArgs(link, title, subFile, "--mpv-")
}

func (g *Generic) Play(link media.ResolvedLink, title string, subFile string) error {
	return run(g.name, g.Args(link, title, subFile))
}
