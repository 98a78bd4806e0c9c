// Package player provides a secure interface for launching media players.
// All player invocations use exec.Command with explicit argument slices,
// so stream URLs and titles are never interpreted by a shell.
package player

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"canlidizi/internal/media"
)

// Player is the interface for media player implementations.
type Player interface {
	// Play starts playback of a link and blocks until the player exits.
	Play(link media.ResolvedLink, title string, subFile string) error

	// Args returns the command line Play would run, without the binary.
	Args(link media.ResolvedLink, title string, subFile string) []string

	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool
}

// New creates a player by name.
func New(name string) Player {
	switch name {
	case "mpv":
		return &MPV{}
	case "vlc":
		return &VLC{}
	case "iina", "celluloid":
		return &Generic{name: name}
	default:
		return &MPV{} // Default to mpv
	}
}

// extraHeaders returns the link headers other than User-Agent and Referer,
// which every player takes through dedicated flags, as sorted "Key: Value"
// lines.
func extraHeaders(link media.ResolvedLink) []string {
	var out []string
	for k, v := range link.Headers() {
		if k == "User-Agent" || k == "Referer" {
			continue
		}
		out = append(out, k+": "+v)
	}
	sort.Strings(out)
	return out
}

// run executes a player attached to the terminal. Non-zero exits are how
// most players report a user quit, so they are not errors.
func run(name string, args []string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}
