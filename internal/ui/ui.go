// Package ui provides interactive selection and text input. On a terminal it
// runs a bubbletea list rendered on stderr, so stdout stays free for links.
// Without a terminal it falls back to a numbered prompt on plain streams.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("selection cancelled")

// Interactive reports whether the full-screen selector can be used.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// Select presents items to the user and returns the selected item's index.
func Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}
	if !Interactive() {
		return SelectPlain(os.Stdin, os.Stderr, prompt, items)
	}

	final, err := tea.NewProgram(newSelectModel(prompt, items), tea.WithOutput(os.Stderr), tea.WithAltScreen()).Run()
	if err != nil {
		return -1, fmt.Errorf("running selector: %w", err)
	}
	m := final.(selectModel)
	if m.cancelled || m.choice < 0 {
		return -1, ErrCancelled
	}
	return m.choice, nil
}

// Input prompts the user for free-text input.
func Input(prompt string) (string, error) {
	if !Interactive() {
		return InputPlain(os.Stdin, os.Stderr, prompt)
	}

	final, err := tea.NewProgram(newInputModel(prompt), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return "", fmt.Errorf("running input: %w", err)
	}
	m := final.(inputModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return "", fmt.Errorf("no input provided")
	}
	return query, nil
}

// SelectPlain lists items with 1-based numbers on w and reads the choice
// from r. It re-prompts on invalid numbers until r is exhausted.
func SelectPlain(r io.Reader, w io.Writer, prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	for i, item := range items {
		fmt.Fprintf(w, "%3d) %s\n", i+1, item)
	}

	scanner := bufio.NewScanner(r)
	for {
		fmt.Fprintf(w, "%s [1-%d]: ", prompt, len(items))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return -1, fmt.Errorf("reading selection: %w", err)
			}
			return -1, ErrCancelled
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "q" {
			return -1, ErrCancelled
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(items) {
			fmt.Fprintf(w, "invalid choice %q\n", line)
			continue
		}
		return n - 1, nil
	}
}

// InputPlain reads one line from r after printing prompt on w.
func InputPlain(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprintf(w, "%s: ", prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	query := strings.TrimSpace(line)
	if query == "" {
		return "", fmt.Errorf("no input provided")
	}
	return query, nil
}
