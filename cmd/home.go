package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"canlidizi/internal/media"
	"canlidizi/internal/ui"
)

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Browse the sections of the main page",
	Args:  cobra.NoArgs,
	RunE:  homeRun,
}

func homeRun(cmd *cobra.Command, args []string) error {
	f, err := newFetcher()
	if err != nil {
		return err
	}
	p := newProvider(f)

	sections, err := p.Home(cmd.Context())
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		return fmt.Errorf("main page has no sections")
	}

	names := lo.Map(sections, func(s media.HomeSection, _ int) string {
		return fmt.Sprintf("%s (%d)", s.Name, len(s.Items))
	})
	idx, err := ui.Select("Ana Sayfa", names)
	if err != nil {
		return err
	}

	selected, err := selectResult(sections[idx].Name, sections[idx].Items)
	if err != nil {
		return err
	}
	return watch(cmd.Context(), f, p, selected)
}
