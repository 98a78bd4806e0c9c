// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"canlidizi/internal/config"
	"canlidizi/internal/logger"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagConfig      string
	flagLanguage    string
	flagNoSubs      bool
	flagQuality     string
	flagPlayer      string
	flagMode        string
	flagFingerprint string
	flagJSON        bool
	flagDebug       bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

// log is built from cfg once flags are parsed.
var log = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "canlidizi [query]",
	Short: "Find and play Turkish series from canlidizi14.com in the terminal",
	Long: `canlidizi searches canlidizi14.com, resolves the embedded players of an
episode page into direct stream links and hands them to mpv, vlc, iina or
celluloid with the headers the stream hosts require.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadConfig,
	RunE:              searchRun,
	SilenceUsage:      true,
}

// Execute runs the root command. Ctrl-C cancels in-flight fetches.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: $XDG_CONFIG_HOME/canlidizi/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagLanguage, "language", "l", "", "Subtitle language (default: turkish)")
	rootCmd.PersistentFlags().BoolVarP(&flagNoSubs, "no-subs", "n", false, "Disable subtitles")
	rootCmd.PersistentFlags().StringVarP(&flagQuality, "quality", "q", "", "Preferred quality: auto | 360 | 480 | 720 | 1080")
	rootCmd.PersistentFlags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid | none")
	rootCmd.PersistentFlags().StringVarP(&flagMode, "mode", "m", "", "Resolution mode: first | all")
	rootCmd.PersistentFlags().StringVar(&flagFingerprint, "fingerprint", "", "TLS fingerprint for page fetches: chrome")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output links as JSON instead of playing")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(homeCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// CLI flags override config file values
	if flagPlayer != "" {
		cfg.Player = flagPlayer
	}
	if flagQuality != "" {
		cfg.Quality = flagQuality
	}
	if flagMode != "" {
		cfg.Mode = flagMode
	}
	if flagLanguage != "" {
		cfg.SubsLanguage = flagLanguage
	}
	if flagFingerprint != "" {
		cfg.Fingerprint = flagFingerprint
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err = logger.New(cfg.Debug, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	return nil
}
