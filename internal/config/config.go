// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only, no code execution is possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
)

// Config holds all application configuration.
type Config struct {
	Base          string   `toml:"base"`
	UserAgent     string   `toml:"user_agent"`
	Timeout       int      `toml:"timeout"` // Seconds per page fetch
	Mode          string   `toml:"mode"`
	Player        string   `toml:"player"`
	Quality       string   `toml:"quality"`
	SubsLanguage  string   `toml:"subs_language"`
	Fingerprint   string   `toml:"fingerprint"`
	ExtraDenylist []string `toml:"extra_denylist"`
	Debug         bool     `toml:"debug"`
	LogFormat     string   `toml:"log_format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Base:         "https://www.canlidizi14.com",
		UserAgent:    "",
		Timeout:      15,
		Mode:         "first",
		Player:       "mpv",
		Quality:      "auto",
		SubsLanguage: "turkish",
		Fingerprint:  "",
		Debug:        false,
		LogFormat:    "console",
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "canlidizi"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "canlidizi"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at the XDG path and merges it with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return load(path, false)
}

// LoadFile reads an explicitly named config file. Unlike Load, a missing
// file is an error.
func LoadFile(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, mustExist bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Allowed values per enumerated key.
var (
	Players      = []string{"mpv", "vlc", "iina", "celluloid", "none"}
	Modes        = []string{"first", "all"}
	Qualities    = []string{"auto", "360", "480", "720", "1080"}
	Fingerprints = []string{"", "chrome"}
	LogFormats   = []string{"console", "json"}
)

// Normalize lower-cases the enumerated keys that are matched by name.
func (c *Config) Normalize() {
	c.Player = strings.ToLower(strings.TrimSpace(c.Player))
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Fingerprint = strings.ToLower(strings.TrimSpace(c.Fingerprint))
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	checks := []struct {
		key     string
		value   string
		allowed []string
	}{
		{"player", strings.ToLower(c.Player), Players},
		{"mode", strings.ToLower(c.Mode), Modes},
		{"quality", c.Quality, Qualities},
		{"fingerprint", strings.ToLower(c.Fingerprint), Fingerprints},
		{"log_format", c.LogFormat, LogFormats},
	}
	for _, ch := range checks {
		if !lo.Contains(ch.allowed, ch.value) {
			return fmt.Errorf("unsupported %s %q (valid: %s)", ch.key, ch.value, strings.Join(lo.Compact(ch.allowed), ", "))
		}
	}

	if c.Timeout < 1 || c.Timeout > 60 {
		return fmt.Errorf("timeout %d out of range (1-60 seconds)", c.Timeout)
	}

	switch {
	case c.Base == "":
		return fmt.Errorf("base URL cannot be empty")
	case !strings.HasPrefix(c.Base, "http://") && !strings.HasPrefix(c.Base, "https://"):
		return fmt.Errorf("base URL %q must start with http:// or https://", c.Base)
	}

	return nil
}

// FetchTimeout returns Timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// BaseURL returns Base without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.Base, "/")
}
