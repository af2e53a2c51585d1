// Package config handles global anchor configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mjlindsay/anchor/internal/matcher"
	"github.com/mjlindsay/anchor/internal/retry"
)

// EnvConfigPath overrides the config file location when set.
const EnvConfigPath = "ANCHOR_CONFIG"

// Config represents the global anchor configuration. Zero values mean
// "not set"; use the accessor methods for effective values.
type Config struct {
	// ExhibitsRoot is the default folder scanned for candidate files.
	// Relative paths are resolved against the source document's folder.
	ExhibitsRoot string `toml:"exhibits_root"`

	// SanitizeFilenames renames link-hostile exhibit filenames before
	// links are generated.
	SanitizeFilenames bool `toml:"sanitize_filenames"`

	// FuzzyThreshold is the minimum similarity score for a fuzzy match.
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`

	// FuzzyEpsilon is the score gap under which two fuzzy candidates
	// are considered tied (and the citation left unresolved).
	FuzzyEpsilon float64 `toml:"fuzzy_epsilon"`

	// MaxRetries bounds retry attempts for transient I/O failures.
	MaxRetries int `toml:"max_retries"`

	// Viewer selects the page-fragment convention: "chrome" or "acrobat".
	Viewer string `toml:"viewer"`

	// BlackLinks asks the output collaborator to render links in body
	// color instead of hyperlink blue.
	BlackLinks bool `toml:"black_links"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and rendered
	// markdown: an ANSI code ("0" to "255") or hex color ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered
	// markdown code blocks.
	CodeTheme string `toml:"code_theme"`
}

// Threshold returns the effective fuzzy-match threshold.
func (c *Config) Threshold() float64 {
	if c.FuzzyThreshold > 0 {
		return c.FuzzyThreshold
	}
	return matcher.DefaultThreshold
}

// Epsilon returns the effective fuzzy-tie margin.
func (c *Config) Epsilon() float64 {
	if c.FuzzyEpsilon > 0 {
		return c.FuzzyEpsilon
	}
	return matcher.DefaultEpsilon
}

// RetryPolicy returns the effective retry policy for transient I/O.
func (c *Config) RetryPolicy() retry.Policy {
	p := retry.Default()
	if c.MaxRetries > 0 {
		p.MaxRetries = c.MaxRetries
	}
	return p
}

// Load loads the configuration from the default location.
// Returns a zero config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the config file path. The ANCHOR_CONFIG
// environment variable wins; otherwise ~/.config/anchor/config.toml
// (XDG style) with an OS-specific fallback.
func DefaultPath() string {
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}

	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "anchor", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "anchor", "config.toml")
	}

	return filepath.Join(".", "config.toml")
}
