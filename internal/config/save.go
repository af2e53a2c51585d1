package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mjlindsay/anchor/internal/atomicfile"
)

type persistedConfig struct {
	ExhibitsRoot      *string              `toml:"exhibits_root,omitempty"`
	SanitizeFilenames *bool                `toml:"sanitize_filenames,omitempty"`
	FuzzyThreshold    *float64             `toml:"fuzzy_threshold,omitempty"`
	FuzzyEpsilon      *float64             `toml:"fuzzy_epsilon,omitempty"`
	MaxRetries        *int                 `toml:"max_retries,omitempty"`
	Viewer            *string              `toml:"viewer,omitempty"`
	BlackLinks        *bool                `toml:"black_links,omitempty"`
	UI                *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent    *string `toml:"accent,omitempty"`
	CodeTheme *string `toml:"code_theme,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func truePtr(value bool) *bool {
	if !value {
		return nil
	}
	return &value
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically. Only
// fields that were actually set end up in the file.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		ExhibitsRoot:      nonEmptyPtr(cfg.ExhibitsRoot),
		SanitizeFilenames: truePtr(cfg.SanitizeFilenames),
		Viewer:            nonEmptyPtr(cfg.Viewer),
		BlackLinks:        truePtr(cfg.BlackLinks),
	}
	if cfg.FuzzyThreshold > 0 {
		out.FuzzyThreshold = &cfg.FuzzyThreshold
	}
	if cfg.FuzzyEpsilon > 0 {
		out.FuzzyEpsilon = &cfg.FuzzyEpsilon
	}
	if cfg.MaxRetries > 0 {
		out.MaxRetries = &cfg.MaxRetries
	}

	accent := nonEmptyPtr(cfg.UI.Accent)
	codeTheme := nonEmptyPtr(cfg.UI.CodeTheme)
	if accent != nil || codeTheme != nil {
		out.UI = &persistedUISettings{
			Accent:    accent,
			CodeTheme: codeTheme,
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	return nil
}
