package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `exhibits_root = "exhibits"
sanitize_filenames = true
fuzzy_threshold = 0.8
max_retries = 5
viewer = "acrobat"
black_links = true

[ui]
accent = "#00afff"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ExhibitsRoot != "exhibits" {
		t.Errorf("ExhibitsRoot = %q", cfg.ExhibitsRoot)
	}
	if !cfg.SanitizeFilenames {
		t.Error("SanitizeFilenames = false")
	}
	if cfg.Threshold() != 0.8 {
		t.Errorf("Threshold() = %v", cfg.Threshold())
	}
	if cfg.Viewer != "acrobat" {
		t.Errorf("Viewer = %q", cfg.Viewer)
	}
	if !cfg.BlackLinks {
		t.Error("BlackLinks = false")
	}
	if cfg.UI.Accent != "#00afff" {
		t.Errorf("UI.Accent = %q", cfg.UI.Accent)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("exhibits_root = ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Threshold() != 0.72 {
		t.Errorf("Threshold() = %v, want 0.72", cfg.Threshold())
	}
	if cfg.Epsilon() != 0.05 {
		t.Errorf("Epsilon() = %v, want 0.05", cfg.Epsilon())
	}
	if got := cfg.RetryPolicy().MaxRetries; got != 3 {
		t.Errorf("RetryPolicy().MaxRetries = %d, want 3", got)
	}

	cfg.MaxRetries = 7
	if got := cfg.RetryPolicy().MaxRetries; got != 7 {
		t.Errorf("RetryPolicy().MaxRetries = %d, want 7", got)
	}
}

func TestDefaultPathEnvOverride(t *testing.T) {
	custom := filepath.Join(t.TempDir(), "anchor.toml")
	t.Setenv(EnvConfigPath, custom)
	if got := DefaultPath(); got != custom {
		t.Errorf("DefaultPath() = %q, want %q", got, custom)
	}
}
