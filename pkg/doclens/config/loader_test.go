package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doclens.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoaderNoPath(t *testing.T) {
	l := Loader{}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Sentiment.Positive) == 0 {
		t.Fatal("expected default lexicon")
	}
}

func TestLoaderPartialOverride(t *testing.T) {
	path := writeConfig(t, `
risk:
  categories:
    security:
      keywords: ["breach", "exploit"]
      weight: 5
run:
  timeout_seconds: 10
`)
	l := Loader{Path: path}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Risk.Categories) != 1 || cfg.Risk.Categories["security"].Weight != 5 {
		t.Fatalf("override lost: %v", cfg.Risk.Categories)
	}
	if cfg.Run.TimeoutSeconds != 10 {
		t.Fatalf("expected timeout 10, got %d", cfg.Run.TimeoutSeconds)
	}
	// Untouched sections keep their defaults.
	if len(cfg.Sentiment.Positive) == 0 {
		t.Fatal("sentiment lexicon should fall back to defaults")
	}
	if cfg.Run.MaxConcurrentRuns != Default().Run.MaxConcurrentRuns {
		t.Fatalf("expected default concurrency, got %d", cfg.Run.MaxConcurrentRuns)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l := Loader{Path: filepath.Join(t.TempDir(), "absent.yaml")}
	if _, err := l.Load(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoaderMalformedYAML(t *testing.T) {
	path := writeConfig(t, "risk: [not a map")
	l := Loader{Path: path}
	if _, err := l.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoaderInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
sentiment:
  head_fraction: 2.0
`)
	l := Loader{Path: path}
	if _, err := l.Load(); err == nil {
		t.Fatal("expected validation error")
	}
}
