package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfig(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Fatalf("expected default log level warn, got %q", cfg.LogLevel)
	}
	if cfg.CacheTTLMinutes != 10 {
		t.Fatalf("expected default TTL 10, got %d", cfg.CacheTTLMinutes)
	}
	if cfg.Thresholds.Keyword != DefaultKeywordThreshold {
		t.Fatalf("expected default keyword threshold, got %v", cfg.Thresholds.Keyword)
	}
	if cfg.Audit.Enabled {
		t.Fatal("expected auditing disabled by default")
	}
}

func TestLoadServerConfig_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`log_level: debug
cache_ttl_minutes: 5
fuzzy_thresholds:
  keyword: 0.5
recommend:
  high_cutoff: 0.9
audit:
  enabled: true
  path: custom_audit.jsonl
`)
	if err := os.WriteFile(filepath.Join(dir, ".erpmcp.yaml"), content, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadServerConfig(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Fatalf("expected debug, got %q", cfg.LogLevel)
	}
	if cfg.CacheTTLMinutes != 5 {
		t.Fatalf("expected 5, got %d", cfg.CacheTTLMinutes)
	}
	if cfg.Thresholds.Keyword != 0.5 {
		t.Fatalf("expected 0.5, got %v", cfg.Thresholds.Keyword)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Thresholds.ErrorMessage != DefaultErrorMessageThreshold {
		t.Fatalf("expected default error threshold, got %v", cfg.Thresholds.ErrorMessage)
	}
	if cfg.Recommend.HighCutoff != 0.9 {
		t.Fatalf("expected 0.9, got %v", cfg.Recommend.HighCutoff)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Path != "custom_audit.jsonl" {
		t.Fatalf("unexpected audit config: %+v", cfg.Audit)
	}
}

func TestLoadServerConfig_RejectsOutOfRangeThreshold(t *testing.T) {
	dir := t.TempDir()
	content := []byte("fuzzy_thresholds:\n  keyword: 1.5\n")
	if err := os.WriteFile(filepath.Join(dir, ".erpmcp.yaml"), content, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadServerConfig(dir); err == nil {
		t.Fatal("expected error for threshold outside (0, 1]")
	}
}

func TestLoadServerConfig_RejectsInvertedCutoffs(t *testing.T) {
	dir := t.TempDir()
	content := []byte("recommend:\n  high_cutoff: 0.3\n  medium_cutoff: 0.6\n")
	if err := os.WriteFile(filepath.Join(dir, ".erpmcp.yaml"), content, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadServerConfig(dir); err == nil {
		t.Fatal("expected error when medium cutoff exceeds high cutoff")
	}
}

func TestLoadServerConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".erpmcp.yaml"), []byte("log_level: [broken"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := LoadServerConfig(dir); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
