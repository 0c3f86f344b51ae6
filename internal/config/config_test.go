package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "8080" {
		t.Fatalf("unexpected api port: %q", cfg.APIPort)
	}
	if cfg.AgentMaxIterations != 8 {
		t.Fatalf("unexpected iteration cap: %d", cfg.AgentMaxIterations)
	}
	if cfg.SearchThreshold != 0.65 {
		t.Fatalf("unexpected search threshold: %v", cfg.SearchThreshold)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("AGENT_MAX_ITERATIONS", "4")
	t.Setenv("SEARCH_THRESHOLD", "0.8")
	t.Setenv("MODEL_ID", "probe-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AgentMaxIterations != 4 {
		t.Fatalf("expected iteration cap 4, got %d", cfg.AgentMaxIterations)
	}
	if cfg.SearchThreshold != 0.8 {
		t.Fatalf("expected threshold 0.8, got %v", cfg.SearchThreshold)
	}
	if cfg.ModelID != "probe-model" {
		t.Fatalf("unexpected model id: %q", cfg.ModelID)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("AGENT_MAX_ITERATIONS", "many")
	t.Setenv("SEARCH_THRESHOLD", "high")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AgentMaxIterations != 8 {
		t.Fatalf("malformed int must fall back, got %d", cfg.AgentMaxIterations)
	}
	if cfg.SearchThreshold != 0.65 {
		t.Fatalf("malformed float must fall back, got %v", cfg.SearchThreshold)
	}
}

func TestLoadFileOverlayWinsOverEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_port: \"9999\"\nagent_max_iterations: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("API_PORT", "7777")
	t.Setenv("MODEL_ID", "env-model")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIPort != "9999" {
		t.Fatalf("file value must win, got %q", cfg.APIPort)
	}
	if cfg.AgentMaxIterations != 5 {
		t.Fatalf("file value must win, got %d", cfg.AgentMaxIterations)
	}
	// Keys absent from the file keep their env values.
	if cfg.ModelID != "env-model" {
		t.Fatalf("env value must survive for absent keys, got %q", cfg.ModelID)
	}
}

func TestLoadMissingFileIsAnError(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
