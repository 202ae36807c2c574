package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.AnalysesDir = "custom_data"
	cfg.AI.Model = "x-ai/grok-4-fast:free"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.AnalysesDir != "custom_data" {
		t.Errorf("AnalysesDir: got %q, want %q", loaded.AnalysesDir, "custom_data")
	}
	if loaded.AI.Model != "x-ai/grok-4-fast:free" {
		t.Errorf("AI.Model: got %q, want %q", loaded.AI.Model, "x-ai/grok-4-fast:free")
	}
	if loaded.Cleanup.MaxAgeDays != 30 {
		t.Errorf("Cleanup.MaxAgeDays: got %d, want 30", loaded.Cleanup.MaxAgeDays)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.AnalysesDir != "analyses_data" {
		t.Errorf("default AnalysesDir: got %q, want %q", cfg.AnalysesDir, "analyses_data")
	}
	if cfg.DatabaseFile != "conversation_memory.db" {
		t.Errorf("default DatabaseFile: got %q, want %q", cfg.DatabaseFile, "conversation_memory.db")
	}
	if cfg.AI.MaxTokens != 4000 {
		t.Errorf("default AI.MaxTokens: got %d, want 4000", cfg.AI.MaxTokens)
	}
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	cfg := Load(t.TempDir())
	if cfg.AnalysesDir != "analyses_data" {
		t.Errorf("expected default AnalysesDir, got %q", cfg.AnalysesDir)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	override := filepath.Join(tmpDir, "elsewhere")
	t.Setenv(EnvAnalysesDir, override)

	cfg := Load(tmpDir)
	if cfg.AnalysesDir != override {
		t.Errorf("AnalysesDir: got %q, want env override %q", cfg.AnalysesDir, override)
	}

	// The override also applies on top of an existing file.
	if err := WriteConfig(tmpDir, DefaultConfig()); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}
	cfg = Load(tmpDir)
	if cfg.AnalysesDir != override {
		t.Errorf("AnalysesDir after file write: got %q, want %q", cfg.AnalysesDir, override)
	}
}

func TestReadConfig_Missing(t *testing.T) {
	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestReadConfig_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, ".sift")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if _, err := ReadConfig(tmpDir); err == nil {
		t.Error("expected error for malformed config file")
	}
}
