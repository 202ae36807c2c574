// Package config handles reading and writing .sift/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .sift/config.yaml.
type Config struct {
	Version      int           `yaml:"version"`
	AnalysesDir  string        `yaml:"analyses_dir"`
	DatabaseFile string        `yaml:"database_file"`
	AI           AIConfig      `yaml:"ai"`
	Cleanup      CleanupConfig `yaml:"cleanup"`
}

// AIConfig holds settings for the text-generation backend.
type AIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// CleanupConfig controls pruning of stale session directories.
type CleanupConfig struct {
	MaxAgeDays int `yaml:"max_age_days"`
}

// EnvAnalysesDir overrides Config.AnalysesDir when set.
const EnvAnalysesDir = "SIFT_ANALYSES_DIR"

const configDir = ".sift"
const configFile = "config.yaml"

// ReadConfig reads .sift/config.yaml from the given directory.
// dir is the working root (not .sift/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .sift/config.yaml in the given directory.
// Creates the .sift/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Load reads the config from dir, falling back to defaults when no file
// exists, and applies the SIFT_ANALYSES_DIR environment override.
func Load(dir string) *Config {
	cfg, err := ReadConfig(dir)
	if err != nil {
		cfg = DefaultConfig()
	}

	if env := os.Getenv(EnvAnalysesDir); env != "" {
		cfg.AnalysesDir = env
	}

	return cfg
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		AnalysesDir:  "analyses_data",
		DatabaseFile: "conversation_memory.db",
		AI: AIConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "google/gemini-2.0-flash-exp:free",
			MaxTokens:      4000,
			Temperature:    0.7,
			TimeoutSeconds: 120,
		},
		Cleanup: CleanupConfig{
			MaxAgeDays: 30,
		},
	}
}
