// Package config loads server configuration from an optional YAML file with
// environment-variable API keys and sane defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LLM provider names accepted in configuration.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// Config holds the full server configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`

	// DatabasePath is the SQLite file path for the analysis store.
	// Empty selects the in-memory store.
	DatabasePath string `yaml:"database_path"`

	// Provider selects the completion backend: gemini, openai, or none.
	Provider string `yaml:"provider"`

	// GeminiAPIKey and OpenAIAPIKey authenticate the completion backends.
	// Normally supplied via GEMINI_API_KEY / OPENAI_API_KEY rather than the
	// config file.
	GeminiAPIKey string `yaml:"gemini_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`

	// ErrorMetricsCap and FrechetCap override the engine's downsampling
	// caps. Zero keeps the defaults.
	ErrorMetricsCap int `yaml:"error_metrics_cap"`
	FrechetCap      int `yaml:"frechet_cap"`

	// SessionCapacity bounds the chat conversation store.
	SessionCapacity int `yaml:"session_capacity"`

	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// TraceFile enables JSONL request tracing when non-empty.
	TraceFile string `yaml:"trace_file"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Addr:           ":8080",
		Provider:       ProviderGemini,
		MetricsEnabled: true,
	}
}

// Load reads configuration from path (optional; empty path keeps defaults),
// then overlays API keys from the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAIAPIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks provider selection.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderNone, "":
		return nil
	default:
		return fmt.Errorf("unknown provider %q (expected gemini, openai, or none)", c.Provider)
	}
}
