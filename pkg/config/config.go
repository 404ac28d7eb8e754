// Package config loads the application configuration from YAML with
// environment fallbacks for credentials.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mindio-dev/mindio/internal/llm/provider"
	"github.com/mindio-dev/mindio/pkg/embeddings"
	"github.com/mindio-dev/mindio/pkg/history"
	"github.com/mindio-dev/mindio/pkg/knowledge"
)

// Config represents the application configuration
type Config struct {
	// LogLevel is "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level"`

	// Model configures the generation backend.
	Model provider.Config `yaml:"model"`

	// Embeddings configures the embedding backend. An empty provider
	// disables embeddings and retrieval falls back to keyword search.
	Embeddings embeddings.Config `yaml:"embeddings"`

	// Knowledge lists the named knowledge sources to load.
	Knowledge []knowledge.SourceConfig `yaml:"knowledge"`

	// GraphPath points to a YAML stage graph. Empty selects the
	// built-in counseling flow.
	GraphPath string `yaml:"graph_path"`

	// History configures transcript persistence.
	History HistoryConfig `yaml:"history"`

	// RateLimit bounds generation requests per second.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Observability configures metrics and tracing.
	Observability ObservabilityConfig `yaml:"observability"`
}

// HistoryConfig selects the transcript backend.
type HistoryConfig struct {
	// Backend is "file" or "redis".
	Backend string `yaml:"backend"`

	// Dir is the transcript directory for the file backend.
	Dir string `yaml:"dir"`

	// Redis configures the redis backend.
	Redis history.RedisConfig `yaml:"redis"`
}

// RateLimitConfig bounds outbound generation traffic.
type RateLimitConfig struct {
	// RPS is requests per second; 0 disables limiting.
	RPS float64 `yaml:"rps"`

	// Burst is the bucket size (default 1 when RPS is set).
	Burst int `yaml:"burst"`
}

// ObservabilityConfig configures metrics and tracing.
type ObservabilityConfig struct {
	// MetricsPort serves /metrics and /health when non-zero.
	MetricsPort int `yaml:"metrics_port"`

	// Tracing enables stdout span export.
	Tracing bool `yaml:"tracing"`
}

// Default returns a configuration that runs without a config file.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Model: provider.Config{
			Provider: "openai",
		},
		History: HistoryConfig{
			Backend: "file",
			Dir:     "history/data",
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Model.APIKey == "" {
		switch c.Model.Provider {
		case "gemini":
			c.Model.APIKey = os.Getenv("GOOGLE_API_KEY")
		default:
			c.Model.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if c.Embeddings.APIKey == "" {
		switch c.Embeddings.Provider {
		case "genai":
			c.Embeddings.APIKey = os.Getenv("GOOGLE_API_KEY")
		case "openai":
			c.Embeddings.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model provider is required")
	}

	switch c.History.Backend {
	case "", "file":
		if c.History.Dir == "" {
			c.History.Dir = "history/data"
		}
	case "redis":
		if c.History.Redis.Addr == "" {
			return fmt.Errorf("history redis backend requires an address")
		}
	default:
		return fmt.Errorf("unsupported history backend: %q", c.History.Backend)
	}

	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate limit rps cannot be negative")
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 1
	}
	return nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
