// Package embeddings provides text embedding services for the knowledge
// layer. A Service turns text into vectors; its absence is a valid
// configuration and switches the knowledge store to keyword search.
package embeddings

import (
	"context"
	"fmt"
	"sync"
)

// Service is the main interface for generating text embeddings.
type Service interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Close releases any resources held by the service.
	Close() error
}

// Config holds configuration for embedding providers.
type Config struct {
	// Provider selects the embedding backend: "openai" or "genai".
	// An empty provider means embeddings are disabled.
	Provider string `yaml:"provider"`

	// Model is the provider-specific embedding model name.
	Model string `yaml:"model"`

	// APIKey authenticates against the provider. Falls back to the
	// provider's conventional environment variable when empty.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the API endpoint for OpenAI-compatible services
	// (DeepSeek, Qwen/DashScope, local servers).
	BaseURL string `yaml:"base_url"`
}

// Factory creates a Service from a Config.
type Factory func(cfg Config) (Service, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a provider factory available under the given name.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// New creates an embedding service for the configured provider.
func New(cfg Config) (Service, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Provider]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported embedding provider: %q", cfg.Provider)
	}
	return factory(cfg)
}
