// Package provider defines the generation service consumed by the dialogue
// controller and its concrete backends. The controller treats a Provider as
// an opaque request/response function; every failure it returns is absorbed
// at the call site and degraded to canned text.
package provider

import (
	"context"
	"fmt"
	"sync"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`    // "system", "user", "assistant"
	Content string `json:"content"` // The message content
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	// Messages is the conversation context, system prompt first.
	Messages []Message `json:"messages"`

	// Model is the model to use (empty selects the provider default).
	Model string `json:"model,omitempty"`

	// Temperature controls randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	// Content is the generated text.
	Content string `json:"content"`

	// FinishReason explains why generation stopped.
	FinishReason string `json:"finish_reason"`

	// Usage contains token usage information.
	Usage Usage `json:"usage"`
}

// Usage represents token usage information.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider defines the interface for generation backends.
type Provider interface {
	// CreateCompletion creates a completion.
	CreateCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g. "openai", "gemini").
	Name() string
}

// Config selects and configures a generation backend.
type Config struct {
	// Provider selects the backend: "openai" or "gemini".
	Provider string `yaml:"provider"`

	// Model is the chat model name.
	Model string `yaml:"model"`

	// APIKey authenticates against the provider; falls back to the
	// provider's conventional environment variable when empty.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the endpoint for OpenAI-compatible services
	// (DeepSeek, DashScope, Ollama's OpenAI shim).
	BaseURL string `yaml:"base_url"`
}

// Factory creates a Provider from a Config.
type Factory func(cfg Config) (Provider, error)

var (
	factoryMu sync.RWMutex
	factories = make(map[string]Factory)
)

// RegisterFactory makes a provider factory available under the given name.
func RegisterFactory(name string, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[name] = factory
}

// New creates a provider for the configured backend.
func New(cfg Config) (Provider, error) {
	factoryMu.RLock()
	factory, ok := factories[cfg.Provider]
	factoryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported provider: %q", cfg.Provider)
	}
	return factory(cfg)
}
