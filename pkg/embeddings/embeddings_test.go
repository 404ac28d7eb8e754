package embeddings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "abacus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported embedding provider")
}

func TestNewRequiresAPIKey(t *testing.T) {
	tests := []string{"openai", "genai"}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", "")
			t.Setenv("GOOGLE_API_KEY", "")

			_, err := New(Config{Provider: name})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "API key is required")
		})
	}
}

func TestNewOpenAIDefaults(t *testing.T) {
	svc, err := New(Config{Provider: "openai", APIKey: "test-key"})
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	assert.Equal(t, "text-embedding-3-small", svc.ModelName())
}
