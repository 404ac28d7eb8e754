package knowledge

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder maps known texts to fixed vectors and fails on anything
// else, so tests can force the keyword fallback on demand.
type stubEmbedder struct {
	vectors map[string][]float32
	fail    bool
	batches int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.fail {
		return nil, errors.New("embedding backend unavailable")
	}
	vec, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return vec, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	s.batches++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (s *stubEmbedder) ModelName() string { return "stub" }
func (s *stubEmbedder) Close() error      { return nil }

func TestStoreAddRejectsEmptyContent(t *testing.T) {
	store := NewStore(nil)

	err := store.Add(context.Background(), Document{Content: "   "})
	require.ErrorIs(t, err, ErrInvalidDocument)
	assert.Equal(t, 0, store.Len())
}

func TestStoreKeywordSearchWithoutEmbedder(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, store.AddAll(ctx, []Document{
		{Content: "deep breathing calms anxiety"},
		{Content: "regular sleep improves mood"},
		{Content: "anxiety often responds to grounding exercises"},
	}))

	results := store.Search(ctx, "anxiety exercises", 2)
	require.Len(t, results, 2)
	assert.Equal(t, "anxiety often responds to grounding exercises", results[0].Document.Content)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, 0.5, results[1].Score)
}

func TestStoreSearchIncludesZeroScoreDocuments(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, store.AddAll(ctx, []Document{
		{Content: "sleep hygiene"},
		{Content: "panic attacks"},
	}))

	results := store.Search(ctx, "unrelated query terms", 5)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 0.0, r.Score)
	}
	// Ties keep insertion order.
	assert.Equal(t, "sleep hygiene", results[0].Document.Content)
}

func TestStoreVectorSearch(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"calm":    {1, 0},
		"storm":   {0, 1},
		"serene":  {0.9, 0.1},
		"worried": {0.1, 0.9},
	}}

	store := NewStore(embedder)
	ctx := context.Background()

	require.NoError(t, store.AddAll(ctx, []Document{
		{Content: "calm"},
		{Content: "storm"},
		{Content: "worried"},
	}))

	results := store.Search(ctx, "serene", 2)
	require.Len(t, results, 2)
	assert.Equal(t, "calm", results[0].Document.Content)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestStoreRebuildsStaleVectors(t *testing.T) {
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"alpha": {1, 0},
		"beta":  {0, 1},
	}}
	ctx := context.Background()

	store := NewStore(embedder)

	// Fail embedding during Add so the vector cache lags behind.
	embedder.fail = true
	require.NoError(t, store.Add(ctx, Document{Content: "alpha"}))
	require.NoError(t, store.Add(ctx, Document{Content: "beta"}))

	embedder.fail = false
	results := store.Search(ctx, "alpha", 1)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].Document.Content)
	assert.Equal(t, 1, embedder.batches)

	// A second search reuses the rebuilt cache.
	store.Search(ctx, "beta", 1)
	assert.Equal(t, 1, embedder.batches)
}

func TestStoreFallsBackToKeywordsOnEmbedFailure(t *testing.T) {
	embedder := &stubEmbedder{fail: true}
	store := NewStore(embedder)
	ctx := context.Background()

	require.NoError(t, store.AddAll(ctx, []Document{
		{Content: "journaling before bed"},
		{Content: "breathing exercises"},
	}))

	results := store.Search(ctx, "breathing", 1)
	require.Len(t, results, 1)
	assert.Equal(t, "breathing exercises", results[0].Document.Content)
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{1, 2}, b: []float32{1, 2}, want: 1},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 1}, want: 0},
		{name: "zero norm", a: []float32{0, 0}, b: []float32{1, 1}, want: 0},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, cosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}
