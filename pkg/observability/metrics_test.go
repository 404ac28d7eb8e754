package observability_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindio-dev/mindio/pkg/knowledge"
	"github.com/mindio-dev/mindio/pkg/observability"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (fixedEmbedder) ModelName() string { return "fixed" }
func (fixedEmbedder) Close() error      { return nil }

func searchCount(t *testing.T, mode string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "mindio_knowledge_searches_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "mode" && label.GetValue() == mode {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSearchRecordsMode(t *testing.T) {
	observability.InitMetrics()
	ctx := context.Background()

	tests := []struct {
		mode  string
		store *knowledge.Store
	}{
		{mode: "keyword", store: knowledge.NewStore(nil)},
		{mode: "embedding", store: knowledge.NewStore(fixedEmbedder{})},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			require.NoError(t, tt.store.Add(ctx, knowledge.Document{Content: "breathing exercises calm the body"}))

			before := searchCount(t, tt.mode)
			tt.store.Search(ctx, "breathing", 1)
			assert.Equal(t, before+1, searchCount(t, tt.mode))
		})
	}
}
