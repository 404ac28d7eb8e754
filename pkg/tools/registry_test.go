package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindio-dev/mindio/pkg/knowledge"
)

type stubSearcher struct {
	results []knowledge.Result
}

func (s *stubSearcher) Search(_ context.Context, _ string, topK int) []knowledge.Result {
	if len(s.results) > topK {
		return s.results[:topK]
	}
	return s.results
}

func TestExecuteUnknownTool(t *testing.T) {
	r := NewRegistry(nil)

	result := r.Execute(context.Background(), "fortune_teller", nil)
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Tool 'fortune_teller' not found", result.Message)
	assert.Nil(t, result.Result)
}

func TestExecuteMissingParameter(t *testing.T) {
	r := NewRegistry(nil)

	result := r.Execute(context.Background(), "assessment_tool", map[string]any{})
	assert.Equal(t, "error", result.Status)
	assert.Contains(t, result.Message, "Error executing tool")
	assert.Nil(t, result.Result)
}

func TestExecuteRecoversFromPanic(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Definition{Name: "boom"}, func(context.Context, map[string]any) (any, error) {
		panic("handler exploded")
	})

	result := r.Execute(context.Background(), "boom", nil)
	assert.Equal(t, "error", result.Status)
	assert.Contains(t, result.Message, "handler exploded")
}

func TestExecuteHandlerError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(Definition{Name: "flaky"}, func(context.Context, map[string]any) (any, error) {
		return nil, errors.New("backend timeout")
	})

	result := r.Execute(context.Background(), "flaky", nil)
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, "Error executing tool: backend timeout", result.Message)
}

func TestAssessmentToolKnownTypes(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		assessmentType string
		wantName       string
		wantQuestions  int
	}{
		{"anxiety", "GAD-7 (Generalized Anxiety Disorder Assessment)", 7},
		{"depression", "PHQ-9 (Patient Health Questionnaire)", 9},
		{"stress", "PSS-10 (Perceived Stress Scale)", 10},
	}

	for _, tt := range tests {
		t.Run(tt.assessmentType, func(t *testing.T) {
			result := r.Execute(context.Background(), "assessment_tool", map[string]any{
				"assessment_type": tt.assessmentType,
			})
			require.Equal(t, "success", result.Status)

			payload, ok := result.Result.(AssessmentResult)
			require.True(t, ok)
			assert.Equal(t, tt.wantName, payload.AssessmentInfo.Name)
			assert.Len(t, payload.AssessmentInfo.Questions, tt.wantQuestions)
			assert.Contains(t, payload.Guidance, "one question at a time")
		})
	}
}

func TestAssessmentToolUnknownType(t *testing.T) {
	r := NewRegistry(nil)

	result := r.Execute(context.Background(), "assessment_tool", map[string]any{
		"assessment_type": "sleep",
	})
	require.Equal(t, "success", result.Status)

	// Unknown types never carry an assessment_info block.
	_, isAssessment := result.Result.(AssessmentResult)
	assert.False(t, isAssessment)

	payload, ok := result.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Unknown assessment", payload["name"])
}

func TestCopingStrategies(t *testing.T) {
	r := NewRegistry(nil)

	tests := []struct {
		name      string
		challenge string
		wantFirst string
		wantCount int
	}{
		{name: "direct match", challenge: "anxiety", wantFirst: "Deep Breathing", wantCount: 3},
		{name: "substring match", challenge: "work stress lately", wantFirst: "Mindfulness Meditation", wantCount: 3},
		{name: "multiple matches", challenge: "anxiety and depression", wantFirst: "Deep Breathing", wantCount: 6},
		{name: "no match falls back", challenge: "loneliness", wantFirst: "Self-Care", wantCount: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.Execute(context.Background(), "coping_strategies", map[string]any{
				"challenge": tt.challenge,
			})
			require.Equal(t, "success", result.Status)

			payload, ok := result.Result.(CopingResult)
			require.True(t, ok)
			assert.Equal(t, tt.challenge, payload.Challenge)
			require.Len(t, payload.Strategies, tt.wantCount)
			assert.Equal(t, tt.wantFirst, payload.Strategies[0].Name)
		})
	}
}

func TestSymptomSearch(t *testing.T) {
	t.Run("with results", func(t *testing.T) {
		searcher := &stubSearcher{results: []knowledge.Result{
			{Document: knowledge.Document{Content: "restlessness is common with anxiety"}, Score: 0.9},
			{Document: knowledge.Document{Content: "grounding can interrupt spirals"}, Score: 0.5},
			{Document: knowledge.Document{Content: "third doc"}, Score: 0.1},
		}}
		r := NewRegistry(searcher)

		result := r.Execute(context.Background(), "symptom_search", map[string]any{
			"symptom": "restlessness",
		})
		require.Equal(t, "success", result.Status)

		payload, ok := result.Result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, payload["found"])
		assert.Equal(t, 2, payload["count"])
	})

	t.Run("no searcher", func(t *testing.T) {
		r := NewRegistry(nil)

		result := r.Execute(context.Background(), "symptom_search", map[string]any{
			"symptom": "restlessness",
		})
		require.Equal(t, "success", result.Status)

		payload, ok := result.Result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, payload["found"])
		assert.Equal(t, 0, payload["count"])
	})
}

func TestCatalogPreservesOrderAndSkipsUnknown(t *testing.T) {
	r := NewRegistry(nil)

	defs := r.Catalog([]string{"coping_strategies", "ghost_tool", "symptom_search"})
	require.Len(t, defs, 2)
	assert.Equal(t, "coping_strategies", defs[0].Name)
	assert.Equal(t, "symptom_search", defs[1].Name)
}
