package knowledge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseDocumentsFlatArray(t *testing.T) {
	data := `[
		{"content": "stay hydrated", "metadata": {"topic": "self-care"}},
		{"content": ""},
		{"content": "take walks"}
	]`

	docs, err := ParseDocuments("tips", []byte(data))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "stay hydrated", docs[0].Content)
	assert.Equal(t, "self-care", docs[0].Metadata["topic"])
	assert.Equal(t, "tips", docs[0].Metadata["source"])
	assert.Equal(t, "tips", docs[1].Metadata["source"])
}

func TestParseDocumentsGroupedLayout(t *testing.T) {
	data := `{
		"symptoms": [
			{"name": "restlessness", "severity": "mild"},
			"not an object"
		],
		"treatments": [
			{"name": "therapy"}
		]
	}`

	docs, err := ParseDocuments("anxiety", []byte(data))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	categories := map[string]bool{}
	for _, doc := range docs {
		assert.Equal(t, "anxiety", doc.Metadata["source"])
		assert.Contains(t, doc.Content, "name")
		categories[doc.Metadata["category"]] = true
	}
	assert.True(t, categories["symptoms"])
	assert.True(t, categories["treatments"])
}

func TestParseDocumentsGroupedLayoutKeepsFileOrder(t *testing.T) {
	data := `{
		"h": [{"n": 1}], "g": [{"n": 2}], "f": [{"n": 3}], "e": [{"n": 4}],
		"d": [{"n": 5}], "c": [{"n": 6}], "b": [{"n": 7}], "a": [{"n": 8}]
	}`
	want := []string{"h", "g", "f", "e", "d", "c", "b", "a"}

	for i := 0; i < 50; i++ {
		docs, err := ParseDocuments("ordered", []byte(data))
		require.NoError(t, err)
		require.Len(t, docs, len(want))
		for j, doc := range docs {
			assert.Equal(t, want[j], doc.Metadata["category"])
		}
	}
}

func TestParseDocumentsRejectsUnknownLayout(t *testing.T) {
	_, err := ParseDocuments("bad", []byte(`"just a string"`))
	require.Error(t, err)
}

func TestFederatorSkipsBrokenSources(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.json", `[{"content": "breathing helps"}]`)

	f := NewFederator(context.Background(), nil, []SourceConfig{
		{Name: "good", Path: good},
		{Name: "missing", Path: filepath.Join(dir, "nope.json")},
	}, zap.NewNop())

	assert.Equal(t, []string{"good"}, f.Sources())
}

func TestFederatorSearchMergesSources(t *testing.T) {
	dir := t.TempDir()
	sleep := writeSource(t, dir, "sleep.json", `[
		{"content": "sleep schedules reduce insomnia"},
		{"content": "avoid caffeine before sleep"}
	]`)
	panicSrc := writeSource(t, dir, "panic.json", `[
		{"content": "panic passes within minutes"}
	]`)

	ctx := context.Background()
	f := NewFederator(ctx, nil, []SourceConfig{
		{Name: "sleep", Path: sleep},
		{Name: "panic", Path: panicSrc},
	}, zap.NewNop())

	require.NoError(t, f.AddDocument(ctx, Document{Content: "sleep journaling every night"}))

	results := f.Search(ctx, "sleep insomnia", 3)
	require.Len(t, results, 3)
	// The named sleep store contributes at most one result, so its
	// second document never outranks the merge cap.
	assert.Equal(t, "sleep schedules reduce insomnia", results[0].Document.Content)
}

func TestFederatorSearchInIgnoresUnknownNames(t *testing.T) {
	dir := t.TempDir()
	coping := writeSource(t, dir, "coping.json", `[{"content": "grounding with five senses"}]`)

	ctx := context.Background()
	f := NewFederator(ctx, nil, []SourceConfig{
		{Name: "coping", Path: coping},
	}, zap.NewNop())

	results := f.SearchIn(ctx, "grounding", []string{"coping", "ghost"}, 3)
	require.Len(t, results, 1)
	assert.Equal(t, "grounding with five senses", results[0].Document.Content)
}
