package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindio-dev/mindio/pkg/dialogue"
)

func TestFileStoreSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	transcript := Transcript{
		Conversation: []dialogue.Turn{
			{Role: "assistant", Content: "Hello! How are you feeling?"},
			{Role: "user", Content: "a bit low today"},
		},
		Metadata: map[string]string{"stage": "assessment"},
	}

	name, err := store.Save(ctx, transcript)
	require.NoError(t, err)
	assert.Contains(t, name, "conversation_")

	loaded, err := store.LoadByIndex(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, transcript.Conversation, loaded.Conversation)
	assert.Equal(t, "assessment", loaded.Metadata["stage"])
}

func TestFileStoreListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	old := filepath.Join(dir, "conversation_20240101_080000.json")
	newer := filepath.Join(dir, "conversation_20240201_080000.json")
	require.NoError(t, os.WriteFile(old, []byte(`{"conversation":[]}`), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte(`{"conversation":[]}`), 0o644))

	base := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, base, base))
	require.NoError(t, os.Chtimes(newer, base.Add(time.Minute), base.Add(time.Minute)))

	// Files that don't look like transcripts are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	names, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, "conversation_20240201_080000.json", names[0])
	assert.Equal(t, "conversation_20240101_080000.json", names[1])
}

func TestFileStoreLoadByIndexOutOfRange(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.LoadByIndex(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.LoadByIndex(ctx, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
