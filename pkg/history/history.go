// Package history persists conversation transcripts so a session can
// be resumed later. Transcripts live either on disk as JSON files or
// in Redis for shared deployments; both backends list newest first and
// load by 1-based index.
package history

import (
	"context"
	"errors"

	"github.com/mindio-dev/mindio/pkg/dialogue"
)

// ErrNotFound is returned when an index or name matches no saved
// transcript.
var ErrNotFound = errors.New("conversation not found")

// Transcript is one saved conversation.
type Transcript struct {
	Conversation []dialogue.Turn   `json:"conversation"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Store persists and recalls transcripts.
type Store interface {
	// Save writes the transcript and returns its name.
	Save(ctx context.Context, transcript Transcript) (string, error)

	// List returns saved transcript names, newest first.
	List(ctx context.Context) ([]string, error)

	// LoadByIndex loads the transcript at the given 1-based position
	// in List order.
	LoadByIndex(ctx context.Context, index int) (*Transcript, error)
}

// timestampLayout names transcripts by wall clock second.
const timestampLayout = "20060102_150405"
