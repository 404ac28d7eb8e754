package dialogue

import (
	"time"

	"github.com/google/uuid"

	"github.com/mindio-dev/mindio/pkg/tools"
)

// Turn is one entry of the conversation history. Role is "user",
// "assistant" or "system"; system turns record tool execution results.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AssessmentState tracks an in-flight questionnaire. It survives
// across turns until the closing analysis is detected.
type AssessmentState struct {
	// Type is the assessment type the user asked for.
	Type string `json:"type"`

	// Invocation is the directive that started the assessment.
	Invocation tools.Invocation `json:"invocation"`
}

// Session is the per-conversation state the controller mutates.
type Session struct {
	ID         string           `json:"id"`
	Stage      string           `json:"stage"`
	StartedAt  time.Time        `json:"started_at"`
	Turns      []Turn           `json:"turns"`
	Assessment *AssessmentState `json:"assessment,omitempty"`
}

// NewSession creates a session positioned at the given stage.
func NewSession(stage string) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Stage:     stage,
		StartedAt: time.Now().UTC(),
	}
}

// Append records a turn.
func (s *Session) Append(role, content string) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
}

// Window returns a copy of the most recent n turns.
func (s *Session) Window(n int) []Turn {
	if n <= 0 || len(s.Turns) == 0 {
		return nil
	}
	start := len(s.Turns) - n
	if start < 0 {
		start = 0
	}
	out := make([]Turn, len(s.Turns)-start)
	copy(out, s.Turns[start:])
	return out
}
