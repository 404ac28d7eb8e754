package dialogue

import (
	"encoding/json"
	"strings"

	"github.com/mindio-dev/mindio/pkg/tools"
)

// ReplyKind classifies parsed model output.
type ReplyKind int

const (
	// ReplyText is a plain conversational response.
	ReplyText ReplyKind = iota

	// ReplyToolCall is a structured tool directive.
	ReplyToolCall

	// ReplyMalformed looked like a tool directive but did not decode.
	// Callers treat it as text.
	ReplyMalformed
)

// Reply is model output split into text or a tool directive.
type Reply struct {
	Kind       ReplyKind
	Text       string
	Invocation tools.Invocation
}

// ParseReply detects tool directives in model output. A directive must
// start with '{' after trimming and mention "tool" somewhere; anything
// that then fails to decode as an invocation comes back as malformed
// text rather than an error.
func ParseReply(raw string) Reply {
	text := strings.TrimSpace(raw)

	if !strings.HasPrefix(text, "{") || !strings.Contains(text, "tool") {
		return Reply{Kind: ReplyText, Text: text}
	}

	var inv tools.Invocation
	if err := json.Unmarshal([]byte(text), &inv); err != nil || inv.Tool == "" {
		return Reply{Kind: ReplyMalformed, Text: text}
	}
	if inv.Parameters == nil {
		inv.Parameters = map[string]any{}
	}
	return Reply{Kind: ReplyToolCall, Text: text, Invocation: inv}
}
