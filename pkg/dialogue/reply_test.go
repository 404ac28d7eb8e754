package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind ReplyKind
		wantTool string
	}{
		{
			name:     "plain text",
			raw:      "That sounds really difficult.",
			wantKind: ReplyText,
		},
		{
			name:     "tool directive",
			raw:      `{"tool": "coping_strategies", "parameters": {"challenge": "stress"}}`,
			wantKind: ReplyToolCall,
			wantTool: "coping_strategies",
		},
		{
			name:     "directive with surrounding whitespace",
			raw:      "\n  {\"tool\": \"symptom_search\", \"parameters\": {\"symptom\": \"insomnia\"}}  ",
			wantKind: ReplyToolCall,
			wantTool: "symptom_search",
		},
		{
			name:     "broken json that mentions tool",
			raw:      `{"tool": "assessment_tool", "parameters": `,
			wantKind: ReplyMalformed,
		},
		{
			name:     "json without tool field",
			raw:      `{"tools": ["a", "b"]}`,
			wantKind: ReplyMalformed,
		},
		{
			name:     "braces without tool mention",
			raw:      `{"note": "just structured text"}`,
			wantKind: ReplyText,
		},
		{
			name:     "text mentioning tools",
			raw:      "There are tools that can help with this.",
			wantKind: ReplyText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := ParseReply(tt.raw)
			assert.Equal(t, tt.wantKind, reply.Kind)
			if tt.wantTool != "" {
				assert.Equal(t, tt.wantTool, reply.Invocation.Tool)
				assert.NotNil(t, reply.Invocation.Parameters)
			}
		})
	}
}

func TestParseReplyMissingParametersDefaultsEmpty(t *testing.T) {
	reply := ParseReply(`{"tool": "coping_strategies"}`)
	assert.Equal(t, ReplyToolCall, reply.Kind)
	assert.NotNil(t, reply.Invocation.Parameters)
	assert.Empty(t, reply.Invocation.Parameters)
}
