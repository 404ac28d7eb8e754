// Package dialogue implements the scripted conversation engine: a stage
// graph, per-session state, and a controller that advances sessions by
// classifying user input, generating stage-framed responses and running
// tool directives found in model output.
package dialogue

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DynamicNext marks a stage whose successor is always chosen by the
// classifier. When classification fails on such a stage the controller
// falls back to FallbackStage.
const DynamicNext = "dynamic"

// FallbackStage absorbs every unresolvable transition.
const FallbackStage = "assessment"

// Stage is one node of the conversation graph.
type Stage struct {
	// ID names the stage.
	ID string `yaml:"id"`

	// Prompt is the template response for the stage. It may carry
	// {summary} or {strategies} placeholders, filled when the stage is
	// rendered without a model.
	Prompt string `yaml:"prompt"`

	// Next is the static successor, or DynamicNext.
	Next string `yaml:"next"`

	// Tools lists tool names the model may invoke from this stage.
	Tools []string `yaml:"tools,omitempty"`

	// Knowledge lists named knowledge sources to consult. Empty means
	// the whole federation.
	Knowledge []string `yaml:"knowledge,omitempty"`
}

// Graph is a validated stage graph. The first stage in declaration
// order is the entry point.
type Graph struct {
	stages map[string]Stage
	order  []string
}

// NewGraph validates the stages and builds a graph. Every stage needs
// an ID and a prompt, IDs must be unique, and every Next must name an
// existing stage or DynamicNext.
func NewGraph(stages []Stage) (*Graph, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("graph needs at least one stage")
	}

	g := &Graph{stages: make(map[string]Stage, len(stages))}
	for _, stage := range stages {
		if stage.ID == "" {
			return nil, fmt.Errorf("stage with empty id")
		}
		if stage.Prompt == "" {
			return nil, fmt.Errorf("stage %q has no prompt", stage.ID)
		}
		if _, dup := g.stages[stage.ID]; dup {
			return nil, fmt.Errorf("duplicate stage id %q", stage.ID)
		}
		g.stages[stage.ID] = stage
		g.order = append(g.order, stage.ID)
	}

	for _, stage := range stages {
		if stage.Next == DynamicNext {
			continue
		}
		if _, ok := g.stages[stage.Next]; !ok {
			return nil, fmt.Errorf("stage %q points to unknown stage %q", stage.ID, stage.Next)
		}
	}
	return g, nil
}

// LoadGraph reads a stage graph from a YAML file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}

	var doc struct {
		Stages []Stage `yaml:"stages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	return NewGraph(doc.Stages)
}

// Start returns the entry stage ID.
func (g *Graph) Start() string {
	return g.order[0]
}

// Names returns stage IDs in declaration order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Has reports whether the stage exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.stages[id]
	return ok
}

// Lookup returns the stage or an UnknownStageError.
func (g *Graph) Lookup(id string) (Stage, error) {
	stage, ok := g.stages[id]
	if !ok {
		return Stage{}, &UnknownStageError{Stage: id}
	}
	return stage, nil
}

// DefaultGraph returns the built-in counseling flow.
func DefaultGraph() *Graph {
	g, err := NewGraph([]Stage{
		{
			ID:     "greeting",
			Prompt: "Hello! I'm here to help you today. How are you feeling?",
			Next:   "assessment",
		},
		{
			ID:     "assessment",
			Prompt: "I understand. Could you tell me more about what's going on?",
			Next:   "reflection",
		},
		{
			ID:     "reflection",
			Prompt: "Thank you for sharing. It sounds like you're experiencing {summary}. Is that right?",
			Next:   "exploration",
		},
		{
			ID:     "exploration",
			Prompt: "Let's explore this further. What do you think might be contributing to these feelings?",
			Next:   "support",
		},
		{
			ID:        "support",
			Prompt:    "Here are some strategies that might help: {strategies}. Would you like to discuss any of these in more detail?",
			Next:      "closing",
			Knowledge: []string{"coping_techniques", "self_help_resources"},
		},
		{
			ID:     "closing",
			Prompt: "I hope our conversation has been helpful. Is there anything else you'd like to talk about?",
			Next:   "assessment",
		},
		{
			ID:     "tool_use",
			Prompt: "I can help you with several specialized functions. Just let me know what you need assistance with.",
			Next:   DynamicNext,
			Tools:  []string{"symptom_search", "assessment_tool", "coping_strategies"},
		},
	})
	if err != nil {
		panic(err)
	}
	return g
}
