// Package tools implements the counselor's tool registry. Tools are
// invoked from structured directives embedded in model output; every
// execution resolves to a Result so a broken invocation degrades the
// conversation instead of aborting it.
package tools

import (
	"context"
	"fmt"

	"github.com/mindio-dev/mindio/pkg/knowledge"
)

// Invocation is a tool directive parsed out of model output.
type Invocation struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
}

// Result is the outcome of a tool execution. Status is "success" or
// "error"; Result carries the tool-specific payload and is nil on
// error.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  any    `json:"result"`
}

// Handler executes one tool. A returned error is folded into an
// error-status Result by the registry.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Definition describes a tool for the model-facing catalogue.
type Definition struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  map[string]Parameter `json:"parameters"`
}

// Parameter describes one tool parameter.
type Parameter struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum,omitempty"`
}

// Searcher is the slice of the knowledge layer the symptom search tool
// needs. *knowledge.Federator satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []knowledge.Result
}

// Registry maps tool names to handlers and their definitions.
type Registry struct {
	handlers    map[string]Handler
	definitions map[string]Definition
}

// NewRegistry creates a registry with the built-in tools. A nil
// searcher is valid; symptom search then reports no results.
func NewRegistry(searcher Searcher) *Registry {
	r := &Registry{
		handlers:    make(map[string]Handler),
		definitions: make(map[string]Definition),
	}

	r.Register(Definition{
		Name:        "symptom_search",
		Description: "Search for information about mental health symptoms in the knowledge database",
		Parameters: map[string]Parameter{
			"symptom": {
				Type:        "string",
				Description: "The mental health symptom to search for",
			},
		},
	}, symptomSearchHandler(searcher))

	r.Register(Definition{
		Name:        "assessment_tool",
		Description: "Provide a standardized psychological assessment based on specific criteria",
		Parameters: map[string]Parameter{
			"assessment_type": {
				Type:        "string",
				Description: "Type of assessment to run (anxiety, depression, stress)",
				Enum:        []string{"anxiety", "depression", "stress"},
			},
		},
	}, assessmentHandler)

	r.Register(Definition{
		Name:        "coping_strategies",
		Description: "Suggest evidence-based coping strategies for specific challenges",
		Parameters: map[string]Parameter{
			"challenge": {
				Type:        "string",
				Description: "The type of challenge the user is facing",
			},
		},
	}, copingStrategiesHandler)

	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(def Definition, handler Handler) {
	r.definitions[def.Name] = def
	r.handlers[def.Name] = handler
}

// Catalog returns definitions for the named tools, preserving order
// and skipping unknown names.
func (r *Registry) Catalog(names []string) []Definition {
	defs := make([]Definition, 0, len(names))
	for _, name := range names {
		if def, ok := r.definitions[name]; ok {
			defs = append(defs, def)
		}
	}
	return defs
}

// Execute runs the named tool. It never returns an error: unknown
// tools, handler failures and handler panics all map onto an
// error-status Result.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (result Result) {
	handler, ok := r.handlers[name]
	if !ok {
		return Result{
			Status:  "error",
			Message: fmt.Sprintf("Tool '%s' not found", name),
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = Result{
				Status:  "error",
				Message: fmt.Sprintf("Error executing tool: %v", rec),
			}
		}
	}()

	payload, err := handler(ctx, params)
	if err != nil {
		return Result{
			Status:  "error",
			Message: fmt.Sprintf("Error executing tool: %v", err),
		}
	}
	return Result{
		Status:  "success",
		Message: "Tool executed successfully",
		Result:  payload,
	}
}

// stringParam extracts a required string parameter.
func stringParam(params map[string]any, key string) (string, error) {
	value, ok := params[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	return s, nil
}

// symptomSearchHandler queries the knowledge layer for symptom
// information.
func symptomSearchHandler(searcher Searcher) Handler {
	return func(ctx context.Context, params map[string]any) (any, error) {
		symptom, err := stringParam(params, "symptom")
		if err != nil {
			return nil, err
		}

		if searcher != nil {
			results := searcher.Search(ctx, symptom, 2)
			if len(results) > 0 {
				information := make([]string, len(results))
				for i, res := range results {
					information[i] = res.Document.Content
				}
				return map[string]any{
					"found":       true,
					"information": information,
					"count":       len(information),
				}, nil
			}
		}

		return map[string]any{
			"found":       false,
			"information": []string{"No specific information found for this symptom."},
			"count":       0,
		}, nil
	}
}
