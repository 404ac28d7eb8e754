package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mindio-dev/mindio/internal/llm/provider"
	intobs "github.com/mindio-dev/mindio/internal/observability"
	"github.com/mindio-dev/mindio/pkg/knowledge"
	"github.com/mindio-dev/mindio/pkg/observability"
	"github.com/mindio-dev/mindio/pkg/tools"
)

const (
	// classifyTemperature keeps stage selection near-deterministic.
	classifyTemperature = 0.2

	// chatTemperature leaves room for varied phrasing in responses.
	chatTemperature = 0.7

	// retrievalTopK bounds the knowledge snippets folded into a prompt.
	retrievalTopK = 2
)

// Windows bounds how much history each kind of generation request
// sees, counted in turns.
type Windows struct {
	Chat            int
	AssessmentIntro int
	Assessment      int
	ToolFollowup    int
}

// DefaultWindows returns the standard history windows.
func DefaultWindows() Windows {
	return Windows{
		Chat:            8,
		AssessmentIntro: 4,
		Assessment:      12,
		ToolFollowup:    6,
	}
}

// ControllerConfig assembles a Controller.
type ControllerConfig struct {
	// Graph is the stage graph. Required.
	Graph *Graph

	// Provider generates classifications and responses. Required.
	Provider provider.Provider

	// Registry executes tool directives. Defaults to the built-in
	// registry backed by Knowledge.
	Registry *tools.Registry

	// Knowledge is the retrieval federation. Optional; without it
	// prompts carry no retrieved context.
	Knowledge *knowledge.Federator

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Windows defaults to DefaultWindows.
	Windows Windows
}

// Controller advances sessions through the stage graph. Generation and
// tool failures never surface to the caller; each degraded path lands
// on a template or canned reply so the conversation always continues.
type Controller struct {
	graph    *Graph
	provider provider.Provider
	registry *tools.Registry
	library  *knowledge.Federator
	logger   *zap.Logger
	windows  Windows
}

// NewController validates the config and builds a controller.
func NewController(cfg ControllerConfig) (*Controller, error) {
	if cfg.Graph == nil {
		return nil, fmt.Errorf("controller requires a graph")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("controller requires a provider")
	}

	registry := cfg.Registry
	if registry == nil {
		var searcher tools.Searcher
		if cfg.Knowledge != nil {
			searcher = cfg.Knowledge
		}
		registry = tools.NewRegistry(searcher)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	windows := cfg.Windows
	if windows.Chat <= 0 {
		windows = DefaultWindows()
	}

	return &Controller{
		graph:    cfg.Graph,
		provider: cfg.Provider,
		registry: registry,
		library:  cfg.Knowledge,
		logger:   logger,
		windows:  windows,
	}, nil
}

// StartSession creates a session at the graph's entry stage.
func (c *Controller) StartSession() *Session {
	return NewSession(c.graph.Start())
}

// RenderStage renders the session's current stage without user input,
// emitting the stage's filled prompt template.
func (c *Controller) RenderStage(session *Session) (string, error) {
	stage, err := c.graph.Lookup(session.Stage)
	if err != nil {
		return "", err
	}
	return renderTemplate(stage, ""), nil
}

// HandleTurn advances the session by one user turn and returns the
// assistant's reply. Empty input advances along the static edge and
// renders the new stage.
func (c *Controller) HandleTurn(ctx context.Context, session *Session, input string) string {
	ctx, span := intobs.StartSpan(ctx, "dialogue.turn")
	defer span.End()

	observability.RecordTurn()

	stage, err := c.graph.Lookup(session.Stage)
	if err != nil {
		c.logger.Warn("session on unknown stage", zap.String("stage", session.Stage))
		stage, _ = c.graph.Lookup(c.fallbackStage())
	}

	input = strings.TrimSpace(input)
	if input == "" {
		session.Stage = c.staticNext(stage)
		reply, _ := c.RenderStage(session)
		return reply
	}

	next := c.classify(ctx, stage, input)
	observability.RecordStageTransition(stage.ID, next)
	c.logger.Info("stage transition",
		zap.String("session", session.ID),
		zap.String("from", stage.ID),
		zap.String("to", next))

	session.Stage = next
	current, _ := c.graph.Lookup(next)

	if len(current.Tools) > 0 {
		return c.respondWithTools(ctx, session, current, input)
	}
	return c.respond(ctx, session, current, input)
}

// ResumeStage repositions a restored session by classifying its most
// recent user message from the fallback stage. Sessions without user
// turns restart at the entry stage.
func (c *Controller) ResumeStage(ctx context.Context, session *Session) {
	for i := len(session.Turns) - 1; i >= 0; i-- {
		if session.Turns[i].Role != "user" {
			continue
		}
		stage, _ := c.graph.Lookup(c.fallbackStage())
		session.Stage = c.classify(ctx, stage, session.Turns[i].Content)
		return
	}
	session.Stage = c.graph.Start()
}

// classify asks the model for the next stage and validates the answer;
// anything invalid falls back to the static edge.
func (c *Controller) classify(ctx context.Context, stage Stage, input string) string {
	content, err := c.generate(ctx, "classify",
		classifierPrompt(c.graph.Names(), stage.ID, input),
		[]Turn{{Role: "user", Content: classifierQuestion(stage.ID, input)}},
		classifyTemperature)
	if err != nil {
		c.logger.Warn("stage classification failed", zap.Error(err))
		return c.staticNext(stage)
	}

	candidate := strings.ToLower(strings.TrimSpace(content))
	if c.graph.Has(candidate) {
		return candidate
	}

	c.logger.Debug("classifier returned unknown stage", zap.String("candidate", candidate))
	return c.staticNext(stage)
}

// staticNext resolves a stage's static edge, absorbing dynamic and
// broken edges into the fallback stage.
func (c *Controller) staticNext(stage Stage) string {
	if stage.Next != "" && stage.Next != DynamicNext && c.graph.Has(stage.Next) {
		return stage.Next
	}
	return c.fallbackStage()
}

func (c *Controller) fallbackStage() string {
	if c.graph.Has(FallbackStage) {
		return FallbackStage
	}
	return c.graph.Start()
}

// respond handles a plain conversational stage.
func (c *Controller) respond(ctx context.Context, session *Session, stage Stage, input string) string {
	session.Append("user", input)

	system := stagePrompt(stage) + c.retrieve(ctx, stage, input)

	reply, err := c.generate(ctx, "chat", system, session.Window(c.windows.Chat), chatTemperature)
	if err != nil {
		c.logger.Warn("generation failed, using template", zap.Error(err), zap.String("stage", stage.ID))
		return renderTemplate(stage, input)
	}

	session.Append("assistant", reply)
	return reply
}

// respondWithTools handles a tool-capable stage: the model sees the
// tool catalogue and may reply with a directive instead of text.
func (c *Controller) respondWithTools(ctx context.Context, session *Session, stage Stage, input string) string {
	session.Append("user", input)

	system := stagePrompt(stage) +
		toolCatalogue(c.registry.Catalog(stage.Tools)) +
		c.retrieve(ctx, stage, input)

	content, err := c.generate(ctx, "chat", system, session.Window(c.windows.Chat), chatTemperature)
	if err != nil {
		c.logger.Warn("generation failed, using template", zap.Error(err), zap.String("stage", stage.ID))
		return renderTemplate(stage, input)
	}

	parsed := ParseReply(content)
	if parsed.Kind == ReplyToolCall {
		session.Append("assistant", fmt.Sprintf("I'll use the %s tool to help address your question.", parsed.Invocation.Tool))
		return c.runTool(ctx, session, stage, input, parsed.Invocation)
	}

	session.Append("assistant", parsed.Text)
	return parsed.Text
}

// runTool executes a directive and narrates its result. Assessment
// results open the one-question-at-a-time sub-protocol; while an
// assessment is active every further tool directive is folded into its
// continuation instead.
func (c *Controller) runTool(ctx context.Context, session *Session, stage Stage, input string, inv tools.Invocation) string {
	result := c.registry.Execute(ctx, inv.Tool, inv.Parameters)
	observability.RecordToolExecution(inv.Tool, result.Status)

	encoded, err := json.Marshal(result)
	if err != nil {
		encoded = []byte(`{"status":"error","message":"unencodable tool result"}`)
	}
	session.Append("system", "Tool execution result: "+string(encoded))

	if assessment, ok := result.Result.(tools.AssessmentResult); ok {
		reply, err := c.generate(ctx, "assessment",
			assessmentIntroPrompt(assessment),
			session.Window(c.windows.AssessmentIntro),
			chatTemperature)
		if err != nil {
			c.logger.Warn("assessment intro failed", zap.Error(err))
			return renderTemplate(stage, input)
		}

		assessmentType, _ := inv.Parameters["assessment_type"].(string)
		session.Assessment = &AssessmentState{Type: assessmentType, Invocation: inv}
		session.Append("assistant", reply)
		return reply
	}

	if session.Assessment != nil {
		reply, err := c.generate(ctx, "assessment",
			assessmentContinuationPrompt,
			session.Window(c.windows.Assessment),
			chatTemperature)
		if err != nil {
			c.logger.Warn("assessment continuation failed", zap.Error(err))
			return renderTemplate(stage, input)
		}

		if assessmentComplete(reply) {
			c.logger.Info("assessment complete",
				zap.String("session", session.ID),
				zap.String("type", session.Assessment.Type))
			session.Assessment = nil
		}
		session.Append("assistant", reply)
		return reply
	}

	reply, err := c.generate(ctx, "tool_followup",
		toolFollowupPrompt,
		session.Window(c.windows.ToolFollowup),
		chatTemperature)
	if err != nil {
		c.logger.Warn("tool followup failed", zap.Error(err))
		return gatheringFallback
	}

	session.Append("assistant", reply)
	return reply
}

// retrieve folds knowledge search results into prompt context. Stages
// with named sources consult those; others search the full federation.
func (c *Controller) retrieve(ctx context.Context, stage Stage, input string) string {
	if c.library == nil || input == "" {
		return ""
	}

	var results []knowledge.Result
	if len(stage.Knowledge) > 0 {
		results = c.library.SearchIn(ctx, input, stage.Knowledge, retrievalTopK)
	} else {
		results = c.library.Search(ctx, input, retrievalTopK)
	}
	return knowledgeContext(results)
}

// generate runs one completion and returns its trimmed content.
func (c *Controller) generate(ctx context.Context, purpose, system string, turns []Turn, temperature float64) (string, error) {
	messages := make([]provider.Message, 0, len(turns)+1)
	messages = append(messages, provider.Message{Role: "system", Content: system})
	for _, turn := range turns {
		messages = append(messages, provider.Message{Role: turn.Role, Content: turn.Content})
	}

	start := time.Now()
	resp, err := c.provider.CreateCompletion(ctx, provider.CompletionRequest{
		Messages:    messages,
		Temperature: temperature,
	})
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	observability.RecordGeneration(purpose, outcome, time.Since(start))

	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
