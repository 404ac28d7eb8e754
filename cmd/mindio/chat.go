package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mindio-dev/mindio/internal/llm/provider"
	"github.com/mindio-dev/mindio/internal/logging"
	intobs "github.com/mindio-dev/mindio/internal/observability"
	"github.com/mindio-dev/mindio/pkg/config"
	"github.com/mindio-dev/mindio/pkg/dialogue"
	"github.com/mindio-dev/mindio/pkg/embeddings"
	"github.com/mindio-dev/mindio/pkg/history"
	"github.com/mindio-dev/mindio/pkg/knowledge"
	"github.com/mindio-dev/mindio/pkg/observability"
	"github.com/mindio-dev/mindio/pkg/tools"
)

// emergencyDocument is always present in the general knowledge store.
const emergencyDocument = "When there is a possibility of self harm or injury to others, emergency calls should be made immediately：119。"

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive counseling session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := intobs.InitTracing(ctx, cfg.Observability.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	observability.InitMetrics()
	if port := cfg.Observability.MetricsPort; port > 0 {
		srv := observability.NewServer(port)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	gen, err := provider.New(cfg.Model)
	if err != nil {
		return err
	}
	if cfg.RateLimit.RPS > 0 {
		gen = provider.NewRateLimited(gen, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	var embedder embeddings.Service
	if cfg.Embeddings.Provider != "" {
		embedder, err = embeddings.New(cfg.Embeddings)
		if err != nil {
			logger.Warn("embeddings unavailable, using keyword search", zap.Error(err))
		} else {
			defer func() { _ = embedder.Close() }()
		}
	}

	library := knowledge.NewFederator(ctx, embedder, cfg.Knowledge, logger)
	if err := library.AddDocument(ctx, knowledge.Document{
		Content:  emergencyDocument,
		Metadata: map[string]string{"source": "emergency-resources", "category": "resources"},
	}); err != nil {
		logger.Warn("could not add emergency document", zap.Error(err))
	}

	graph := dialogue.DefaultGraph()
	if cfg.GraphPath != "" {
		graph, err = dialogue.LoadGraph(cfg.GraphPath)
		if err != nil {
			return err
		}
	}

	controller, err := dialogue.NewController(dialogue.ControllerConfig{
		Graph:     graph,
		Provider:  gen,
		Registry:  tools.NewRegistry(library),
		Knowledge: library,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	store, err := newHistoryStore(cfg)
	if err != nil {
		return err
	}

	repl := &repl{
		controller: controller,
		store:      store,
		logger:     logger,
	}
	return repl.run(ctx)
}

func newHistoryStore(cfg *config.Config) (history.Store, error) {
	if cfg.History.Backend == "redis" {
		return history.NewRedisStore(cfg.History.Redis)
	}
	return history.NewFileStore(cfg.History.Dir)
}

type repl struct {
	controller *dialogue.Controller
	store      history.Store
	logger     *zap.Logger
	session    *dialogue.Session
}

func (r *repl) run(ctx context.Context) error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()
	line.SetCtrlCAborts(true)

	fmt.Println("\n===== MindIO Command Line Interface =====")
	fmt.Println("/h for help or /x to exit at any time.")
	fmt.Println("========================================")

	r.session = r.controller.StartSession()
	if greeting, err := r.controller.RenderStage(r.session); err == nil {
		r.session.Append("assistant", greeting)
		fmt.Printf("\nAssistant: %s\n", greeting)
	}

	for {
		input, err := line.Prompt("\nYou: ")
		if errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println("\nPressed Ctrl+C. Type /x to quit.")
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Println("\nInput ended. Exiting...")
			return nil
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case strings.EqualFold(input, "/x"):
			fmt.Println("\nGood bye!")
			return nil
		case strings.EqualFold(input, "/h"):
			r.showHelp()
		case strings.EqualFold(input, "/s"):
			r.saveConversation(ctx)
		case strings.EqualFold(input, "/ls"):
			r.listConversations(ctx)
		case strings.HasPrefix(strings.ToLower(input), "/l "):
			r.loadConversation(ctx, strings.TrimSpace(input[3:]))
		default:
			reply := r.controller.HandleTurn(ctx, r.session, input)
			fmt.Printf("\nAssistant: %s\n", reply)
		}
	}
}

func (r *repl) showHelp() {
	fmt.Println("\n=== Available Commands ===")
	fmt.Println("/h - Show this help message")
	fmt.Println("/x - Exit the application")
	fmt.Println("/s - Save conversation")
	fmt.Println("/l <index> - Load conversation from file")
	fmt.Println("/ls - List all saved conversations")
	fmt.Println("=========================")
}

func (r *repl) saveConversation(ctx context.Context) {
	name, err := r.store.Save(ctx, history.Transcript{
		Conversation: r.session.Turns,
		Metadata: map[string]string{
			"session_id": r.session.ID,
			"stage":      r.session.Stage,
		},
	})
	if err != nil {
		fmt.Printf("\nError: could not save conversation: %v\n", err)
		return
	}
	fmt.Printf("Conversation saved to %s\n", name)
}

func (r *repl) listConversations(ctx context.Context) {
	names, err := r.store.List(ctx)
	if err != nil {
		fmt.Printf("\nError: could not list conversations: %v\n", err)
		return
	}
	if len(names) == 0 {
		fmt.Println("\nNo saved conversations found.")
		return
	}
	fmt.Println("\nSaved conversations:")
	for i, name := range names {
		fmt.Printf("%d. %s\n", i+1, name)
	}
}

func (r *repl) loadConversation(ctx context.Context, arg string) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Printf("\nError: invalid index %q\n", arg)
		return
	}

	transcript, err := r.store.LoadByIndex(ctx, index)
	if err != nil {
		fmt.Println("\nError: Could not load conversation or file is empty")
		return
	}

	r.session = r.controller.StartSession()
	r.session.Turns = transcript.Conversation
	r.controller.ResumeStage(ctx, r.session)

	fmt.Printf("Loaded %d messages\n", len(transcript.Conversation))
	if n := len(transcript.Conversation); n > 0 {
		last := transcript.Conversation[n-1]
		fmt.Printf("Last message (%s): %s\n", last.Role, last.Content)
	}
	fmt.Printf("Current conversation node set to: %s\n", r.session.Stage)
}
