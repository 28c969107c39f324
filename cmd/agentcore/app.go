package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agentcore/core/internal/agentloop"
	"github.com/agentcore/core/internal/audit"
	"github.com/agentcore/core/internal/config"
	"github.com/agentcore/core/internal/dispatch"
	"github.com/agentcore/core/internal/journal"
	"github.com/agentcore/core/internal/mcp"
	"github.com/agentcore/core/internal/memostore"
	"github.com/agentcore/core/internal/observability"
	"github.com/agentcore/core/internal/planner"
	"github.com/agentcore/core/internal/planrunner"
	"github.com/agentcore/core/internal/providers"
	"github.com/agentcore/core/internal/routing"
	"github.com/agentcore/core/internal/sandbox"
	"github.com/agentcore/core/pkg/core"
)

// app bundles the wired runtime every subcommand drives. It owns the
// process-wide services (audit store, journal, MCP host) and is closed
// once at the end of a command's Run.
type app struct {
	cfg      *config.Config
	sink     *audit.Sink
	store    *audit.Store
	journal  *journal.Journal
	policy   *sandbox.Policy
	router   *routing.Router
	registry *dispatch.Registry
	mcpHost  *mcp.Host
	loop     *agentloop.Loop
	runner   *planrunner.Runner
	planner  *planner.Planner
	logger   *observability.Logger
}

func dataDir() string {
	if dir := os.Getenv("AGENTCORE_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".agentcore")
}

// buildApp loads configuration and wires every component (C1-C9) into a
// runnable app, per spec.md §6's persisted-state layout.
func buildApp(workspace string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dir := dataDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := audit.OpenStore(filepath.Join(dir, "audit.db"))
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{Level: cfg.Logging.Level, Format: "json"})
	metrics := observability.NewMetrics()
	sink := audit.NewSink(store, metrics)

	jrnl, err := journal.New(filepath.Join(dir, "journal"), filepath.Join(dir, "backups"))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open journal: %w", err)
	}

	if workspace == "" {
		workspace, _ = os.Getwd()
	}
	policy := sandbox.NewPolicy(workspace, nil)

	router := buildRouter(cfg)

	registry := dispatch.New(sink)
	memStore, err := memostore.Open(filepath.Join(dir, "memo.json"))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open memo store: %w", err)
	}
	if err := dispatch.RegisterBuiltins(registry, dispatch.BuiltinsConfig{
		Workspace:   workspace,
		Policy:      policy,
		Journal:     jrnl,
		Sink:        sink,
		Router:      router,
		MemoryStore: memStore,
	}); err != nil {
		store.Close()
		return nil, fmt.Errorf("register builtin tools: %w", err)
	}

	mcpHost := mcp.NewHost(mcp.NewManager(&cfg.MCP, nil), policy)
	if _, err := mcpHost.RegisterTools(registry); err != nil {
		store.Close()
		return nil, fmt.Errorf("register mcp tools: %w", err)
	}

	loop := agentloop.New(router, registry, sink, agentloop.Config{
		SystemPrompt: "You are an autonomous coding and operations agent. Use the available tools to accomplish the objective, then reply with a short summary containing the phrase \"task complete\".",
		Tools:        registry.Definitions(),
	})
	runner := planrunner.New(registry, sink)
	plan := planner.New(router, sink, cfg.LLM.DefaultProvider)

	return &app{
		cfg:      cfg,
		sink:     sink,
		store:    store,
		journal:  jrnl,
		policy:   policy,
		router:   router,
		registry: registry,
		mcpHost:  mcpHost,
		loop:     loop,
		runner:   runner,
		planner:  plan,
		logger:   logger,
	}, nil
}

func (a *app) Close() error {
	if a.mcpHost != nil {
		_ = a.mcpHost.Stop()
	}
	return a.store.Close()
}

// buildRouter constructs every configured provider adapter and assembles
// the C5 router over them, skipping a provider entirely only when
// constructing its client fails outright (Gemini's SDK can error on
// construction; the others never do).
func buildRouter(cfg *config.Config) *routing.Router {
	providerSet := make(map[string]core.Provider)

	if p, ok := cfg.LLM.Providers["anthropic"]; ok {
		providerSet["anthropic"] = providers.NewAnthropicProvider(providers.AnthropicConfig{
			APIKey: p.APIKey, BaseURL: p.BaseURL, DefaultModel: p.DefaultModel,
		})
	}
	if p, ok := cfg.LLM.Providers["openai"]; ok {
		providerSet["openai"] = providers.NewOpenAIProvider(providers.OpenAIConfig{
			APIKey: p.APIKey, BaseURL: p.BaseURL, DefaultModel: p.DefaultModel,
		})
	}
	if p, ok := cfg.LLM.Providers["perplexity"]; ok {
		providerSet["perplexity"] = providers.NewPerplexityProvider(providers.OpenAIConfig{
			APIKey: p.APIKey, BaseURL: p.BaseURL, DefaultModel: p.DefaultModel,
		})
	}
	if p, ok := cfg.LLM.Providers["gemini"]; ok {
		if gemini, err := providers.NewGeminiProvider(providers.GeminiConfig{
			APIKey: p.APIKey, DefaultModel: p.DefaultModel,
		}); err == nil {
			providerSet["gemini"] = gemini
		}
	}

	return routing.NewRouter(routing.Config{
		DefaultProvider: cfg.LLM.DefaultProvider,
		Rules:           cfg.LLM.Routing.Rules,
	}, providerSet)
}
