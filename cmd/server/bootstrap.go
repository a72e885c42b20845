package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"portfolio-intel/internal/advisor"
	"portfolio-intel/internal/analyzer"
	"portfolio-intel/internal/batch"
	"portfolio-intel/internal/handlers"
	"portfolio-intel/internal/ingest"
	"portfolio-intel/internal/interfaces"
	"portfolio-intel/internal/llm/llmobs"
	"portfolio-intel/internal/llm/noop"
	"portfolio-intel/internal/llm/openrouter"
	"portfolio-intel/internal/logger"
	"portfolio-intel/internal/news"
	"portfolio-intel/internal/store"
	"portfolio-intel/internal/trace"
)

// pipeline holds the wired application components.
type pipeline struct {
	fetcher       interfaces.Fetcher
	completer     interfaces.Completer
	orchestrator  *batch.Orchestrator
	advisor       *advisor.Advisor
	publicFetcher *ingest.PublicFetcher
	handlers      *handlers.Handlers
}

// initializeSystem loads the environment and initializes logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads config.yaml, falling back to defaults when the file is
// absent
func loadConfig(ctx context.Context) *store.Config {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.Warn(ctx, "Failed to load config, using defaults", "error", err)
		return store.DefaultConfig()
	}
	return cfg
}

// openStore opens the SQLite database and migrates the schema
func openStore(ctx context.Context, cfg *store.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open database", err, "path", cfg.Database.Path)
		return nil, err
	}
	logger.Info(ctx, "Database ready", "path", cfg.Database.Path)
	return st, nil
}

// initializeCompleter selects the LLM backend with observability
func initializeCompleter(ctx context.Context, cfg *store.Config) interfaces.Completer {
	var completer interfaces.Completer

	switch cfg.LLM.Provider {
	case "OPENROUTER":
		completer = openrouter.NewClient(cfg)
	default:
		completer = noop.NewNoopCompleter()
		logger.Warn(ctx, "No LLM provider configured - using Noop completer (always neutral)")
	}

	return llmobs.Wrap(completer)
}

// buildPipeline wires the fetcher, completer, analyzer and orchestrator
func buildPipeline(ctx context.Context, cfg *store.Config, st *store.Store) *pipeline {
	fetcher := news.NewFetcher(time.Duration(cfg.News.TimeoutSeconds) * time.Second)
	completer := initializeCompleter(ctx, cfg)
	an := analyzer.New(st, fetcher, completer, cfg)
	orchestrator := batch.New(st, an, cfg)
	adv := advisor.New(st, completer)
	publicFetcher := ingest.NewPublicFetcher()

	return &pipeline{
		fetcher:       fetcher,
		completer:     completer,
		orchestrator:  orchestrator,
		advisor:       adv,
		publicFetcher: publicFetcher,
		handlers:      handlers.New(st, cfg, fetcher, completer, orchestrator, adv, publicFetcher),
	}
}

// buildRouter assembles the gin router
func buildRouter(deps *pipeline) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	deps.handlers.Register(router)
	return router
}

// shutdownObservability flushes tracer and logger state
func shutdownObservability(ctx context.Context) {
	if err := trace.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shut down tracer: %v\n", err)
	}
	_ = logger.Shutdown(ctx)
}
