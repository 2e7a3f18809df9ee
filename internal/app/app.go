// Package app assembles the driven adapters and core services from
// settings. Driving adapters (CLI, HTTP, MCP, TUI) consume the result.
package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/ai"
	rediscache "github.com/custodia-labs/sercha-agents/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/search/arxiv"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-agents/internal/adapters/driven/storage/uploads"
	"github.com/custodia-labs/sercha-agents/internal/core/domain"
	"github.com/custodia-labs/sercha-agents/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-agents/internal/core/services"
	"github.com/custodia-labs/sercha-agents/internal/logger"
	"github.com/custodia-labs/sercha-agents/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-agents/internal/normalisers/pdf"
	"github.com/custodia-labs/sercha-agents/internal/normalisers/plaintext"
	"github.com/custodia-labs/sercha-agents/internal/postprocessors/chunker"
)

// Options controls how the application is assembled.
type Options struct {
	Settings domain.AppSettings

	// DataDir holds the SQLite database (default: ~/.sercha-agents/data).
	DataDir string

	// Prompts overrides the built-in prompt templates. Optional.
	Prompts driven.PromptStore
}

// App holds the wired services.
type App struct {
	Ask       *services.Orchestrator
	Logs      *services.LogService
	Retrieval *services.RetrievalIndex
	Ingest    *services.IngestService

	// Providers reports which agents and model services are usable.
	Providers map[string]bool

	// Warnings lists non-fatal problems found while assembling.
	Warnings []string

	closers []func()
}

// Build assembles the application. A dimension mismatch between the
// embedder and the vector index is returned as domain.ErrDimensionMismatch.
func Build(ctx context.Context, opts Options) (_ *App, err error) {
	settings := opts.Settings
	app := &App{Providers: make(map[string]bool)}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	models, err := ai.Initialise(ctx, settings)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, models.Close)
	app.Warnings = append(app.Warnings, models.Warnings...)
	app.Providers["llm"] = models.LLMService != nil

	chunks, logs, err := app.openStores(settings, opts.DataDir)
	if err != nil {
		return nil, err
	}

	splitter := chunker.New(
		chunker.WithChunkSize(settings.Retrieval.ChunkSize),
		chunker.WithOverlap(settings.Retrieval.ChunkOverlap),
	)
	index, err := services.NewRetrievalIndex(splitter, models.EmbeddingService, models.VectorIndex, chunks)
	if err != nil {
		return nil, err
	}
	if _, err := index.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore retrieval index: %w", err)
	}
	app.Retrieval = index

	if err := pdf.CheckAvailable(); err != nil {
		app.warn("PDF extraction disabled: %v", err)
	}
	app.Ingest = services.NewIngestService(
		index,
		uploads.New(settings.Server.UploadDir),
		settings.Server.MaxFileSize,
		pdf.New(), plaintext.New(), markdown.New(),
	)

	papers, web := app.searchProviders(ctx, settings.Search)

	topK := settings.Retrieval.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	agents := []services.Agent{
		services.NewRetrievalAgent(index, topK),
		services.NewPaperAgent(papers, settings.Search.ArxivMaxResults),
		services.NewWebAgent(web, settings.Search.WebMaxResults),
	}

	orchestrator, err := services.NewOrchestrator(
		services.NewDecider(models.LLMService, opts.Prompts),
		services.NewSynthesizer(models.LLMService, opts.Prompts),
		logs,
		agents,
		services.OrchestratorConfig{
			Workers:         settings.Search.OrchestratorPool,
			ProviderTimeout: settings.Search.ProviderTimeout,
		},
	)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, orchestrator.Close)
	app.Ask = orchestrator
	app.Logs = services.NewLogService(logs)

	return app, nil
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	a.Warnings = append(a.Warnings, msg)
}

// openStores picks the chunk and log stores. The memory log backend keeps
// everything in process; other backends persist chunks in SQLite.
func (a *App) openStores(settings domain.AppSettings, dataDir string) (driven.ChunkStore, driven.LogStore, error) {
	if settings.Server.LogBackend == domain.LogBackendMemory {
		return memory.NewChunkStore(), memory.NewLogStore(), nil
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("Close sqlite store: %v", err)
		}
	})
	logger.Debug("SQLite store at %s", store.Path())

	switch settings.Server.LogBackend {
	case domain.LogBackendSQLite, "":
		return store.ChunkStore(), store.LogStore(), nil
	case domain.LogBackendJSONFile:
		return store.ChunkStore(), jsonfile.NewLogStore(settings.Server.LogFile), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown log backend %q", domain.ErrInvalidInput, settings.Server.LogBackend)
	}
}

// searchProviders builds the paper and web providers. A provider that
// cannot be configured is left nil so its agent reports it as unavailable.
func (a *App) searchProviders(ctx context.Context, cfg domain.SearchProviderSettings) (driven.SearchProvider, driven.SearchProvider) {
	var papers, web driven.SearchProvider = arxiv.New(arxiv.Config{BaseURL: cfg.ArxivBaseURL}), nil

	if p, err := ai.CreateWebSearchProvider(ctx, &cfg); err != nil {
		a.warn("Web search disabled: %v", err)
	} else {
		web = p
	}

	if cfg.RedisAddr != "" {
		client, err := a.connectCache(ctx, cfg.RedisAddr)
		if err != nil {
			a.warn("Search cache disabled: %v", err)
		} else {
			cacheCfg := rediscache.Config{TTL: cfg.CacheTTL}
			papers = rediscache.Wrap(papers, client, cacheCfg)
			if web != nil {
				web = rediscache.Wrap(web, client, cacheCfg)
			}
		}
	}

	a.Providers[string(domain.AgentRetrieval)] = true
	a.Providers[string(domain.AgentPapers)] = papers != nil
	a.Providers[string(domain.AgentWeb)] = web != nil
	return papers, web
}

func (a *App) connectCache(ctx context.Context, addr string) (*goredis.Client, error) {
	client, err := rediscache.Connect(ctx, addr)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Close redis client: %v", err)
		}
	})
	return client, nil
}
