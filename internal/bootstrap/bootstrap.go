package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/leakwatch/assistant/internal/config"
	"github.com/leakwatch/assistant/internal/core/agent"
	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/core/search"
	auditnats "github.com/leakwatch/assistant/internal/infrastructure/audit/nats"
	embeddingopenai "github.com/leakwatch/assistant/internal/infrastructure/embedding/openai"
	llmopenai "github.com/leakwatch/assistant/internal/infrastructure/llm/openai"
	"github.com/leakwatch/assistant/internal/infrastructure/repository/postgres"
	"github.com/leakwatch/assistant/internal/infrastructure/resilience"
	"github.com/leakwatch/assistant/internal/observability/metrics"
)

// App wires the assistant's collaborators once and hands them to the api
// and worker entrypoints.
type App struct {
	Config config.Config

	Governor  *agent.Governor
	Searcher  *search.Service
	Indexer   *search.Indexer
	Catalog   []domain.ToolDescriptor
	Queue     *auditnats.Queue
	AuditRepo *postgres.AuditRepository
	Metrics   *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	leakRepo := postgres.NewLeakRepository(db)
	directoryRepo := postgres.NewDirectoryRepository(db)
	knowledgeRepo := postgres.NewKnowledgeRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := auditnats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, auditnats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init audit queue: %w", err)
	}

	model := llmopenai.New(cfg.ModelBaseURL, cfg.ModelAPIKey, cfg.ModelID, executor)

	embedCache := embeddingopenai.NewCache(cfg.EmbedCacheMaxEntries, time.Duration(cfg.EmbedCacheTTLMinutes)*time.Minute)
	embedder := embeddingopenai.New(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelID, executor, embedCache)

	engine := search.NewEngine(embedder)
	searcher := search.NewService(knowledgeRepo, engine, domain.SearchOptions{
		TopK:             cfg.SearchTopK,
		Threshold:        cfg.SearchThreshold,
		MinVectorResults: cfg.SearchMinVectorResults,
	})
	indexer := search.NewIndexer(knowledgeRepo, knowledgeRepo, embedder)

	toolset := agent.NewToolset(leakRepo, directoryRepo, auditRepo, searcher)
	catalog := agent.Catalog()
	dispatcher, err := agent.NewDispatcher(catalog, toolset.Handlers())
	if err != nil {
		queue.Close()
		_ = db.Close()
		return nil, fmt.Errorf("build tool dispatcher: %w", err)
	}

	governor := agent.NewGovernor(model, dispatcher, searcher, leakRepo, queue, domain.Limits{
		MaxIterations:      cfg.AgentMaxIterations,
		Timeout:            time.Duration(cfg.AgentTimeoutSeconds) * time.Second,
		ModelTimeout:       time.Duration(cfg.AgentModelTimeoutSecs) * time.Second,
		ToolTimeout:        time.Duration(cfg.AgentToolTimeoutSecs) * time.Second,
		MaxToolResultChars: cfg.AgentMaxToolResultChars,
		KnowledgeTopK:      cfg.AgentKnowledgeTopK,
	})

	serverMetrics := metrics.NewHTTPServerMetrics("assistant")
	serverMetrics.RegisterEmbedCache("assistant", embedCache.Stats)

	return &App{
		Config:    cfg,
		Governor:  governor,
		Searcher:  searcher,
		Indexer:   indexer,
		Catalog:   catalog,
		Queue:     queue,
		AuditRepo: auditRepo,
		Metrics:   serverMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
