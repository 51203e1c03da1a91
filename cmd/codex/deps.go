package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/codex-core/internal/domain/services"
	"github.com/ersonp/codex-core/internal/infrastructure/catalog/sqlite"
	"github.com/ersonp/codex-core/internal/infrastructure/config"
	embedder "github.com/ersonp/codex-core/internal/infrastructure/embedder/openai"
	"github.com/ersonp/codex-core/internal/infrastructure/extract"
	llm "github.com/ersonp/codex-core/internal/infrastructure/llm/openai"
	"github.com/ersonp/codex-core/internal/infrastructure/vectordb/qdrant"
)

// deps holds the wired application graph shared by all commands.
type deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Collections *services.CollectionService
	Ingest      *services.IngestService
	Query       *services.QueryService
	Vectors     *qdrant.Repository
	Catalog     *sqlite.Repository
	LLM         *llm.Client
}

// withDeps loads config, builds the dependency graph, calls fn, and cleans
// up connections afterwards.
func withDeps(ctx context.Context, debug bool, fn func(*deps) error) error {
	configPath := globalConfig
	if configPath == "" {
		configPath = config.DefaultConfigFile
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	vectors, err := qdrant.NewRepository(cfg.Qdrant)
	if err != nil {
		return fmt.Errorf("creating qdrant repository: %w", err)
	}
	defer vectors.Close()

	cat, err := sqlite.NewRepository(cfg.Storage.CatalogPath)
	if err != nil {
		return fmt.Errorf("creating catalog: %w", err)
	}
	defer cat.Close()

	if err := cat.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensuring catalog schema: %w", err)
	}

	emb, err := embedder.NewEmbedder(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("creating llm client: %w", err)
	}

	collections := services.NewCollectionService(cat, vectors, cfg.Storage.DataDir, emb.VectorSize())
	ingest := services.NewIngestService(collections, cat, vectors, emb, extract.NewExtractor(),
		cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	query := services.NewQueryService(collections, vectors, emb, llmClient)

	if err := collections.LoadExisting(ctx); err != nil {
		return fmt.Errorf("loading existing collections: %w", err)
	}

	return fn(&deps{
		Config:      cfg,
		Logger:      logger,
		Collections: collections,
		Ingest:      ingest,
		Query:       query,
		Vectors:     vectors,
		Catalog:     cat,
		LLM:         llmClient,
	})
}

// newLogger returns a zap logger: development config (human-readable,
// debug level) when debug is set, production config otherwise.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
