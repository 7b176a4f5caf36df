// Package app is the composition root shared by the API server and the pipeline CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/config"
	"github.com/kailas-cloud/estaterag/internal/db"
	"github.com/kailas-cloud/estaterag/internal/db/memory"
	dbRedis "github.com/kailas-cloud/estaterag/internal/db/redis"
	"github.com/kailas-cloud/estaterag/internal/domain"
	"github.com/kailas-cloud/estaterag/internal/metrics"
	"github.com/kailas-cloud/estaterag/internal/repository/embcache"
	listingrepo "github.com/kailas-cloud/estaterag/internal/repository/listing"
	openaiTransport "github.com/kailas-cloud/estaterag/internal/transport/openai"
	answeruc "github.com/kailas-cloud/estaterag/internal/usecase/answer"
	embeddinguc "github.com/kailas-cloud/estaterag/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/estaterag/internal/usecase/health"
	listinguc "github.com/kailas-cloud/estaterag/internal/usecase/listing"
)

// App holds the wired services.
type App struct {
	Store    db.Store
	Listings *listinguc.Service
	Answers  *answeruc.Service
	Health   *healthuc.Service
}

// Close releases the storage connection.
func (a *App) Close() { a.Store.Close() }

// OpenStore creates the storage backend for the configured driver and waits
// until it answers.
func OpenStore(ctx context.Context, cfg *config.Config) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		// valkey-search speaks the same FT.* dialect; one rueidis client serves both.
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case config.DriverMemory:
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// New wires every service on top of store.
func New(cfg *config.Config, store db.Store, logger *zap.Logger) *App {
	metrics.Register()

	dim := cfg.Embedding.Dimensions
	docEmbedder := embeddinguc.NewGateway(
		buildEmbedder(cfg, cfg.Embedding.DocumentInstruction, store, logger), dim, cfg.EmbeddingTimeout())
	queryEmbedder := embeddinguc.NewGateway(
		buildEmbedder(cfg, cfg.Embedding.QueryInstruction, store, logger), dim, cfg.EmbeddingTimeout())

	completer := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:   cfg.Completion.APIKey,
		BaseURL:  cfg.Completion.BaseURL,
		Provider: cfg.Completion.Provider,
		Logger:   logger,
	}, cfg.CompletionSettings())

	logger.Info("Providers configured",
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Int("dimensions", dim),
		zap.String("completion_model", cfg.Completion.Model),
	)

	repo := listingrepo.New(store, cfg.Storage.KeyPrefix, dim)
	listings := listinguc.New(repo, docEmbedder, cfg.IndexSettings(), logger).
		WithMaxBatchSize(cfg.Index.MaxBatchSize)
	answers := answeruc.New(queryEmbedder, listings, completer, cfg.CompletionTimeout(), logger)
	health := healthuc.New(store, repo).WithProvider("embedding", docEmbedder)

	return &App{Store: store, Listings: listings, Answers: answers, Health: health}
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
func buildEmbedder(cfg *config.Config, instruction string, store db.Store, logger *zap.Logger) domain.Embedder {
	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})

	if cfg.Embedding.Cache.Enabled {
		embedder = embcache.New(embedder, store, embcache.Config{
			KeyPrefix:  cfg.Storage.KeyPrefix,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			TTL:        time.Duration(cfg.Embedding.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger)

	// Instruction prefix is outermost so the cache key includes it.
	return domain.NewInstructionEmbedder(embedder, instruction)
}
