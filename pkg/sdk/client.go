package estaterag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/db"
	"github.com/kailas-cloud/estaterag/internal/db/memory"
	dbRedis "github.com/kailas-cloud/estaterag/internal/db/redis"
	"github.com/kailas-cloud/estaterag/internal/domain"
	domanswer "github.com/kailas-cloud/estaterag/internal/domain/answer"
	dombatch "github.com/kailas-cloud/estaterag/internal/domain/batch"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
	listingrepo "github.com/kailas-cloud/estaterag/internal/repository/listing"
	openaiTransport "github.com/kailas-cloud/estaterag/internal/transport/openai"
	answeruc "github.com/kailas-cloud/estaterag/internal/usecase/answer"
	embeddinguc "github.com/kailas-cloud/estaterag/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/estaterag/internal/usecase/health"
	listinguc "github.com/kailas-cloud/estaterag/internal/usecase/listing"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultEmbedTimeout     = 30 * time.Second
	defaultCompleteTimeout  = 60 * time.Second
)

type listingUseCase interface {
	Ingest(ctx context.Context, records []domlisting.RawRecord) dombatch.Report
	BuildIndex(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

type answerUseCase interface {
	Query(ctx context.Context, query string, k int) (domanswer.Answer, error)
}

// Client is the estaterag SDK entry point.
type Client struct {
	store      db.Store
	listingSvc listingUseCase
	answerSvc  answerUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	cfg.applyDefaults()

	if cfg.driver == "" {
		return nil, errors.New("estaterag: storage required (use WithRedis, WithValkey or WithMemory)")
	}
	if cfg.driver != driverMemory && len(cfg.addrs) == 0 {
		return nil, errors.New("estaterag: database address required")
	}
	if cfg.embedder == nil && cfg.openai == nil {
		return nil, errors.New("estaterag: embedder required (use WithEmbedder or WithOpenAI)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("estaterag: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func (c *clientConfig) applyDefaults() {
	if c.dimensions <= 0 {
		c.dimensions = domain.DefaultVectorConfig().Dimensions
	}
	idx := domain.DefaultIndexConfig()
	if c.algorithm == "" {
		c.algorithm = idx.Algorithm
	}
	if c.hnswM <= 0 {
		c.hnswM = idx.M
	}
	if c.hnswEFConstruct <= 0 {
		c.hnswEFConstruct = idx.EFConstruction
	}
	if c.minRows <= 0 {
		c.minRows = idx.MinRows
	}
	if c.maxBatchSize <= 0 {
		c.maxBatchSize = listinguc.DefaultMaxBatchSize
	}
	if c.keyPrefix == "" {
		c.keyPrefix = domain.DefaultKeyPrefix
	}
	if c.embedTimeout <= 0 {
		c.embedTimeout = defaultEmbedTimeout
	}
	if c.completeTimeout <= 0 {
		c.completeTimeout = defaultCompleteTimeout
	}
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverRedis, driverValkey:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("estaterag: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	case driverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("estaterag: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	// Internal services log through zap; SDK users get slog via the observer.
	nop := zap.NewNop()

	var emb domain.Embedder
	var llm domain.Completer = noopCompleter{}
	if cfg.openai != nil {
		emb, llm = openAIProviders(cfg, nop)
	}
	if cfg.embedder != nil {
		emb = &embedderAdapter{inner: cfg.embedder}
	}
	if cfg.completer != nil {
		llm = &completerAdapter{inner: cfg.completer}
	}

	gateway := embeddinguc.NewGateway(emb, cfg.dimensions, cfg.embedTimeout)
	repo := listingrepo.New(store, cfg.keyPrefix, cfg.dimensions)
	listings := listinguc.New(repo, gateway, domain.IndexConfig{
		Algorithm:      cfg.algorithm,
		M:              cfg.hnswM,
		EFConstruction: cfg.hnswEFConstruct,
		MinRows:        cfg.minRows,
	}, nop).WithMaxBatchSize(cfg.maxBatchSize)

	return &Client{
		store:      store,
		listingSvc: listings,
		answerSvc:  answeruc.New(gateway, listings, llm, cfg.completeTimeout, nop),
		healthSvc:  healthuc.New(store, repo).WithProvider("embedding", gateway),
		obs:        obs,
	}
}

func openAIProviders(cfg *clientConfig, logger *zap.Logger) (domain.Embedder, domain.Completer) {
	oc := cfg.openai
	vec := domain.DefaultVectorConfig()
	comp := domain.DefaultCompletionConfig()
	if oc.EmbeddingModel != "" {
		vec.Model = oc.EmbeddingModel
	}
	if oc.CompletionModel != "" {
		comp.Model = oc.CompletionModel
	}
	if oc.Temperature != nil {
		comp.Temperature = *oc.Temperature
	}
	if oc.MaxTokens > 0 {
		comp.MaxTokens = oc.MaxTokens
	}

	emb := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     oc.APIKey,
		BaseURL:    oc.BaseURL,
		Model:      vec.Model,
		Dimensions: cfg.dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	llm := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:   oc.APIKey,
		BaseURL:  oc.BaseURL,
		Provider: "openai",
		Logger:   logger,
	}, comp)
	return emb, llm
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ingest normalizes, embeds and stores listings. Listings already stored are
// skipped without calling the embedder. The error is non-nil only when every
// record failed; per-record failures are reported in the items.
func (c *Client) Ingest(ctx context.Context, listings []Listing) (report IngestReport, err error) {
	start := time.Now()
	defer func() {
		c.obs.ingested(report)
		c.obs.observe("ingest", start, err,
			"listings", len(listings), "added", report.Added, "skipped", report.Skipped, "failed", report.Failed)
	}()

	records := make([]domlisting.RawRecord, len(listings))
	for i, l := range listings {
		records[i] = domlisting.RawRecord(l)
	}
	report = toIngestReport(c.listingSvc.Ingest(ctx, records))
	if len(report.Items) > 0 && report.Failed == len(report.Items) {
		err = fmt.Errorf("ingest: all %d records failed: %w", report.Failed, report.Items[0].Err)
	}
	return report, err
}

// BuildIndex creates the nearest-neighbor index. A failure wraps ErrIndexBuild
// and leaves the client usable: queries fall back to a full scan.
func (c *Client) BuildIndex(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.build", start, err) }()

	if err = c.listingSvc.BuildIndex(ctx); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	return nil
}

// Query answers a natural-language question grounded on the k closest listings.
func (c *Client) Query(ctx context.Context, query string, k int) (answer Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("query", start, err, "k", k, "sources", len(answer.Sources)) }()

	a, err := c.answerSvc.Query(ctx, query, k)
	if err != nil {
		return Answer{}, fmt.Errorf("query: %w", err)
	}
	return toAnswer(a), nil
}

// Count returns the number of stored listings.
func (c *Client) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	n, err = c.listingSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Reset drops every stored listing and the index.
func (c *Client) Reset(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("reset", start, err) }()

	if err = c.listingSvc.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}
