// Package listing ingests, indexes and searches real-estate listings.
package listing

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/domain"
	dombatch "github.com/kailas-cloud/estaterag/internal/domain/batch"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
	"github.com/kailas-cloud/estaterag/internal/domain/similarity"
	"github.com/kailas-cloud/estaterag/internal/metrics"
)

// DefaultMaxBatchSize is the maximum number of records per ingest call.
const DefaultMaxBatchSize = 1000

// Result is a ranked search outcome and the path that produced it.
type Result struct {
	Hits     []similarity.Hit
	Strategy similarity.Strategy
}

// Service is the listing store: idempotent ingest, best-effort index build,
// and search with a cosine fallback.
type Service struct {
	repo         Repository
	embed        Embedder
	index        domain.IndexConfig
	maxBatchSize int
	logger       *zap.Logger

	// ingestMu serializes the exists-check and write of concurrent ingests.
	ingestMu sync.Mutex
}

// New creates a listing service.
func New(repo Repository, embed Embedder, index domain.IndexConfig, logger *zap.Logger) *Service {
	return &Service{
		repo:         repo,
		embed:        embed,
		index:        index,
		maxBatchSize: DefaultMaxBatchSize,
		logger:       logger,
	}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// Ingest normalizes, deduplicates, embeds and stores records. The batch never
// fails as a whole; every record gets an item result.
func (s *Service) Ingest(ctx context.Context, records []domlisting.RawRecord) dombatch.Report {
	report := dombatch.NewReport(len(records))

	if len(records) > s.maxBatchSize {
		err := domain.NewValidationError("listings",
			fmt.Sprintf("batch of %d exceeds maximum %d", len(records), s.maxBatchSize))
		for i := range records {
			s.record(&report, dombatch.NewFailed(i, "", err))
		}
		return report
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	for i, raw := range records {
		if err := ctx.Err(); err != nil {
			s.record(&report, dombatch.NewFailed(i, "", fmt.Errorf("ingest aborted: %w", err)))
			continue
		}
		s.record(&report, s.ingestOne(ctx, i, raw))
	}

	s.logger.Info("Ingest completed",
		zap.Int("added", report.Added),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (s *Service) ingestOne(ctx context.Context, i int, raw domlisting.RawRecord) dombatch.Result {
	l, err := domlisting.Normalize(raw)
	if err != nil {
		return dombatch.NewFailed(i, "", err)
	}

	exists, err := s.repo.Exists(ctx, l.ID())
	if err != nil {
		return dombatch.NewFailed(i, l.ID(), fmt.Errorf("check existing: %w", err))
	}
	if exists {
		return dombatch.NewSkipped(i, l.ID())
	}

	vec, err := s.embed.Embed(ctx, l.FullText())
	if err != nil {
		return dombatch.NewFailed(i, l.ID(), err)
	}
	l = l.WithVector(vec)

	if err := s.repo.Put(ctx, &l); err != nil {
		return dombatch.NewFailed(i, l.ID(), fmt.Errorf("store listing: %w", err))
	}
	return dombatch.NewAdded(i, l.ID())
}

func (s *Service) record(report *dombatch.Report, res dombatch.Result) {
	report.Record(res)
	metrics.IngestItemsTotal.WithLabelValues(string(res.Status())).Inc()
	if res.Status() == dombatch.StatusFailed {
		s.logger.Warn("Listing rejected",
			zap.Int("index", res.Index()),
			zap.String("id", res.ID()),
			zap.Error(res.Err()),
		)
	}
}

// BuildIndex creates the native nearest-neighbor index. Failure is reported as
// *domain.IndexBuildError and never affects search correctness.
func (s *Service) BuildIndex(ctx context.Context) error {
	err := s.buildIndex(ctx)
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("failed").Inc()
		s.logger.Warn("Index build failed, searches will use the scan path", zap.Error(err))
		return &domain.IndexBuildError{Err: err}
	}
	metrics.IndexBuildsTotal.WithLabelValues("ready").Inc()
	s.logger.Info("Index ready", zap.String("algorithm", s.index.Algorithm))
	return nil
}

func (s *Service) buildIndex(ctx context.Context) error {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	if n < s.index.MinRows {
		return fmt.Errorf("%d listings stored, at least %d required", n, s.index.MinRows)
	}
	if err := s.repo.CreateIndex(ctx, s.index); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Search returns the k listings most similar to vector. The native index is
// used when present; any native failure falls back to a full cosine scan.
func (s *Service) Search(ctx context.Context, vector []float32, k int) (Result, error) {
	if k <= 0 {
		return Result{}, domain.NewValidationError("k", "must be a positive integer")
	}
	if len(vector) != s.embed.Dimension() {
		return Result{}, domain.NewValidationError("vector",
			fmt.Sprintf("dimension %d does not match configured %d", len(vector), s.embed.Dimension()))
	}

	strategy := s.pick(ctx)
	hits, err := strategy.search(ctx, vector, k)
	if err != nil && strategy.name() == similarity.Native {
		serr := &domain.SearchError{Err: err}
		metrics.SearchFallbacksTotal.Inc()
		s.logger.Warn("Native search failed, falling back to scan", zap.Error(serr))
		strategy = scanStrategy{repo: s.repo}
		hits, err = strategy.search(ctx, vector, k)
	}
	if err != nil {
		return Result{}, err
	}

	metrics.SearchTotal.WithLabelValues(string(strategy.name())).Inc()
	return Result{Hits: similarity.Rank(hits, k), Strategy: strategy.name()}, nil
}

// pick selects the native path once the index exists and has caught up with
// the stored rows. Engines without a query module answer the capability check
// with an error; that means scan.
func (s *Service) pick(ctx context.Context) searchStrategy {
	ok, err := s.repo.IndexReady(ctx)
	if err != nil {
		s.logger.Debug("Index capability check failed", zap.Error(err))
		return scanStrategy{repo: s.repo}
	}
	if !ok {
		return scanStrategy{repo: s.repo}
	}
	return nativeStrategy{repo: s.repo}
}

// Count returns the number of stored listings.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return n, nil
}

// Reset drops the index and every stored listing.
func (s *Service) Reset(ctx context.Context) error {
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	if err := s.repo.Reset(ctx); err != nil {
		return fmt.Errorf("reset listings: %w", err)
	}
	s.logger.Info("Listing store reset")
	return nil
}
