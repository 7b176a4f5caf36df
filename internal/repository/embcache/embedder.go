// Package embcache memoizes embeddings in the KV side of the listing store, so
// re-ingesting a file or repeating a query does not pay for the provider call.
package embcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/db"
	"github.com/kailas-cloud/estaterag/internal/domain"
)

// Outcome labels for the cache counter.
const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config scopes cache entries. Model and dimension are part of the key so a
// model switch never serves stale vectors.
type Config struct {
	KeyPrefix  string
	Model      string
	Dimensions int
	TTL        time.Duration // 0 = no expiry
}

// CachedEmbedder wraps a domain.Embedder with a read-through cache.
type CachedEmbedder struct {
	inner  domain.Embedder
	kv     kvStore
	dim    int
	ttl    time.Duration
	ns     string
	total  *prometheus.CounterVec
	logger *zap.Logger
}

// New creates the caching decorator. total counts lookups by "result"
// (hit, miss, error) and may be nil.
func New(inner domain.Embedder, s kvStore, cfg Config, total *prometheus.CounterVec, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		kv:     s,
		dim:    cfg.Dimensions,
		ttl:    cfg.TTL,
		ns:     cfg.KeyPrefix + "emb_cache:" + cfg.Model + ":" + strconv.Itoa(cfg.Dimensions) + ":",
		total:  total,
		logger: logger,
	}
}

// Embed serves a stored vector when one exists, otherwise calls the provider and
// stores the result. A hit reports zero tokens. Cache failures only cost a
// provider call.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.key(text)

	vec, result := c.lookup(ctx, key)
	c.count(result)
	if result == resultHit {
		return domain.EmbeddingResult{Embedding: vec, Cached: true}, nil
	}

	res, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	// Malformed vectors are left to the gateway to reject; never cache them.
	if len(res.Embedding) == c.dim {
		if err := c.kv.Set(ctx, key, []byte(db.EncodeVector(res.Embedding)), c.ttl); err != nil {
			c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
		}
	}
	return res, nil
}

// HealthCheck forwards to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // passthrough
	}
	return nil
}

// key is the namespace plus the 64-bit xxHash of the text, like listing ids.
func (c *CachedEmbedder) key(text string) string {
	return fmt.Sprintf("%s%016x", c.ns, xxhash.Sum64String(text))
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, string) {
	data, err := c.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, resultMiss
	case err != nil:
		c.logger.Warn("Failed to read cached embedding", zap.String("key", key), zap.Error(err))
		return nil, resultError
	}

	vec, err := db.DecodeVector(string(data))
	if err != nil || len(vec) != c.dim {
		c.logger.Warn("Discarding malformed cached embedding",
			zap.String("key", key), zap.Int("bytes", len(data)), zap.Error(err))
		return nil, resultMiss
	}
	return vec, resultHit
}

func (c *CachedEmbedder) count(result string) {
	if c.total != nil {
		c.total.WithLabelValues(result).Inc()
	}
}
