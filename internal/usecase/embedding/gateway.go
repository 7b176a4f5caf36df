// Package embedding turns text into validated, fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kailas-cloud/estaterag/internal/domain"
)

// Gateway bounds each embedding call with a timeout and rejects malformed
// output. Every failure is a *domain.EmbeddingError. There are no retries.
type Gateway struct {
	embedder  domain.Embedder
	dimension int
	timeout   time.Duration
}

// NewGateway creates a gateway. timeout <= 0 disables the per-call bound.
func NewGateway(e domain.Embedder, dimension int, timeout time.Duration) *Gateway {
	return &Gateway{embedder: e, dimension: dimension, timeout: timeout}
}

// Dimension returns the vector size every embedding must have.
func (g *Gateway) Dimension() int { return g.dimension }

// Embed returns the embedding of text.
func (g *Gateway) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmbeddingError{Err: errors.New("input text is empty")}
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.embedder.Embed(callCtx, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &domain.EmbeddingError{Err: fmt.Errorf("%w after %s: %w", domain.ErrTimeout, g.timeout, err)}
		}
		return nil, &domain.EmbeddingError{Err: err}
	}

	if err := g.validate(res.Embedding); err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}
	return res.Embedding, nil
}

// HealthCheck forwards to the embedder when it supports health checks.
func (g *Gateway) HealthCheck(ctx context.Context) error {
	if hc, ok := g.embedder.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // passthrough
	}
	return nil
}

func (g *Gateway) validate(v []float32) error {
	if len(v) == 0 {
		return errors.New("provider returned an empty embedding")
	}
	if len(v) != g.dimension {
		return fmt.Errorf("embedding dimension %d does not match configured %d", len(v), g.dimension)
	}
	for i, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("embedding has non-finite value at position %d", i)
		}
	}
	return nil
}
