package listing

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/estaterag/internal/domain/similarity"
)

// searchStrategy is one way of producing nearest-neighbor candidates.
type searchStrategy interface {
	name() similarity.Strategy
	search(ctx context.Context, vector []float32, k int) ([]similarity.Hit, error)
}

// nativeStrategy delegates to the engine's KNN index.
type nativeStrategy struct{ repo Repository }

func (nativeStrategy) name() similarity.Strategy { return similarity.Native }

func (s nativeStrategy) search(ctx context.Context, vector []float32, k int) ([]similarity.Hit, error) {
	hits, err := s.repo.SearchKNN(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("native search: %w", err)
	}
	return hits, nil
}

// scanStrategy loads every row and scores it with cosine similarity.
type scanStrategy struct{ repo Repository }

func (scanStrategy) name() similarity.Strategy { return similarity.Scan }

func (s scanStrategy) search(ctx context.Context, vector []float32, _ int) ([]similarity.Hit, error) {
	all, err := s.repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan search: %w", err)
	}
	hits := make([]similarity.Hit, 0, len(all))
	for _, l := range all {
		hits = append(hits, similarity.Hit{Listing: l, Score: similarity.Cosine(vector, l.Vector())})
	}
	return hits, nil
}
