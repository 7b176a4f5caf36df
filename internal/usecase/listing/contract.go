package listing

import (
	"context"

	"github.com/kailas-cloud/estaterag/internal/domain"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
	"github.com/kailas-cloud/estaterag/internal/domain/similarity"
)

// Repository defines the storage contract for listings.
type Repository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Put(ctx context.Context, l *domlisting.Listing) error
	All(ctx context.Context) ([]domlisting.Listing, error)
	Count(ctx context.Context) (int, error)
	CreateIndex(ctx context.Context, cfg domain.IndexConfig) error
	IndexReady(ctx context.Context) (bool, error)
	SearchKNN(ctx context.Context, vector []float32, k int) ([]similarity.Hit, error)
	Reset(ctx context.Context) error
}

// Embedder vectorizes listing text into validated, fixed-dimension vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}
