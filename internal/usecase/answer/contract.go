package answer

import (
	"context"

	"github.com/kailas-cloud/estaterag/internal/domain"
	"github.com/kailas-cloud/estaterag/internal/usecase/listing"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher retrieves the nearest listings for a query vector.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int) (listing.Result, error)
}

// Completer turns a grounded prompt into free text.
type Completer interface {
	Complete(ctx context.Context, prompt domain.Prompt) (domain.CompletionResult, error)
}
