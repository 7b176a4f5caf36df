package estaterag

import "github.com/kailas-cloud/estaterag/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation        = domain.ErrValidation
	ErrEmbedding         = domain.ErrEmbedding
	ErrEmbeddingProvider = domain.ErrEmbeddingProvider
	ErrIndexBuild        = domain.ErrIndexBuild
	ErrCompletion        = domain.ErrCompletion
	ErrTimeout           = domain.ErrTimeout
)

// ValidationError names the field that made a record or query unusable.
type ValidationError = domain.ValidationError
