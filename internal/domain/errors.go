package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a malformed or incomplete input record.
	ErrValidation = errors.New("validation failed")
	// ErrEmbedding signals an unreachable embedding provider or malformed output.
	ErrEmbedding = errors.New("embedding failed")
	// ErrEmbeddingProvider signals an error response from the embedding API.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrIndexBuild signals a failed native index build (non-fatal).
	ErrIndexBuild = errors.New("index build failed")
	// ErrSearch signals a failed native search (triggers the fallback path).
	ErrSearch = errors.New("native search failed")
	// ErrCompletion signals an unreachable or failing completion provider.
	ErrCompletion = errors.New("completion failed")
	// ErrTimeout signals that an external call exceeded its deadline.
	ErrTimeout = errors.New("timeout")
)

// ValidationError names the field that made a record unusable.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// EmbeddingError wraps a provider failure or a rejected embedding.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("%s: %v", ErrEmbedding.Error(), e.Err)
}

func (e *EmbeddingError) Unwrap() []error { return []error{ErrEmbedding, e.Err} }

// IndexBuildError reports why the nearest-neighbor index could not be built.
type IndexBuildError struct {
	Err error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("%s: %v", ErrIndexBuild.Error(), e.Err)
}

func (e *IndexBuildError) Unwrap() []error { return []error{ErrIndexBuild, e.Err} }

// SearchError reports a native search failure that was answered by the fallback.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s: %v", ErrSearch.Error(), e.Err)
}

func (e *SearchError) Unwrap() []error { return []error{ErrSearch, e.Err} }

// CompletionError wraps a completion provider failure.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrCompletion.Error(), e.Err)
}

func (e *CompletionError) Unwrap() []error { return []error{ErrCompletion, e.Err} }
