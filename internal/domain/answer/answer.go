// Package answer holds the validated query request and the JSON-safe answer
// returned by the retrieval-augmented answerer.
package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/estaterag/internal/domain"
)

// Query parameter limits.
const (
	// MaxQueryLength is the maximum allowed query length in bytes.
	MaxQueryLength = 4096
	// DefaultK is applied by callers that let k be omitted.
	DefaultK = 5
	MaxK     = 50
)

// NoMatchText is the answer text when retrieval yields nothing.
const NoMatchText = "No matching listings were found."

// Request is a validated answer request.
type Request struct {
	query string
	k     int
}

// NewRequest validates a query and its result count.
func NewRequest(query string, k int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, domain.NewValidationError("query", "is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, domain.NewValidationError("query", fmt.Sprintf("too long (max %d bytes)", MaxQueryLength))
	}
	if k <= 0 {
		return Request{}, domain.NewValidationError("k", "must be positive")
	}
	if k > MaxK {
		return Request{}, domain.NewValidationError("k", fmt.Sprintf("must be at most %d", MaxK))
	}
	return Request{query: query, k: k}, nil
}

// Query returns the trimmed query text.
func (r Request) Query() string { return r.query }

// K returns the number of listings to retrieve.
func (r Request) K() int { return r.k }

// Retrieved is one grounding candidate passed to the completion model.
type Retrieved struct {
	ID       string  `json:"id"`
	Score    float64 `json:"score"`
	FullText string  `json:"full_text"`
}

// Answer is the response to a natural-language query. Every field is plain
// JSON data.
type Answer struct {
	Query      string      `json:"query"`
	AnswerText string      `json:"answer_text"`
	Sources    []string    `json:"sources"`
	K          int         `json:"k"`
	Retrieved  []Retrieved `json:"retrieved"`
}

// Empty returns the answer for a query that matched no listings.
func Empty(query string, k int) Answer {
	return Answer{
		Query:      query,
		AnswerText: NoMatchText,
		Sources:    []string{},
		K:          k,
		Retrieved:  []Retrieved{},
	}
}
