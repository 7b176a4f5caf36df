package db

import "errors"

// KNNQuery asks for the K rows nearest to Vector. VectorField defaults to "vector".
type KNNQuery struct {
	IndexName    string
	VectorField  string
	Vector       []float32
	K            int
	ReturnFields []string
}

// Validate rejects queries no engine can run.
func (q *KNNQuery) Validate() error {
	switch {
	case q.IndexName == "":
		return errors.New("index name is required")
	case len(q.Vector) == 0:
		return errors.New("vector is required")
	case q.K <= 0:
		return errors.New("k must be positive")
	}
	return nil
}

// Field returns the vector field to search.
func (q *KNNQuery) Field() string {
	if q.VectorField == "" {
		return "vector"
	}
	return q.VectorField
}

// SearchResult holds the hits of one KNN query, nearest first.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is one hit. Score is cosine similarity in [-1, 1].
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// SimilarityFromDistance converts a cosine distance in [0, 2] to similarity.
func SimilarityFromDistance(d float64) float64 {
	return 1 - d
}
