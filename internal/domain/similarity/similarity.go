// Package similarity defines the ranking contract shared by every search path.
package similarity

import (
	"math"
	"sort"

	"github.com/kailas-cloud/estaterag/internal/domain/listing"
)

// Strategy names the path that produced a result.
type Strategy string

// Search strategies.
const (
	// Native uses the storage engine's nearest-neighbor index.
	Native Strategy = "native"
	// Scan loads every row and ranks by cosine similarity in process.
	Scan Strategy = "scan"
)

const normEpsilon = 1e-12

// Hit is a ranked listing with its cosine similarity to the query.
type Hit struct {
	Listing listing.Listing
	Score   float64
}

// Cosine returns the cosine similarity of a and b, in [-1, 1].
// Mismatched or empty vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom < normEpsilon {
		return 0
	}
	return dot / denom
}

// Rank deduplicates hits by listing id (keeping the best score), orders them by
// score descending with ties broken by id ascending, and truncates to k.
func Rank(hits []Hit, k int) []Hit {
	if k <= 0 {
		return []Hit{}
	}
	best := make(map[string]int, len(hits))
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		id := h.Listing.ID()
		if i, ok := best[id]; ok {
			if h.Score > out[i].Score {
				out[i] = h
			}
			continue
		}
		best[id] = len(out)
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Listing.ID() < out[j].Listing.ID()
	})
	if len(out) > k {
		out = out[:k]
	}
	return out
}
