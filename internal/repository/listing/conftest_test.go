package listing

import (
	"context"
	"testing"

	"github.com/kailas-cloud/estaterag/internal/db"
	"github.com/kailas-cloud/estaterag/internal/db/memory"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
)

const testDim = 4

// failingStore wraps the memory store and injects errors per operation.
type failingStore struct {
	*memory.Store
	hsetErr   error
	scanErr   error
	searchErr error
}

func (f *failingStore) HSet(ctx context.Context, key string, fields map[string]string) error {
	if f.hsetErr != nil {
		return f.hsetErr
	}
	return f.Store.HSet(ctx, key, fields)
}

func (f *failingStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	return f.Store.Scan(ctx, pattern)
}

func (f *failingStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.Store.SearchKNN(ctx, q)
}

func newTestRepo(t *testing.T) (*Repo, *memory.Store) {
	t.Helper()
	ms := memory.New()
	return New(ms, "test:", testDim), ms
}

func testListing(t *testing.T, neighborhood string, price float64, vec []float32) domlisting.Listing {
	t.Helper()
	l, err := domlisting.Normalize(domlisting.RawRecord{
		"neighborhood":    neighborhood,
		"price":           price,
		"bedrooms":        3,
		"bathrooms":       2,
		"school_rating":   8.5,
		"transit_minutes": 10,
		"description":     "Sunny corner unit",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return l.WithVector(vec)
}
