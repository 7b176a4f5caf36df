package listing

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estaterag/internal/db"
	"github.com/kailas-cloud/estaterag/internal/db/memory"
	"github.com/kailas-cloud/estaterag/internal/domain"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
	replisting "github.com/kailas-cloud/estaterag/internal/repository/listing"
)

const testDim = 32

// wordEmbedder is a deterministic bag-of-words embedder: every lowercase
// token adds 1 to the bucket its hash selects.
type wordEmbedder struct {
	dim   int
	calls atomic.Int64
	fail  map[string]error
}

func newWordEmbedder() *wordEmbedder { return &wordEmbedder{dim: testDim} }

func (e *wordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	for substr, err := range e.fail {
		if strings.Contains(text, substr) {
			return nil, err
		}
	}
	v := make([]float32, e.dim)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		v[xxhash.Sum64String(w)%uint64(e.dim)]++
	}
	return v, nil
}

func (e *wordEmbedder) Dimension() int { return e.dim }

// brokenSearchStore reports an index but fails every KNN query.
type brokenSearchStore struct {
	*memory.Store
}

func (b *brokenSearchStore) SearchKNN(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
	return nil, &db.Error{Op: db.OpSearch, Err: errors.New("syntax error")}
}

func newBrokenRepo(ms *memory.Store) *replisting.Repo {
	return replisting.New(&brokenSearchStore{Store: ms}, "test:", testDim)
}

// backfillingStore has an index that is still scanning pre-existing rows:
// KNN sees only the first row it has reached.
type backfillingStore struct {
	*memory.Store
	knnCalls atomic.Int32
}

func (b *backfillingStore) IndexReady(context.Context, string) (bool, error) { return false, nil }

func (b *backfillingStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	b.knnCalls.Add(1)
	res, err := b.Store.SearchKNN(ctx, q)
	if err == nil && len(res.Entries) > 1 {
		res.Entries = res.Entries[:1]
	}
	return res, err
}

func newTestService(t *testing.T, s *memory.Store, emb *wordEmbedder) *Service {
	t.Helper()
	repo := replisting.New(s, "test:", testDim)
	return New(repo, emb, domain.DefaultIndexConfig(), zap.NewNop())
}

func sampleRecords() []domlisting.RawRecord {
	return []domlisting.RawRecord{
		{"neighborhood": "Green Oaks", "price": 800000, "bedrooms": 3, "bathrooms": 2, "house_size": 2000,
			"transit_minutes": 5, "description": "Modern kitchen, close to the light rail station"},
		{"neighborhood": "Harbor View", "price": 1450000, "bedrooms": 3, "bathrooms": 2.5, "house_size": 1800,
			"transit_minutes": 3, "description": "Modern 3-bedroom condo near transit with bay views"},
		{"neighborhood": "Maple Ridge", "price": 2100000, "bedrooms": 5, "bathrooms": 4, "house_size": 4200,
			"description": "Luxury estate with pool and wine cellar"},
		{"neighborhood": "Old Town", "price": 650000, "bedrooms": 2, "bathrooms": 1,
			"transit_minutes": 8, "description": "Historic brick rowhouse"},
		{"neighborhood": "Sunset Hills", "price": 1200000, "bedrooms": 4, "bathrooms": 3, "school_rating": 9.1,
			"description": "Family home near top rated schools"},
		{"neighborhood": "Riverside", "price": 990000, "bedrooms": 3, "bathrooms": 2,
			"transit_minutes": 12, "description": "Renovated bungalow on a quiet street"},
		{"neighborhood": "Downtown", "price": 1350000, "bedrooms": 3, "bathrooms": 2, "transit_minutes": 1,
			"description": "Modern loft above the subway, walk everywhere"},
		{"neighborhood": "Cedar Park", "price": 720000, "bedrooms": 3, "bathrooms": 1.5,
			"description": "Starter home with a large yard"},
		{"neighborhood": "Lakeside", "price": 1800000, "bedrooms": 4, "bathrooms": 3.5,
			"description": "Waterfront modern villa with private dock"},
		{"neighborhood": "Northgate", "price": 560000, "bedrooms": 1, "bathrooms": 1, "transit_minutes": 4,
			"description": "Compact studio near the bus terminal"},
	}
}
