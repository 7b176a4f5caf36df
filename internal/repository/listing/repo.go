// Package listing persists listings as hash rows and manages their FT index.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/estaterag/internal/db"
	"github.com/kailas-cloud/estaterag/internal/domain"
	domlisting "github.com/kailas-cloud/estaterag/internal/domain/listing"
	"github.com/kailas-cloud/estaterag/internal/domain/similarity"
)

// store is the consumer interface for listing rows (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexReady(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/listing.Repository.
type Repo struct {
	store     store
	prefix    string
	dimension int
}

// New creates a listing repository. keyPrefix namespaces every key; dimension
// is the fixed vector size of the deployment.
func New(s store, keyPrefix string, dimension int) *Repo {
	return &Repo{store: s, prefix: keyPrefix + "listing:", dimension: dimension}
}

// IndexName returns the FT index name for listings.
func (r *Repo) IndexName() string { return r.prefix + "idx" }

func (r *Repo) key(id string) string { return r.prefix + id }

// Exists reports whether a listing with this id is stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", id, err)
	}
	return ok, nil
}

// Put writes a listing row in a single HSET. The vector must have the
// deployment dimension.
func (r *Repo) Put(ctx context.Context, l *domlisting.Listing) error {
	if l.ID() == "" {
		return domain.NewValidationError("id", "is required")
	}
	if l.Attributes().Neighborhood == "" {
		return domain.NewValidationError(domlisting.FieldNeighborhood, "is required")
	}
	if err := r.checkDimension(l.Vector()); err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.key(l.ID()), buildHashFields(l)); err != nil {
		return fmt.Errorf("hset %s: %w", l.ID(), err)
	}
	return nil
}

// All loads every stored listing with its vector.
func (r *Repo) All(ctx context.Context) ([]domlisting.Listing, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan listings: %w", err)
	}
	if len(keys) == 0 {
		return []domlisting.Listing{}, nil
	}
	rows, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	out := make([]domlisting.Listing, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		id := strings.TrimPrefix(keys[i], r.prefix)
		l, err := parseHashFields(id, row, true)
		if err != nil {
			return nil, fmt.Errorf("parse listing %s: %w", id, err)
		}
		if err := r.checkDimension(l.Vector()); err != nil {
			return nil, fmt.Errorf("listing %s: %w", id, err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Count returns the number of stored listings.
func (r *Repo) Count(ctx context.Context) (int, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan listings: %w", err)
	}
	return len(keys), nil
}

// CreateIndex builds the FT index over listing rows. An existing index is success.
func (r *Repo) CreateIndex(ctx context.Context, cfg domain.IndexConfig) error {
	algo, err := db.ParseVectorAlgorithm(cfg.Algorithm)
	if err != nil {
		return fmt.Errorf("index config: %w", err)
	}
	def, err := db.NewIndex(r.IndexName()).
		Prefix(r.prefix).
		Tag(domlisting.FieldNeighborhood).
		Numeric(domlisting.FieldPrice).
		Numeric(domlisting.FieldBedrooms).
		Vector(fieldVector, db.VectorSpec{
			Algorithm:   algo,
			Dim:         r.dimension,
			M:           cfg.M,
			EFConstruct: cfg.EFConstruction,
		}).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", def.Name, err)
	}
	return nil
}

// IndexExists reports whether the FT index is present.
func (r *Repo) IndexExists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.IndexName())
	if err != nil {
		return false, fmt.Errorf("index exists: %w", err)
	}
	return ok, nil
}

// IndexReady reports whether the FT index is present and fully backfilled.
func (r *Repo) IndexReady(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexReady(ctx, r.IndexName())
	if err != nil {
		return false, fmt.Errorf("index ready: %w", err)
	}
	return ok, nil
}

// SearchKNN asks the engine for the k nearest listings. Hits come back in
// engine order; callers re-rank.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]similarity.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.IndexName(),
		VectorField:  fieldVector,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	hits := make([]similarity.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := strings.TrimPrefix(e.Key, r.prefix)
		l, err := parseHashFields(id, e.Fields, false)
		if err != nil {
			return nil, fmt.Errorf("parse hit %s: %w", id, err)
		}
		hits = append(hits, similarity.Hit{Listing: l, Score: e.Score})
	}
	return hits, nil
}

// resetBatch bounds the number of keys per DEL.
const resetBatch = 500

// Reset drops the index (when the engine has one) and deletes every listing row.
func (r *Repo) Reset(ctx context.Context) error {
	// Without a search module IndexExists fails with db.ErrSearchUnavailable; nothing to drop then.
	if exists, err := r.store.IndexExists(ctx, r.IndexName()); err == nil && exists {
		if err := r.store.DropIndex(ctx, r.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return fmt.Errorf("drop index: %w", err)
		}
	}
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return fmt.Errorf("scan listings: %w", err)
	}
	for start := 0; start < len(keys); start += resetBatch {
		batch := keys[start:min(start+resetBatch, len(keys))]
		if err := r.store.Del(ctx, batch...); err != nil {
			return fmt.Errorf("delete listings: %w", err)
		}
	}
	return nil
}

func (r *Repo) checkDimension(v []float32) error {
	if len(v) != r.dimension {
		return domain.NewValidationError(fieldVector,
			fmt.Sprintf("dimension %d does not match configured %d", len(v), r.dimension))
	}
	return nil
}
