// Package memory is an in-process db.Store: hash rows, KV with TTL, and FT-style
// indexes answered by exact cosine KNN. Used by the memory driver and tests.
package memory

import (
	"context"
	"errors"
	"maps"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/estaterag/internal/db"
	"github.com/kailas-cloud/estaterag/internal/domain/similarity"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

type kvEntry struct {
	value   []byte
	expires time.Time
}

// Store is a concurrency-safe in-memory store.
type Store struct {
	mu       sync.RWMutex
	rows     map[string]map[string]string
	kv       map[string]kvEntry
	indexes  map[string]*db.IndexDefinition
	noSearch bool
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithoutSearch emulates an engine without a query module: index operations fail.
func WithoutSearch() Option {
	return func(s *Store) { s.noSearch = true }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		rows:    make(map[string]map[string]string),
		kv:      make(map[string]kvEntry),
		indexes: make(map[string]*db.IndexDefinition),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// HSet merges fields into the hash at key under one write lock.
func (s *Store) HSet(_ context.Context, key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[key]
	if !ok {
		row = make(map[string]string, len(fields))
		s.rows[key] = row
	}
	maps.Copy(row, fields)
	return nil
}

// HGetAll returns a copy of the hash. A missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.rows[key]), nil
}

// HGetAllMulti returns copies of several hashes.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = maps.Clone(s.rows[k])
		if out[i] == nil {
			out[i] = map[string]string{}
		}
	}
	return out, nil
}

// Del removes hash and KV keys. Missing keys are ignored.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.rows, k)
		delete(s.kv, k)
	}
	return nil
}

// Exists reports whether a hash or live KV key exists.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.rows[key]; ok {
		return true, nil
	}
	_, ok := s.liveKV(key)
	return ok, nil
}

// Scan returns hash keys matching a glob pattern, sorted.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.rows {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Get returns a KV value or db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.liveKV(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a KV value; ttl <= 0 never expires.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := kvEntry{value: append([]byte(nil), value...)}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.kv[key] = e
	return nil
}

func (s *Store) liveKV(key string) (kvEntry, bool) {
	e, ok := s.kv[key]
	if !ok {
		return kvEntry{}, false
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		return kvEntry{}, false
	}
	return e, true
}

// CreateIndex registers an index definition.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if s.noSearch {
		return &db.Error{Op: db.OpCreateIndex, Err: db.ErrSearchUnavailable}
	}
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	cp.Prefixes = append([]string(nil), def.Prefixes...)
	cp.Fields = append([]db.IndexField(nil), def.Fields...)
	s.indexes[def.Name] = &cp
	return nil
}

// DropIndex removes an index definition; rows are kept.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether an index is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	if s.noSearch {
		return false, &db.Error{Op: db.OpIndexInfo, Err: db.ErrSearchUnavailable}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

// IndexReady equals IndexExists: rows are scored at query time, so a
// registered index never lags behind the data.
func (s *Store) IndexReady(ctx context.Context, name string) (bool, error) {
	return s.IndexExists(ctx, name)
}

// SearchKNN scores every indexed row against the query vector. Rows whose vector
// does not match the index dimension are not indexed, as in Redis.
func (s *Store) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if s.noSearch {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrSearchUnavailable}
	}
	if err := q.Validate(); err != nil {
		return nil, db.Wrap(db.OpSearch, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.indexes[q.IndexName]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	vf, ok := def.VectorField()
	if !ok || vf.Name != q.Field() {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("index has no vector field")}
	}
	if len(q.Vector) != vf.VectorDim {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("query vector dimension mismatch")}
	}

	entries := make([]db.SearchEntry, 0)
	for key, row := range s.rows {
		if !hasAnyPrefix(key, def.Prefixes) {
			continue
		}
		vec, err := db.DecodeVector(row[vf.Name])
		if err != nil || len(vec) != vf.VectorDim {
			continue
		}
		entries = append(entries, db.SearchEntry{
			Key:    key,
			Score:  similarity.Cosine(q.Vector, vec),
			Fields: project(row, q.ReturnFields),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Key < entries[j].Key
	})
	total := len(entries)
	if len(entries) > q.K {
		entries = entries[:q.K]
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func hasAnyPrefix(key string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func project(row map[string]string, fields []string) map[string]string {
	if len(fields) == 0 {
		return maps.Clone(row)
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		if v, ok := row[f]; ok {
			out[f] = v
		}
	}
	return out
}
