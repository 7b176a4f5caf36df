package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/estaterag/internal/db"
)

var (
	unknownIndexMsgs  = []string{"unknown index name", "no such index", "not found"}
	noSearchModuleMsg = []string{"unknown command"}
)

// ftErr maps an FT.* reply error onto the db sentinels.
func ftErr(op string, err error) error {
	if isRedisErr(err, noSearchModuleMsg...) {
		return db.Wrap(op, db.ErrSearchUnavailable)
	}
	return db.Wrap(op, err)
}

// CreateIndex runs FT.CREATE for def. An existing index yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return db.Wrap(db.OpCreateIndex, err)
	}

	err = s.do(ctx, s.b().Arbitrary("FT.CREATE").Args(args...).Build()).Error()
	if isRedisErr(err, "already exists") {
		return db.ErrIndexExists
	}
	return ftErr(db.OpCreateIndex, err)
}

// DropIndex removes an FT index by name. Listing rows are kept.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	err := s.do(ctx, s.b().Arbitrary("FT.DROPINDEX").Args(name).Build()).Error()
	if isRedisErr(err, unknownIndexMsgs...) {
		return db.ErrIndexNotFound
	}
	return ftErr(db.OpDropIndex, err)
}

// IndexExists probes FT.INFO. Redis and valkey-search word "no such index"
// differently; both count as absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	err := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build()).Error()
	switch {
	case err == nil:
		return true, nil
	case isRedisErr(err, unknownIndexMsgs...):
		return false, nil
	default:
		return false, ftErr(db.OpIndexInfo, err)
	}
}

// IndexReady reports whether the index exists and has finished scanning the
// keys that were present at FT.CREATE time. FT.CREATE returns before that
// background scan ends, and KNN over a partial index misses rows.
func (s *Store) IndexReady(ctx context.Context, name string) (bool, error) {
	resp := s.do(ctx, s.b().Arbitrary("FT.INFO").Args(name).Build())
	err := resp.Error()
	switch {
	case isRedisErr(err, unknownIndexMsgs...):
		return false, nil
	case err != nil:
		return false, ftErr(db.OpIndexInfo, err)
	}
	info, err := resp.AsMap()
	if err != nil {
		// unrecognized reply shape; the index is there
		return true, nil
	}
	return indexingDone(info), nil
}

// indexingDone reads the backfill state out of an FT.INFO reply. Redis
// reports indexing and percent_indexed; valkey-search reports state and
// backfill_in_progress.
func indexingDone(info map[string]rueidis.RedisMessage) bool {
	if m, ok := info["indexing"]; ok {
		if v, ok := infoNumber(m); ok && v != 0 {
			return false
		}
	}
	if m, ok := info["percent_indexed"]; ok {
		if v, ok := infoNumber(m); ok && v < 1 {
			return false
		}
	}
	if m, ok := info["backfill_in_progress"]; ok {
		if v, ok := infoNumber(m); ok && v != 0 {
			return false
		}
	}
	if m, ok := info["state"]; ok {
		if st, err := m.ToString(); err == nil && st != "ready" {
			return false
		}
	}
	return true
}

// infoNumber accepts integer, double and string encodings of a number.
func infoNumber(m rueidis.RedisMessage) (float64, bool) {
	if m.IsInt64() {
		v, err := m.AsInt64()
		return float64(v), err == nil
	}
	v, err := m.AsFloat64()
	return v, err == nil
}

// buildCreateArgs renders def as FT.CREATE arguments:
//
//	<name> ON HASH [PREFIX n p...] SCHEMA <field> TAG|NUMERIC|VECTOR <algo> <nargs> <attrs...> ...
func buildCreateArgs(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	storage := def.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args := []string{def.Name, "ON", string(storage)}
	if n := len(def.Prefixes); n > 0 {
		args = append(append(args, "PREFIX", strconv.Itoa(n)), def.Prefixes...)
	}
	args = append(args, "SCHEMA")

	for i := range def.Fields {
		f := &def.Fields[i]
		switch f.Type {
		case db.IndexFieldNumeric:
			args = append(args, f.Name, "NUMERIC")
		case db.IndexFieldTag:
			args = append(args, f.Name, "TAG")
		case db.IndexFieldVector:
			attrs := vectorAttrs(f)
			args = append(args, f.Name, "VECTOR", string(f.VectorAlgo), strconv.Itoa(len(attrs)))
			args = append(args, attrs...)
		default:
			return nil, fmt.Errorf("field %s: unknown type %d", f.Name, f.Type)
		}
	}
	return args, nil
}

// vectorAttrs lists the VECTOR attribute pairs. Zero tuning values are
// omitted so the engine defaults apply.
func vectorAttrs(f *db.IndexField) []string {
	distance := f.VectorDistance
	if distance == "" {
		distance = db.DistanceCosine
	}
	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}
	opt := func(name string, v int) {
		if v > 0 {
			attrs = append(attrs, name, strconv.Itoa(v))
		}
	}
	switch f.VectorAlgo {
	case db.VectorHNSW:
		opt("M", f.VectorM)
		opt("EF_CONSTRUCTION", f.VectorEFConstruct)
	case db.VectorFlat:
		opt("BLOCK_SIZE", f.VectorBlockSize)
	}
	return attrs
}
