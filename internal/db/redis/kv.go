package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/estaterag/internal/db"
)

// Get reads a cache value. A nil reply maps to db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, db.Wrap(db.OpGet, err)
	}
	return data, nil
}

// Set stores value as a binary-safe string, with EX when ttl is positive.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := s.b().Set().Key(key).Value(rueidis.BinaryString(value))
	if ttl > 0 {
		return db.Wrap(db.OpSet, s.do(ctx, set.Ex(ttl).Build()).Error())
	}
	return db.Wrap(db.OpSet, s.do(ctx, set.Build()).Error())
}
