package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/estaterag/internal/db"
)

const scoreAlias = "__vector_score"

// SearchKNN runs a DIALECT 2 KNN query via FT.SEARCH, nearest first.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, db.Wrap(db.OpSearch, err)
	}

	raw, err := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(knnArgs(q)...).Build()).ToArray()
	if isRedisErr(err, unknownIndexMsgs...) {
		return nil, db.ErrIndexNotFound
	}
	if err != nil {
		return nil, ftErr(db.OpSearch, err)
	}
	return parseKNNReply(raw)
}

func knnArgs(q *db.KNNQuery) []string {
	k := strconv.Itoa(q.K)
	args := []string{q.IndexName, "*=>[KNN " + k + " @" + q.Field() + " $BLOB AS " + scoreAlias + "]"}
	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1))
		args = append(append(args, q.ReturnFields...), scoreAlias)
	}
	return append(args,
		"SORTBY", scoreAlias,
		"LIMIT", "0", k,
		"PARAMS", "2", "BLOB", db.EncodeVector(q.Vector),
		"DIALECT", "2",
	)
}

// parseKNNReply reads the RESP2 reply [total, key1, [f, v, ...], key2, ...].
// Rows that fail to decode are skipped.
func parseKNNReply(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	res := &db.SearchResult{}
	if len(raw) == 0 {
		return res, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, db.Wrap(db.OpSearch, fmt.Errorf("parse total: %w", err))
	}
	res.Total = int(total)

	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		pairs, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		e := db.SearchEntry{Key: key, Fields: fieldMap(pairs)}
		if d, err := strconv.ParseFloat(e.Fields[scoreAlias], 64); err == nil {
			e.Score = db.SimilarityFromDistance(d)
		}
		delete(e.Fields, scoreAlias)
		res.Entries = append(res.Entries, e)
	}
	return res, nil
}

func fieldMap(pairs []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(pairs)/2)
	for j := 0; j+1 < len(pairs); j += 2 {
		name, nerr := pairs[j].ToString()
		value, verr := pairs[j+1].ToString()
		if nerr == nil && verr == nil {
			m[name] = value
		}
	}
	return m
}
