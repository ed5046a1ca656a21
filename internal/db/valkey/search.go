package valkey

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/slatesearch/internal/db"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Entry scores carry the raw __vector_score; callers decide how to normalize it.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	field := q.VectorField
	if field == "" {
		field = db.DefaultVectorField
	}

	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB AS %s]", q.K, field, db.ScoreField)
	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		// the score alias must be returned explicitly once RETURN narrows the fields
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)+1))
		args = append(args, q.ReturnFields...)
		args = append(args, db.ScoreField)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw)
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			return nil, fmt.Errorf("parse key at %d: %w", i, err)
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			return nil, fmt.Errorf("parse fields of %s: %w", key, err)
		}

		entry := db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		}

		scoreStr, ok := entry.Fields[db.ScoreField]
		if !ok {
			return nil, fmt.Errorf("entry %s: missing %s", key, db.ScoreField)
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			return nil, fmt.Errorf("entry %s: parse %s: %w", key, db.ScoreField, err)
		}
		entry.Score = score
		delete(entry.Fields, db.ScoreField)

		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func vectorToBytes(v []float32) string {
	return rueidis.BinaryString(db.EncodeVector(v))
}
