package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/slatesearch/internal/db"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/match"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a search repository over the key space rooted at prefix.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Nearest returns up to topK records of kind k closest to vector, carrying the
// requested stored fields and the store's raw relevance value.
func (r *Repo) Nearest(
	ctx context.Context, k kind.Kind, vector []float32, topK int, fields []string,
) ([]match.Raw, error) {
	q := &db.KNNQuery{
		IndexName:    k.IndexName(r.prefix),
		Vector:       vector,
		K:            topK,
		ReturnFields: fields,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", k, err)
	}

	return toMatches(sr, k.KeyPrefix(r.prefix)), nil
}

// toMatches converts store entries into raw matches keyed by record id.
func toMatches(sr *db.SearchResult, keyPrefix string) []match.Raw {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	out := make([]match.Raw, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		out = append(out, match.Raw{
			ID:        strings.TrimPrefix(entry.Key, keyPrefix),
			Fields:    entry.Fields,
			Relevance: entry.Score,
		})
	}
	return out
}
