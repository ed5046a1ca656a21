package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/slatesearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "slate:"), ms
}

func testVector() []float32 {
	vec := make([]float32, 4)
	for i := range vec {
		vec[i] = 0.1
	}
	return vec
}
