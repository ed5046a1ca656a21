package record

import (
	"context"
	"testing"

	"github.com/kailas-cloud/slatesearch/internal/db"
)

const testVectorDim = 4

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	delFn         func(ctx context.Context, key string) error
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn   func(ctx context.Context, name string) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	if m.dropIndexFn != nil {
		return m.dropIndexFn(ctx, name)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "slate:", IndexConfig{Dimensions: testVectorDim, M: 16, EFConstruct: 200})
	return repo, ms
}

func testVector() []float32 {
	return []float32{0.1, 0.2, 0.3, 0.4}
}
