package slatesearch

import (
	"context"
	"io"
	"strings"

	dombatch "github.com/kailas-cloud/slatesearch/internal/domain/batch"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/slatesearch/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/slatesearch/internal/usecase/indexing"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	res   result.Result
	err   error
	query string
}

func (m *mockSearchUC) Search(_ context.Context, query string) (result.Result, error) {
	m.query = query
	return m.res, m.err
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	indexed  []indexinguc.Item
	indexFn  func(items []indexinguc.Item) []dombatch.Result
	ingested string
	summary  dombatch.Summary
	rebuilt  []kind.Kind
	ensured  []kind.Kind
	stored   map[string]string
	removed  string
	err      error
}

func (m *mockIndexUC) Canonicalize(k kind.Kind, raw []byte) (indexinguc.Item, error) {
	s := string(raw)
	if !strings.HasPrefix(s, "{") {
		return indexinguc.Item{}, ErrInvalidRecord
	}
	return indexinguc.Item{ID: strings.Trim(s, "{}"), Text: string(k) + " " + s}, nil
}

func (m *mockIndexUC) EnsureIndexes(context.Context) ([]kind.Kind, error) {
	return m.ensured, m.err
}

func (m *mockIndexUC) Rebuild(_ context.Context, k kind.Kind) error {
	m.rebuilt = append(m.rebuilt, k)
	return m.err
}

func (m *mockIndexUC) Index(_ context.Context, _ kind.Kind, items []indexinguc.Item) []dombatch.Result {
	m.indexed = append(m.indexed, items...)
	if m.indexFn != nil {
		return m.indexFn(items)
	}
	out := make([]dombatch.Result, len(items))
	for i, it := range items {
		out[i] = dombatch.NewOK(it.ID)
	}
	return out
}

func (m *mockIndexUC) Ingest(
	_ context.Context, _ kind.Kind, r io.Reader, _ func([]dombatch.Result),
) (dombatch.Summary, error) {
	b, _ := io.ReadAll(r)
	m.ingested = string(b)
	return m.summary, m.err
}

func (m *mockIndexUC) Stored(context.Context, kind.Kind, string) (map[string]string, error) {
	return m.stored, m.err
}

func (m *mockIndexUC) Remove(_ context.Context, k kind.Kind, id string) error {
	m.removed = string(k) + ":" + id
	return m.err
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- lifecycle mocks ---

type mockStore struct {
	pingErr error
	closed  bool
}

func (m *mockStore) Ping(context.Context) error { return m.pingErr }
func (m *mockStore) Close()                     { m.closed = true }

type mockReleaser struct {
	released bool
}

func (m *mockReleaser) Release() { m.released = true }

// --- Embedder mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type mockCheckingEmbedder struct {
	mockEmbedder
	healthErr error
}

func (m *mockCheckingEmbedder) HealthCheck(context.Context) error { return m.healthErr }

func newTestClient(s *mockSearchUC, ix *mockIndexUC, h *mockHealthUC) *Client {
	obs, _ := newObserver(nil, nil)
	return &Client{
		store:     &mockStore{},
		producer:  &mockReleaser{},
		searchSvc: s,
		indexSvc:  ix,
		healthSvc: h,
		obs:       obs,
	}
}
