package ollama

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockClient struct {
	calls [][]string
	err   error
	drop  bool
}

func (m *mockClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	m.calls = append(m.calls, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	if m.drop {
		out = out[:len(out)-1]
	}
	return out, nil
}

func newTestEmbedder(t *testing.T, c *mockClient, batch int) *Embedder {
	t.Helper()
	e, err := newWithClient(c, &Config{Model: "bge-large", BatchSize: batch, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("newWithClient: %v", err)
	}
	return e
}

// --- Tests ---

func TestBatchEmbed_KeepsOrderAcrossBatches(t *testing.T) {
	c := &mockClient{}
	e := newTestEmbedder(t, c, 2)

	res, err := e.BatchEmbed(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	for i, want := range []float32{1, 2, 3} {
		if res.Embeddings[i][0] != want {
			t.Errorf("embedding[%d] = %v, want %v", i, res.Embeddings[i], want)
		}
	}
	if len(c.calls) != 2 {
		t.Errorf("expected 2 client calls for batch size 2, got %d", len(c.calls))
	}
}

func TestBatchEmbed_KeepsNewLines(t *testing.T) {
	c := &mockClient{}
	e := newTestEmbedder(t, c, 0)

	if _, err := e.BatchEmbed(context.Background(), []string{"a\nb"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.calls[0][0] != "a\nb" {
		t.Errorf("text altered: %q", c.calls[0][0])
	}
}

func TestEmbed_Single(t *testing.T) {
	e := newTestEmbedder(t, &mockClient{}, 0)

	res, err := e.Embed(context.Background(), "four")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embedding) != 1 || res.Embedding[0] != 4 {
		t.Errorf("embedding = %v", res.Embedding)
	}
}

func TestBatchEmbed_ClientError(t *testing.T) {
	e := newTestEmbedder(t, &mockClient{err: errors.New("model not found")}, 0)

	_, err := e.BatchEmbed(context.Background(), []string{"a"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	c := &mockClient{}
	e := newTestEmbedder(t, c, 0)

	res, err := e.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil || len(c.calls) != 0 {
		t.Errorf("empty input must not reach the client")
	}
}

func TestBatchEmbed_CountMismatch(t *testing.T) {
	e := newTestEmbedder(t, &mockClient{drop: true}, 0)

	_, err := e.BatchEmbed(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
}
