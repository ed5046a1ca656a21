package slatesearch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/slatesearch/internal/domain"
)

// Embedder converts text to vector embeddings. It is the model runtime the
// client loads and serializes inference through.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single call.
// Optional: if the Embedder also implements it, indexing uses it.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token count.
type EmbeddingResult struct {
	Embedding   []float32
	TotalTokens int
}

// BatchEmbeddingResult carries one vector per input text and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings  [][]float32
	TotalTokens int
}

// embedderAdapter wraps a public Embedder to satisfy domain.TextEmbedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{Embedding: r.Embedding, TotalTokens: r.TotalTokens}, nil
}

// BatchEmbed uses the inner batch call when available and falls back to one
// call per text otherwise.
func (a *embedderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if b, ok := a.inner.(BatchEmbedder); ok {
		r, err := b.BatchEmbed(ctx, texts)
		if err != nil {
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		return domain.BatchEmbeddingResult{Embeddings: r.Embeddings, TotalTokens: r.TotalTokens}, nil
	}

	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for _, t := range texts {
		r, err := a.Embed(ctx, t)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out.Embeddings = append(out.Embeddings, r.Embedding)
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

// HealthCheck forwards to the inner embedder when it can probe itself.
func (a *embedderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
