// Package ollama runs the embedding model on an Ollama server through langchaingo.
package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
)

const provider = "ollama"

// Config holds the Ollama runtime settings.
type Config struct {
	ServerURL string
	Model     string
	BatchSize int
	Logger    *zap.Logger
}

// Embedder is an embedding runtime backed by langchaingo.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *zap.Logger
}

// NewEmbedder connects an Ollama client for cfg.Model.
func NewEmbedder(cfg *Config) (*Embedder, error) {
	client, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}
	return newWithClient(client, cfg)
}

// newWithClient wraps any langchaingo embedder client.
func newWithClient(client embeddings.EmbedderClient, cfg *Config) (*Embedder, error) {
	opts := []embeddings.Option{embeddings.WithStripNewLines(false)}
	if cfg.BatchSize > 0 {
		opts = append(opts, embeddings.WithBatchSize(cfg.BatchSize))
	}
	emb, err := embeddings.NewEmbedder(client, opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}
	return &Embedder{embedder: emb, model: cfg.Model, logger: cfg.Logger}, nil
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0]}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Ollama does not report token usage.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	vecs, err := e.embedder.EmbedDocuments(ctx, texts)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("ollama embed: %v: %w", err, domain.ErrEmbeddingProviderError)
	}
	if len(vecs) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "count_mismatch").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d embeddings for %d inputs: %w",
			len(vecs), len(texts), domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())

	e.logger.Debug("Embedded batch", zap.Int("texts", len(texts)), zap.Duration("duration", duration))

	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}
