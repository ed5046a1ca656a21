package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
)

// DefaultMaxBatchSize is the largest number of texts sent in one runtime request.
const DefaultMaxBatchSize = 32

// InstrumentedEmbedder wraps a runtime with request chunking and logging.
// Transport metrics (requests, duration, tokens) are recorded by the runtime itself.
type InstrumentedEmbedder struct {
	inner    domain.TextEmbedder
	provider string
	model    string
	maxBatch int
	logger   *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with chunking and observability.
// maxBatch <= 0 selects DefaultMaxBatchSize.
func NewInstrumentedEmbedder(
	inner domain.TextEmbedder, provider, model string, maxBatch int, logger *zap.Logger,
) *InstrumentedEmbedder {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &InstrumentedEmbedder{
		inner:    inner,
		provider: provider,
		model:    model,
		maxBatch: maxBatch,
		logger:   logger,
	}
}

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	metrics.InferenceBatchSize.Observe(1)
	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// BatchEmbed splits texts into runtime-sized chunks and concatenates the results in order.
func (p *InstrumentedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()

	all := make([][]float32, 0, len(texts))
	var totalTokens int

	for offset := 0; offset < len(texts); offset += p.maxBatch {
		end := min(offset+p.maxBatch, len(texts))
		chunk := texts[offset:end]

		res, err := p.inner.BatchEmbed(ctx, chunk)
		if err != nil {
			p.logger.Error("Batch embedding request failed",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
		metrics.InferenceBatchSize.Observe(float64(len(chunk)))

		all = append(all, res.Embeddings...)
		totalTokens += res.TotalTokens
	}

	p.logger.Debug("Batch embedding completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", totalTokens),
	)

	return domain.BatchEmbeddingResult{Embeddings: all, TotalTokens: totalTokens}, nil
}

// HealthCheck forwards to the runtime when it can check itself.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
