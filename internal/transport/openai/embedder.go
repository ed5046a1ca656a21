// Package openai talks to an OpenAI-compatible embeddings endpoint
// (text-embeddings-inference, vLLM, Infinity, LocalAI) serving the model.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/metrics"
)

// Embedder is an embedding runtime over the OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	provider   string
	logger     *zap.Logger
}

// Config holds the embedding runtime settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int // sent only when positive; most servers reject it for fixed-size models
	Provider   string
	Logger     *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding runtime.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		provider:   cfg.Provider,
		logger:     cfg.Logger,
	}
}

// Embed implements domain.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{Embedding: res.Embeddings[0], TotalTokens: res.TotalTokens}, nil
}

// BatchEmbed implements domain.BatchEmbedder. Vectors are reordered by the
// response index so output order matches the input.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	model := string(e.model)
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, model, "api_error").Inc()
		return domain.BatchEmbeddingResult{}, parseAPIError(err)
	}

	if len(resp.Data) != len(texts) {
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(e.provider, model, "count_mismatch").Inc()
		return domain.BatchEmbeddingResult{}, fmt.Errorf("got %d embeddings for %d inputs: %w",
			len(resp.Data), len(texts), domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(e.provider, model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(e.provider, model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(e.provider, model).Add(float64(resp.Usage.TotalTokens))
	}

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	out := make([][]float32, len(data))
	for i := range data {
		out[i] = data[i].Embedding
	}

	e.logger.Debug("Embedded batch",
		zap.Int("texts", len(texts)),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)

	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: resp.Usage.TotalTokens}, nil
}

// HealthCheck verifies endpoint availability via ListModels.
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors wrap domain.ErrEmbeddingProviderError.
func parseAPIError(err error) error {
	wrap := domain.ErrEmbeddingProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %v: %w", err, wrap)
}

// extractDetail extracts the "detail" or "error" field from a JSON error body.
// text-embeddings-inference reports {"error": "..."}; others use {"detail": "..."}.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error
}
