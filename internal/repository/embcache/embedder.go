package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/slatesearch/internal/db"
	"github.com/kailas-cloud/slatesearch/internal/domain"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedEmbedder caches document embeddings keyed by the SHA-256 of the
// canonical text. Canonical text is deterministic, so an unchanged record
// maps to the same key and skips inference on re-index.
//
// Query embeddings must not go through this type.
type CachedEmbedder struct {
	inner      domain.TextEmbedder
	store      store
	keyPrefix  string
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// KeyPrefix scopes cached vectors under the storage prefix by model name.
func KeyPrefix(storagePrefix, model string) string {
	sanitized := strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(model)
	return storagePrefix + "emb_cache:" + sanitized + ":"
}

// New creates a caching decorator. keyPrefix scopes entries, and should include
// the model name so vectors of different models never mix.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner domain.TextEmbedder,
	s store,
	keyPrefix string,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedEmbedder {
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		keyPrefix:  keyPrefix,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// Cache hit: TotalTokens = 0.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	if vec, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	c.incCache("miss")

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	c.putToCache(ctx, key, result.Embedding)
	return result, nil
}

// BatchEmbed serves hits from the cache and sends only the misses to the
// inner embedder in one batch. Output order matches the input.
func (c *CachedEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		keys[i] = c.cacheKey(text)
		if vec, ok := c.getFromCache(ctx, keys[i]); ok {
			c.incCache("hit")
			out[i] = vec
			continue
		}
		c.incCache("miss")
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return domain.BatchEmbeddingResult{Embeddings: out}, nil
	}

	res, err := c.inner.BatchEmbed(ctx, missTexts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed %d texts: %w", len(missTexts), err)
	}
	if len(res.Embeddings) != len(missTexts) {
		return domain.BatchEmbeddingResult{}, fmt.Errorf(
			"batch embed: got %d vectors for %d texts: %w", len(res.Embeddings), len(missTexts), domain.ErrInference)
	}

	for j, i := range missIdx {
		out[i] = res.Embeddings[j]
		c.putToCache(ctx, keys[i], res.Embeddings[j])
	}

	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: res.TotalTokens}, nil
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return c.keyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) getFromCache(ctx context.Context, key string) ([]float32, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	vec, err := db.DecodeVector(data)
	if err != nil {
		c.logger.Warn("Failed to parse cached embedding", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	return vec, true
}

func (c *CachedEmbedder) putToCache(ctx context.Context, key string, vec []float32) {
	if err := c.store.Set(ctx, key, db.EncodeVector(vec)); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
}
