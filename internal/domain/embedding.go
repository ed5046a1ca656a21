package domain

import (
	"context"
	"fmt"
	"strings"
)

// DefaultModel is the sentence-embedding model the search indexes are built with.
const DefaultModel = "BAAI/bge-large-en-v1.5"

// DefaultDimensions is the vector size produced by DefaultModel.
const DefaultDimensions = 1024

// DefaultQueryInstruction is the BGE retrieval prefix for short queries against longer passages.
const DefaultQueryInstruction = "Represent this sentence for searching relevant passages: "

// QueryInstructionFor returns the prefix applied to query text. A configured
// instruction wins; BGE models otherwise get their retrieval instruction.
func QueryInstructionFor(model, configured string) string {
	if configured != "" {
		return configured
	}
	if strings.Contains(strings.ToLower(model), "bge") {
		return DefaultQueryInstruction
	}
	return ""
}

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in one inference call.
// Output order and length match the input.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// TextEmbedder embeds single texts and batches.
type TextEmbedder interface {
	Embedder
	BatchEmbedder
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding   []float32
	TotalTokens int
}

// BatchEmbeddingResult carries one vector per input text and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings  [][]float32
	TotalTokens int
}

// InstructionEmbedder is a domain decorator that prepends instruction text before embedding.
type InstructionEmbedder struct {
	inner       TextEmbedder
	instruction string
}

// NewInstructionEmbedder creates a decorator that prepends instruction text.
func NewInstructionEmbedder(inner TextEmbedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, instruction: instruction}
}

// Embed prepends instruction and delegates to inner embedder.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	result, err := e.inner.Embed(ctx, e.instruction+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return result, nil
}

// BatchEmbed prepends instruction to each text and delegates to the inner batch call.
func (e *InstructionEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	prefixed := make([]string, len(texts))
	for i, t := range texts {
		prefixed[i] = e.instruction + t
	}

	res, err := e.inner.BatchEmbed(ctx, prefixed)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("instruction batch embed: %w", err)
	}
	return res, nil
}
