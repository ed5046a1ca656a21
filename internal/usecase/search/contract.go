package search

import (
	"context"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/search/match"
)

// Repository runs nearest-neighbor lookups against one kind's index.
type Repository interface {
	Nearest(
		ctx context.Context, k kind.Kind, vector []float32, topK int, fields []string,
	) ([]match.Raw, error)
}

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
