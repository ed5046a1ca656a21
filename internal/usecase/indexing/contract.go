package indexing

import (
	"context"

	"github.com/kailas-cloud/slatesearch/internal/domain"
	"github.com/kailas-cloud/slatesearch/internal/domain/kind"
	"github.com/kailas-cloud/slatesearch/internal/domain/record"
)

// RecordWriter stores embedded records and manages the per-kind indexes.
type RecordWriter interface {
	Save(ctx context.Context, k kind.Kind, docs []record.Document) error
	EnsureIndexes(ctx context.Context) ([]kind.Kind, error)
	RebuildIndex(ctx context.Context, k kind.Kind) error
	Fields(ctx context.Context, k kind.Kind, id string) (map[string]string, error)
	Delete(ctx context.Context, k kind.Kind, id string) error
}

// BatchEmbedder vectorizes canonical texts.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
