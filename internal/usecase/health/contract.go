package health

import "context"

// DBPinger checks vector store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ModelState reports whether the embedding model finished loading.
type ModelState interface {
	Ready() bool
}

// EmbeddingChecker checks embedding runtime availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
