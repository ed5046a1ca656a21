package slatesearch

import "github.com/kailas-cloud/slatesearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotInitialized         = domain.ErrNotInitialized
	ErrInference              = domain.ErrInference
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrBackend                = domain.ErrBackend
	ErrSearchUnavailable      = domain.ErrSearchUnavailable
	ErrInvalidRecord          = domain.ErrInvalidRecord
	ErrRecordNotFound         = domain.ErrRecordNotFound
)
