package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized signals an embedding call made before the producer was initialized.
	ErrNotInitialized = errors.New("embedding service not initialized")
	// ErrAlreadyInitialized signals a second Init on the embedding producer.
	ErrAlreadyInitialized = errors.New("embedding service already initialized")
	// ErrInference signals a model runtime failure during embedding generation.
	ErrInference = errors.New("model inference error")
	// ErrEmbeddingProviderError signals an embedding provider transport failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrBackend signals a vector store lookup or deserialization failure for one record kind.
	ErrBackend = errors.New("search backend failure")
	// ErrSearchUnavailable signals that no record kind could be searched.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrInvalidRecord signals a record that cannot be canonicalized or indexed.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrRecordNotFound signals a lookup of a record id that is not stored.
	ErrRecordNotFound = errors.New("record not found")
)

// KindError ties a backend failure to the record kind whose lookup failed.
type KindError struct {
	Kind string
	Err  error
}

func (e *KindError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrBackend.Error(), e.Kind, e.Err)
}

// Is reports ErrBackend so callers can test the category without unwrapping twice.
func (e *KindError) Is(target error) bool { return target == ErrBackend }

func (e *KindError) Unwrap() error { return e.Err }

// NewKindError wraps err as a backend failure of the given kind.
func NewKindError(kind string, err error) error {
	return &KindError{Kind: kind, Err: err}
}
