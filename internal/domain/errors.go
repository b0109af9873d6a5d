package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrEmptyQuestion signals a blank question.
	ErrEmptyQuestion = errors.New("empty question")
	// ErrInvalidRecord signals a QA record with an empty text or question.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrStoreUnavailable signals that the vector index backend or its embedder failed.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrGenerationFailed signals a language model failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding token quota exceeded")
	// ErrGenerationQuotaExceeded signals an exhausted generation token budget.
	ErrGenerationQuotaExceeded = errors.New("generation token quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
