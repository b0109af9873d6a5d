package qacache

import "github.com/kailas-cloud/qacache/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound                = domain.ErrNotFound
	ErrStoreUnavailable        = domain.ErrStoreUnavailable
	ErrGenerationFailed        = domain.ErrGenerationFailed
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrEmbeddingQuotaExceeded  = domain.ErrEmbeddingQuotaExceeded
	ErrGenerationQuotaExceeded = domain.ErrGenerationQuotaExceeded
)
