package fedsearch

import "github.com/kailas-cloud/fedsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation         = domain.ErrValidation
	ErrAccessDenied       = domain.ErrAccessDenied
	ErrSearchUnavailable  = domain.ErrSearchUnavailable
	ErrBackendUnavailable = domain.ErrBackendUnavailable
	ErrQueryMalformed     = domain.ErrQueryMalformed
	ErrTimeout            = domain.ErrTimeout
)
