package linkdex

import "github.com/kailas-cloud/linkdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMissingQuery      = domain.ErrMissingQuery
	ErrInvalidRequest    = domain.ErrInvalidRequest
	ErrDocumentNotFound  = domain.ErrDocumentNotFound
	ErrDocumentInvalid   = domain.ErrDocumentInvalid
	ErrCostLimitReached  = domain.ErrCostLimitReached
	ErrModelUnavailable  = domain.ErrModelUnavailable
	ErrSearchUnavailable = domain.ErrSearchUnavailable
)
