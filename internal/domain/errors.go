package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingQuery signals an empty or whitespace-only search query.
	ErrMissingQuery = errors.New("query is required")
	// ErrInvalidRequest signals a request parameter outside its allowed range.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDocumentInvalid signals a document that fails validation.
	ErrDocumentInvalid = errors.New("invalid document")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrCostLimitReached signals an exhausted daily or monthly spend cap.
	ErrCostLimitReached = errors.New("cost limit reached")
	// ErrModelUnavailable signals an embedding provider failure or malformed payload.
	ErrModelUnavailable = errors.New("embedding model unavailable")
	// ErrSearchUnavailable signals that every retrieval branch of a hybrid query failed.
	ErrSearchUnavailable = errors.New("search unavailable")
)

// CostLimitError wraps ErrCostLimitReached with the scope and spend that tripped it.
type CostLimitError struct {
	Scope    string
	SpentUSD float64
	LimitUSD float64
}

func (e *CostLimitError) Error() string {
	return fmt.Sprintf("%s: %s spend $%.4f of $%.2f", ErrCostLimitReached.Error(), e.Scope, e.SpentUSD, e.LimitUSD)
}

func (e *CostLimitError) Unwrap() error { return ErrCostLimitReached }

// NewCostLimitError creates a cost limit error for the given scope.
func NewCostLimitError(scope string, spent, limit float64) error {
	return &CostLimitError{Scope: scope, SpentUSD: spent, LimitUSD: limit}
}

// InvalidRequestf formats a validation error wrapping ErrInvalidRequest.
func InvalidRequestf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
