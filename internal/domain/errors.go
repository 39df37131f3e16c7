package domain

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/fedsearch/internal/domain/entity"
)

var (
	// ErrValidation signals a malformed or out-of-range request field.
	ErrValidation = errors.New("validation failed")
	// ErrAccessDenied signals a caller reaching a path its role does not allow.
	ErrAccessDenied = errors.New("access denied")
	// ErrBackendUnavailable signals that an entity index could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrQueryMalformed signals a filter value or query the index cannot accept.
	ErrQueryMalformed = errors.New("query malformed")
	// ErrTimeout signals an executor still pending when the request deadline expired.
	ErrTimeout = errors.New("executor timed out")
	// ErrSearchUnavailable signals that every requested executor failed.
	ErrSearchUnavailable = errors.New("search unavailable")
)

// ValidationError wraps ErrValidation with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ExecutorError is a per-entity-type search failure. Kind is one of
// ErrBackendUnavailable, ErrQueryMalformed or ErrTimeout.
type ExecutorError struct {
	EntityType entity.Type
	Kind       error
	Err        error
}

func (e *ExecutorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s search: %v", e.EntityType, e.Kind)
	}
	return fmt.Sprintf("%s search: %v: %v", e.EntityType, e.Kind, e.Err)
}

func (e *ExecutorError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewExecutorError builds an ExecutorError of the given kind.
func NewExecutorError(t entity.Type, kind, err error) error {
	return &ExecutorError{EntityType: t, Kind: kind, Err: err}
}
