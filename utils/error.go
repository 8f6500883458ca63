package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// Operational error taxonomy for the reconciliation core.
//
// NotFound and Validation errors are raised before any state mutation and are
// safe to retry after correcting input. Conflict and InsufficientStock are
// surfaced to the caller verbatim; the caller must re-fetch availability and
// resubmit. Consistency indicates a bug in the reconciliation logic itself and
// is logged separately from user-facing errors.

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type InsufficientStockError struct {
	Message string
}

func (e *InsufficientStockError) Error() string {
	return e.Message
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string {
	return e.Message
}

func NewNotFoundError(resource string) error {
	return &NotFoundError{Resource: resource}
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NewInsufficientStockError(format string, args ...any) error {
	return &InsufficientStockError{Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func NewConsistencyError(format string, args ...any) error {
	return &ConsistencyError{Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps a core error to a response status code.
func HTTPStatus(err error) int {
	var nf *NotFoundError
	var ve *ValidationError
	var is *InsufficientStockError
	var ce *ConflictError
	switch {
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &is):
		return http.StatusConflict
	case errors.As(err, &ce):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// IsConsistencyError reports whether err is an internal invariant violation.
// These must be logged at error level and never swallowed.
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
