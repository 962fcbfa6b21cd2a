package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// The four error kinds every handler surfaces to the initiating action.
// None of them is ever retried automatically; the user retries manually.

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError creates a ValidationError
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// ForbiddenError reports a cross-tenant access attempt: deleting another
// tenant's item, publishing outside one's own agency scope, or touching
// another tenant's order. Never a silent no-op.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NewForbiddenError creates a ForbiddenError
func NewForbiddenError(msg string) error {
	return &ForbiddenError{Message: msg}
}

// NotFoundError reports a referenced record that does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NewNotFoundError creates a NotFoundError
func NewNotFoundError(msg string) error {
	return &NotFoundError{Message: msg}
}

// ConflictError reports an attempt to re-register an existing principal
// under a different role.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a ConflictError
func NewConflictError(msg string) error {
	return &ConflictError{Message: msg}
}

// RespondError maps a domain error onto the API response envelope. Errors
// outside the taxonomy become a generic 500 without leaking detail.
func RespondError(c *gin.Context, err error) {
	var (
		validationErr *ValidationError
		forbiddenErr  *ForbiddenError
		notFoundErr   *NotFoundError
		conflictErr   *ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		BadRequestResponse(c, validationErr.Message)
	case errors.As(err, &forbiddenErr):
		ForbiddenResponse(c, forbiddenErr.Message)
	case errors.As(err, &notFoundErr):
		NotFoundResponse(c, notFoundErr.Message)
	case errors.As(err, &conflictErr):
		ConflictResponse(c, conflictErr.Message)
	default:
		InternalServerErrorResponse(c, "Internal server error")
	}
}
