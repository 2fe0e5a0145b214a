// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Review validation errors. These are user-correctable: the review
	// batch is preserved so the offending rows can be fixed or deselected.
	ErrEmptySelection       = errors.New("no candidates selected")
	ErrMissingCategory      = errors.New("selected candidate has no category")
	ErrMissingPaymentMethod = errors.New("selected candidate has no payment method")
	ErrIncompleteCandidate  = errors.New("selected candidate has unresolved fields")

	// Contract errors. These indicate a caller defect, not user input.
	ErrIndexOutOfRange = errors.New("candidate index out of range")
	ErrBadFieldValue   = errors.New("invalid field value")

	// Extraction errors.
	ErrExtractionFailed = errors.New("statement extraction failed")

	// Persistence errors. The review batch is preserved so the caller can
	// retry the commit once the store recovers.
	ErrPersistenceFailed = errors.New("failed to persist import batch")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsValidationError reports whether err is a review validation failure the
// user can resolve by editing or deselecting candidates.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptySelection) ||
		errors.Is(err, ErrMissingCategory) ||
		errors.Is(err, ErrMissingPaymentMethod) ||
		errors.Is(err, ErrIncompleteCandidate)
}
