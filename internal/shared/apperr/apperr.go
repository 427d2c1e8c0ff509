// Package apperr classifies domain failures so the HTTP layer can pick a
// response code without knowing every sentinel of every domain.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the failure classification carried by every domain error.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindInvalidState Kind = "INVALID_STATE"
	KindValidation   Kind = "VALIDATION_FAILED"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindInternal     Kind = "INTERNAL"
)

// Error is a classified domain error. Domains declare them as package-level
// sentinels and wrap them with fmt.Errorf("...: %w", err) for detail.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// New creates a classified sentinel error
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return e.Message
}

// ErrValidation marks request payloads rejected before reaching the core.
var ErrValidation = New(KindValidation, "VALIDATION_FAILED", "validation failed")

// Validation wraps a validator error (ozzo-validation) as a ValidationFailure,
// keeping the original error reachable through errors.As.
func Validation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// KindOf returns the classification of err; unclassified errors are Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the machine readable code of the first classified error in the chain.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return string(KindInternal)
}

// Is reports whether err is classified as kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
