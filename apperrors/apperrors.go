// Package apperrors defines the error kinds the API reports and how they map
// onto HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind is the machine-checkable category of an error
type Kind string

const (
	KindUnauthenticated Kind = "Unauthenticated"
	KindInvalidToken    Kind = "InvalidToken"
	KindExpiredToken    Kind = "ExpiredToken"
	KindForbidden       Kind = "Forbidden"
	KindNotFound        Kind = "NotFound"
	KindValidation      Kind = "ValidationError"
	KindConflict        Kind = "Conflict"
	KindCascadeFailure  Kind = "CascadeFailure"
	KindInternal        Kind = "Internal"
)

// Error carries a Kind, a message safe to show to clients and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func Forbidden(message string) *Error       { return New(KindForbidden, message) }
func Validation(message string) *Error      { return New(KindValidation, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }

// NotFound reports a well-formed id that matches nothing
func NotFound(entity, id string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s not found with id %s", entity, id))
}

// Internal wraps an unexpected failure
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// CascadeError reports a dependent-deletion step that failed mid-cascade.
// PartiallyDeleted lists the ids removed before the failure; when RolledBack
// is set the store has already undone those removals.
type CascadeError struct {
	Entity           string
	ID               string
	Step             string
	PartiallyDeleted []string
	RolledBack       bool
	Err              error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s: deleting %s %s failed at %s (partially deleted: [%s], rolled back: %t): %v",
		KindCascadeFailure, e.Entity, e.ID, e.Step, strings.Join(e.PartiallyDeleted, ", "), e.RolledBack, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of err, defaulting to KindInternal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var cascadeErr *CascadeError
	if errors.As(err, &cascadeErr) {
		return KindCascadeFailure
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is of the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the client-facing message for err
func MessageOf(err error) string {
	var cascadeErr *CascadeError
	if errors.As(err, &cascadeErr) {
		return fmt.Sprintf("Failed to delete %s and its dependents", cascadeErr.Entity)
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// HTTPStatus maps a Kind onto an HTTP status code
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated, KindInvalidToken, KindExpiredToken:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
