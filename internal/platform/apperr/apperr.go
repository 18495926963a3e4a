// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

/*
Package apperr defines the centralized error handling framework for the LMS API.

It provides a tagged error type that bridges the gap between low-level storage,
cache and collaborator failures and the JSON responses sent to clients.

Architecture:

  - Kind: A closed taxonomy of failure classes, each with one explicit HTTP status.
  - AppError: Kind plus a machine-readable Code and a client-safe Message.
  - Mapping: [Kind.HTTPStatus] is the only place where statuses are decided.

Every error that leaves the service layer should be an [AppError] so that
[respond.Error] can shape it without guessing.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// # Error Taxonomy

// Kind classifies an [AppError]. The zero value is [KindInternal].
type Kind int

const (
	// KindInternal is an unexpected server-side failure.
	KindInternal Kind = iota

	// KindValidation is missing or malformed input.
	KindValidation

	// KindConflict is a uniqueness violation such as an existing email.
	KindConflict

	// KindUnauthenticated is a missing, invalid or expired token or session.
	KindUnauthenticated

	// KindForbidden is an authenticated caller without the required permission.
	KindForbidden

	// KindNotFound is an absent resource or route.
	KindNotFound

	// KindUpstream is a failed call to the mail sender, image host, store or cache.
	KindUpstream

	// KindRateLimited is a throttled caller.
	KindRateLimited
)

// HTTPStatus returns the response status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindConflict, KindUnauthenticated:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUpstream:
		return "upstream"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// AppError is the canonical error type for the LMS API.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., SQL queries).
type AppError struct {
	// Kind selects the HTTP status via [Kind.HTTPStatus].
	Kind Kind `json:"-"`
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "CANNOT_REFRESH").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// HTTPStatus is a shortcut for e.Kind.HTTPStatus().
func (e *AppError) HTTPStatus() int { return e.Kind.HTTPStatus() }

// WithCause returns a copy of e carrying cause for server-side logging.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithCode returns a copy of e with a more specific machine-readable code.
func (e *AppError) WithCode(code string) *AppError {
	clone := *e
	clone.Code = code
	return &clone
}

// # Client Errors (4xx)

// ValidationError creates a [KindValidation] error with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: msg,
		Details: details,
	}
}

// Conflict creates a [KindConflict] error for duplicate or unique-constraint violations.
func Conflict(msg string) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    "CONFLICT",
		Message: msg,
	}
}

// Unauthenticated creates a [KindUnauthenticated] error.
func Unauthenticated(msg string) *AppError {
	return &AppError{
		Kind:    KindUnauthenticated,
		Code:    "UNAUTHENTICATED",
		Message: msg,
	}
}

// Forbidden creates a [KindForbidden] error.
func Forbidden(msg string) *AppError {
	return &AppError{
		Kind:    KindForbidden,
		Code:    "FORBIDDEN",
		Message: msg,
	}
}

// NotFound creates a [KindNotFound] error for a named resource.
//
// Example:
//
//	apperr.NotFound("Course") // Returns "Course not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Code:    "NOT_FOUND",
		Message: resource + " not found",
	}
}

// RateLimited creates a [KindRateLimited] error.
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Kind:    KindRateLimited,
		Code:    "RATE_LIMITED",
		Message: fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
	}
}

// # Server Errors (5xx)

// Upstream creates a [KindUpstream] error for a failed collaborator call.
// The cause is stored for logging but is never sent to the client.
func Upstream(msg string, cause error) *AppError {
	return &AppError{
		Kind:    KindUpstream,
		Code:    "UPSTREAM_FAILURE",
		Message: msg,
		Cause:   cause,
	}
}

// Internal creates a [KindInternal] error wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: "An unexpected error occurred",
		Cause:   cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// IsKind reports whether err carries an [*AppError] of the given kind.
func IsKind(err error, kind Kind) bool {
	ae := As(err)
	return ae != nil && ae.Kind == kind
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
