// Package apperror defines the typed error taxonomy shared by all modules.
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error by the kind of remediation a caller can offer.
type Kind string

const (
	// NotFound means a referenced team, request, profile or event does not exist.
	NotFound Kind = "NOT_FOUND"
	// Forbidden means the caller lacks the role required for the operation.
	Forbidden Kind = "FORBIDDEN"
	// Conflict means an invariant was violated by concurrent state.
	Conflict Kind = "CONFLICT"
	// InvalidOperation means the operation is structurally invalid given current state.
	InvalidOperation Kind = "INVALID_OPERATION"
	// PreconditionFailed means required upstream data is missing.
	PreconditionFailed Kind = "PRECONDITION_FAILED"
	// UpstreamUnavailable means the cache or embedding oracle could not be reached.
	UpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	// Validation means the input itself is malformed.
	Validation Kind = "INVALID_REQUEST"
	// Unauthorized means the caller identity could not be established.
	Unauthorized Kind = "UNAUTHORIZED"
	// Internal is the kind reported for errors outside the taxonomy.
	Internal Kind = "INTERNAL_ERROR"
)

// Error is a domain error carrying its kind and a stable code naming the violated rule.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

// New creates a new domain error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// CodeOf returns the code of the first *Error in err's chain, or the Internal kind.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return string(Internal)
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the HTTP status code used in API responses.
func HTTPStatus(kind Kind) int {
	switch kind {
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	case Conflict:
		return http.StatusConflict
	case InvalidOperation:
		return http.StatusUnprocessableEntity
	case PreconditionFailed:
		return http.StatusPreconditionFailed
	case UpstreamUnavailable:
		return http.StatusServiceUnavailable
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
