// Package apperr defines the closed set of domain errors for the catalog
// and their translation into the stable wire format.
//
// Every error kind carries a fixed HTTP status code and a fixed set of
// named detail fields. Values are immutable after construction; callers
// classify with errors.As plus Kind, never by string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain error. The enumeration is closed: the
// translator handles every kind, and anything outside it collapses to
// KindUnhandled.
type Kind string

const (
	KindEntityNotFound        Kind = "EntityNotFound"
	KindDuplicateEntity       Kind = "DuplicateEntity"
	KindInvalidRange          Kind = "InvalidRange"
	KindConnectionUnavailable Kind = "ConnectionUnavailable"
	KindValidationFailure     Kind = "ValidationFailure"
	KindInvalidScopeUse       Kind = "InvalidScopeUse"
	KindUnhandled             Kind = "Unhandled"
)

// StatusCode returns the HTTP status associated with the kind.
// Unknown kinds report 500, matching the Unhandled catch-all.
func (k Kind) StatusCode() int {
	switch k {
	case KindEntityNotFound:
		return http.StatusNotFound
	case KindDuplicateEntity:
		return http.StatusConflict
	case KindInvalidRange:
		return http.StatusBadRequest
	case KindConnectionUnavailable:
		return http.StatusServiceUnavailable
	case KindValidationFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Detail is one named detail field on a domain error, e.g.
// {entity_type politician}. Values are stringified at construction so the
// error stays a plain value with no live handles.
type Detail struct {
	Field string
	Value string
}

// Error is a domain error from the closed taxonomy. Fields are unexported;
// an Error never changes after its constructor returns.
type Error struct {
	kind    Kind
	message string
	details []Detail
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.message)
}

// Kind returns the error classification.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the human-readable message.
func (e *Error) Message() string { return e.message }

// StatusCode returns the HTTP status for the error's kind.
func (e *Error) StatusCode() int { return e.kind.StatusCode() }

// Details returns a copy of the named detail fields in declaration order.
func (e *Error) Details() []Detail {
	out := make([]Detail, len(e.details))
	copy(out, e.details)
	return out
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// EntityNotFound reports that a lookup by identifier returned nothing.
func EntityNotFound(entityType string, entityID any) *Error {
	return &Error{
		kind:    KindEntityNotFound,
		message: fmt.Sprintf("%s with id %v not found", entityType, entityID),
		details: []Detail{
			{Field: "entity_type", Value: entityType},
			{Field: "entity_id", Value: fmt.Sprintf("%v", entityID)},
		},
	}
}

// DuplicateEntity reports a uniqueness violation on the given key.
func DuplicateEntity(entityType, conflictingKey string) *Error {
	return &Error{
		kind:    KindDuplicateEntity,
		message: fmt.Sprintf("%s %q already exists", entityType, conflictingKey),
		details: []Detail{
			{Field: "entity_type", Value: entityType},
			{Field: "conflicting_key", Value: conflictingKey},
		},
	}
}

// InvalidRange reports a caller-supplied range that is inverted or
// otherwise malformed.
func InvalidRange(rangeStart, rangeEnd string) *Error {
	return &Error{
		kind:    KindInvalidRange,
		message: fmt.Sprintf("invalid range: %s to %s", rangeStart, rangeEnd),
		details: []Detail{
			{Field: "range_start", Value: rangeStart},
			{Field: "range_end", Value: rangeEnd},
		},
	}
}

// ConnectionUnavailable reports that engine or session acquisition failed
// against the named backend.
func ConnectionUnavailable(backend string, cause error) *Error {
	return &Error{
		kind:    KindConnectionUnavailable,
		message: "unable to connect to database",
		details: []Detail{
			{Field: "backend", Value: backend},
		},
		cause: cause,
	}
}

// InvalidScopeUse reports a programming error in the session or scope
// lifecycle, such as a second terminal transition.
func InvalidScopeUse(message string) *Error {
	return &Error{
		kind:    KindInvalidScopeUse,
		message: message,
	}
}

// GetKind extracts the kind from any error. It returns KindUnhandled for
// errors outside the taxonomy, mirroring the translator's catch-all.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return KindValidationFailure
	}
	return KindUnhandled
}

// IsKind reports whether the error carries the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}
