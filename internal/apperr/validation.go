package apperr

import (
	"fmt"
	"strings"
)

// FieldError is one invalid field in a request: where it is, what is wrong,
// and a machine-readable code such as "required" or "invalid_date".
type FieldError struct {
	Field   string
	Message string
	Code    string
}

// Field builds a FieldError with the path expressed as dot-joined location
// segments, e.g. Field("required", "field is required", "body", "name").
func Field(code, message string, path ...string) FieldError {
	return FieldError{
		Field:   strings.Join(path, "."),
		Message: message,
		Code:    code,
	}
}

// ValidationError aggregates schema-level failures for a single request.
// It is raised before any database session is opened.
type ValidationError struct {
	fields []FieldError
}

// Validation builds a ValidationError from one or more field errors.
func Validation(fields ...FieldError) *ValidationError {
	v := &ValidationError{fields: make([]FieldError, len(fields))}
	copy(v.fields, fields)
	return v
}

func (v *ValidationError) Error() string {
	if len(v.fields) == 1 {
		return fmt.Sprintf("validation failed: %s: %s", v.fields[0].Field, v.fields[0].Message)
	}
	return fmt.Sprintf("validation failed on %d fields", len(v.fields))
}

// Fields returns a copy of the invalid fields in declaration order.
func (v *ValidationError) Fields() []FieldError {
	out := make([]FieldError, len(v.fields))
	copy(out, v.fields)
	return out
}

// StatusCode returns the HTTP status for validation failures.
func (v *ValidationError) StatusCode() int {
	return KindValidationFailure.StatusCode()
}
