package apperr

import "errors"

// WireDetail is one entry in a WireError's detail list. Field and Code are
// pointers so absent values serialize as JSON null, which clients rely on.
type WireDetail struct {
	Field   *string `json:"field"`
	Message string  `json:"message"`
	Code    *string `json:"code"`
}

// WireError is the stable external error payload. Its JSON shape is a
// published contract:
//
//	{"error": <kind>, "message": <string>, "details": [...]|null, "status_code": <int>}
type WireError struct {
	Error      string       `json:"error"`
	Message    string       `json:"message"`
	Details    []WireDetail `json:"details"`
	StatusCode int          `json:"status_code"`
}

const unhandledMessage = "an unexpected error occurred"

// validationMessage matches the wording clients already display for 422s.
const validationMessage = "The request contains invalid data"

// Translate maps any error value to exactly one WireError. It is total:
// domain errors map 1:1 via their kind, validation errors produce one
// detail entry per invalid field, and everything else collapses to
// Unhandled with a generic message so internal detail never reaches the
// caller. Translate never logs and never re-raises; it is terminal at the
// process boundary.
func Translate(err error) WireError {
	var v *ValidationError
	if errors.As(err, &v) {
		details := make([]WireDetail, 0, len(v.fields))
		for _, f := range v.fields {
			field := f.Field
			d := WireDetail{Field: &field, Message: f.Message}
			if f.Code != "" {
				code := f.Code
				d.Code = &code
			}
			details = append(details, d)
		}
		return WireError{
			Error:      string(KindValidationFailure),
			Message:    validationMessage,
			Details:    details,
			StatusCode: KindValidationFailure.StatusCode(),
		}
	}

	var e *Error
	if errors.As(err, &e) {
		var details []WireDetail
		for _, d := range e.details {
			field := d.Field
			details = append(details, WireDetail{Field: &field, Message: d.Value})
		}
		return WireError{
			Error:      string(e.kind),
			Message:    e.message,
			Details:    details,
			StatusCode: e.kind.StatusCode(),
		}
	}

	return WireError{
		Error:      string(KindUnhandled),
		Message:    unhandledMessage,
		StatusCode: KindUnhandled.StatusCode(),
	}
}
