package api

import (
	"encoding/json"
	"net/http"

	"saucebottle/internal/apperr"
)

// writeJSON writes a JSON body with the given status.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// writeError is the single error boundary: every failure, domain or not,
// goes through one translation into the wire shape.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	wire := apperr.Translate(err)

	if wire.StatusCode >= 500 {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wire.StatusCode,
			"error", err,
		)
	} else {
		h.logger.Debug("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wire.StatusCode,
			"error", wire.Error,
		)
	}

	h.writeJSON(w, wire.StatusCode, wire)
}

// decodeBody decodes a JSON request body into dst. A malformed body is a
// validation failure on the body itself, not a server error.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation(apperr.Field("invalid", "request body is not valid JSON", "body"))
	}
	return nil
}
