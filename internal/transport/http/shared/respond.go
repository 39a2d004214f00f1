// Package shared holds the response and decoding helpers every handler
// uses, so error bodies and status mapping stay uniform across the API.
package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "olea/pkg/domain-errors"
)

// WriteJSON writes v with the given status. Encoding failures are logged;
// the status line has already gone out.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// errorBody is the uniform error shape: a stable machine code plus a
// human-readable message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError maps a domain error to its HTTP status and writes the uniform
// error body.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.HTTPStatus(err)
	WriteJSON(w, status, errorBody{
		Error:   string(dErrors.CodeOf(err)),
		Message: err.Error(),
	})
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "decode request body")
	}
	return nil
}
