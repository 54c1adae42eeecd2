// Package httputil centralizes JSON encoding and domain-error translation
// for the HTTP transport layer so every handler produces the same envelopes.
package httputil

import (
	"encoding/json"
	"io"
	"net/http"

	dErrors "sdfactory/pkg/domain-errors"
)

// WriteError renders a domain error as a JSON envelope. Caller-caused errors
// include a human-readable description; server-side failures return only the
// code so key material and internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := map[string]string{"error": string(code)}
	if dErrors.Public(code) {
		if msg := dErrors.MessageOf(err); msg != "" {
			body["error_description"] = msg
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(code))
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSON renders v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ReadBody reads the request body up to maxBytes, failing with a bad_request
// domain error on oversized or unreadable payloads.
func ReadBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "could not read request body")
	}
	return body, nil
}
