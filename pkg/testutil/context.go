package testutil

import (
	"net/http"

	"sdfactory/pkg/requestcontext"
)

// WithRequestID injects a request ID into the request context, simulating
// what the request-id middleware does.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
