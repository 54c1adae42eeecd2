// Package domainerrors defines the error taxonomy shared by all services.
//
// Errors carry a machine-readable Code that the transport layer translates
// to an HTTP status. Wrapping preserves the original cause for errors.Is /
// errors.As while services only ever branch on the code.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and logging.
type Code string

const (
	// CodeBadRequest covers caller mistakes: unknown document types,
	// malformed payloads, unsupported registration-number cardinality.
	CodeBadRequest Code = "bad_request"

	// CodeUnauthorized and CodeForbidden are produced by the authorization gate.
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"

	CodeNotFound Code = "not_found"

	// CodeUpstream covers failures of external collaborators: holder lookup,
	// terms-and-conditions fetch, downstream sink rejection.
	CodeUpstream Code = "upstream_error"

	// CodeConfiguration marks fatal deployment mistakes (unknown dispatch
	// target, unknown verification method). Never silently defaulted.
	CodeConfiguration Code = "configuration_error"

	// CodeCrypto marks signing/verification backend failures. Fatal for the
	// current request, never downgraded.
	CodeCrypto Code = "crypto_error"

	CodeInternal Code = "internal_error"
)

// Error is the concrete error type carrying a code and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two coded errors by code and message, so errors.Is works with
// a freshly constructed sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// Wrapf attaches a code and formatted message to an existing error. A nil
// err yields nil.
func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message from an error chain.
// Returns empty for non-domain errors so internals never leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// ToHTTPStatus maps a code to the HTTP status the transport layer returns.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		return http.StatusBadGateway
	case CodeConfiguration, CodeCrypto, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether the error's description may be shown to callers.
// Only caller-caused errors expose their message; server-side failures
// return a bare status.
func Public(code Code) bool {
	switch code {
	case CodeBadRequest, CodeUnauthorized, CodeForbidden, CodeNotFound:
		return true
	default:
		return false
	}
}
