package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCodeOf(t *testing.T) {
	t.Run("coded error", func(t *testing.T) {
		err := New(CodeBadRequest, "bad input")
		if CodeOf(err) != CodeBadRequest {
			t.Fatalf("expected bad_request, got %s", CodeOf(err))
		}
	})

	t.Run("wrapped cause is preserved", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeUpstream, "sink unavailable")
		if !errors.Is(err, cause) {
			t.Fatal("expected wrapped cause in chain")
		}
		if CodeOf(err) != CodeUpstream {
			t.Fatalf("expected upstream_error, got %s", CodeOf(err))
		}
	})

	t.Run("coded error survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("request failed: %w", New(CodeConfiguration, "unknown target"))
		if CodeOf(err) != CodeConfiguration {
			t.Fatalf("expected configuration_error, got %s", CodeOf(err))
		}
	})

	t.Run("plain error defaults to internal", func(t *testing.T) {
		if CodeOf(errors.New("boom")) != CodeInternal {
			t.Fatal("expected internal_error for plain errors")
		}
	})
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, CodeInternal, "ignored") != nil {
		t.Fatal("wrapping nil must yield nil")
	}
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:    http.StatusBadRequest,
		CodeUnauthorized:  http.StatusUnauthorized,
		CodeForbidden:     http.StatusForbidden,
		CodeNotFound:      http.StatusNotFound,
		CodeUpstream:      http.StatusBadGateway,
		CodeConfiguration: http.StatusInternalServerError,
		CodeCrypto:        http.StatusInternalServerError,
		CodeInternal:      http.StatusInternalServerError,
		Code("unknown"):   http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := ToHTTPStatus(code); got != want {
			t.Fatalf("code %s: expected %d, got %d", code, want, got)
		}
	}
}

func TestPublic(t *testing.T) {
	if !Public(CodeBadRequest) {
		t.Fatal("bad_request descriptions are caller-facing")
	}
	if Public(CodeCrypto) || Public(CodeUpstream) || Public(CodeInternal) {
		t.Fatal("server-side error descriptions must not be exposed")
	}
}
