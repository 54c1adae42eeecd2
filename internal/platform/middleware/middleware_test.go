package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "sdfactory/pkg/domain-errors"
	"sdfactory/pkg/requestcontext"
	"sdfactory/pkg/testutil"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return s.claims, s.err
}

func okHandler(hit *bool, capture *http.Request) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		if capture != nil {
			*capture = *r
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuth_MissingTokenIs401(t *testing.T) {
	var hit bool
	mw := RequireAuth(stubValidator{}, "add_self_descriptions", true, slog.Default(), nil)
	rec := testutil.DoRequest(mw(okHandler(&hit, nil)), testutil.NewRequest(t, http.MethodPost, "/"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, hit)
}

func TestRequireAuth_InvalidTokenIs401(t *testing.T) {
	var hit bool
	mw := RequireAuth(stubValidator{err: dErrors.New(dErrors.CodeUnauthorized, "invalid token")},
		"add_self_descriptions", true, slog.Default(), nil)
	req := testutil.NewRequest(t, http.MethodPost, "/")
	req.Header.Set("Authorization", "Bearer bad")
	rec := testutil.DoRequest(mw(okHandler(&hit, nil)), req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, hit)
}

func TestRequireAuth_MissingRoleIs403(t *testing.T) {
	var hit bool
	mw := RequireAuth(stubValidator{claims: &JWTClaims{Subject: "svc", Roles: []string{"other"}}},
		"add_self_descriptions", true, slog.Default(), nil)
	req := testutil.NewRequest(t, http.MethodPost, "/")
	req.Header.Set("Authorization", "Bearer tok")
	rec := testutil.DoRequest(mw(okHandler(&hit, nil)), req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, hit)
}

func TestRequireAuth_ValidTokenInjectsContext(t *testing.T) {
	var hit bool
	var seen http.Request
	mw := RequireAuth(stubValidator{claims: &JWTClaims{
		Subject: "svc",
		Roles:   []string{"add_self_descriptions"},
	}}, "add_self_descriptions", true, slog.Default(), nil)
	req := testutil.NewRequest(t, http.MethodPost, "/")
	req.Header.Set("Authorization", "Bearer tok")
	rec := testutil.DoRequest(mw(okHandler(&hit, &seen)), req)

	require.True(t, hit)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "svc", requestcontext.Subject(seen.Context()))
	assert.Equal(t, []string{"add_self_descriptions"}, requestcontext.Roles(seen.Context()))
}

func TestRequireAuth_BypassWhenNotEnforced(t *testing.T) {
	var hit bool
	mw := RequireAuth(stubValidator{}, "add_self_descriptions", false, slog.Default(), nil)
	rec := testutil.DoRequest(mw(okHandler(&hit, nil)), testutil.NewRequest(t, http.MethodPost, "/"))

	assert.True(t, hit)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen http.Request
	var hit bool
	rec := httptest.NewRecorder()
	RequestID(okHandler(&hit, &seen)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	id := rec.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)
	assert.Equal(t, id, requestcontext.RequestID(seen.Context()))
}

func TestRequestID_HonorsCallerSupplied(t *testing.T) {
	var seen http.Request
	var hit bool
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "caller-id-1")
	rec := httptest.NewRecorder()
	RequestID(okHandler(&hit, &seen)).ServeHTTP(rec, req)

	assert.Equal(t, "caller-id-1", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "caller-id-1", requestcontext.RequestID(seen.Context()))
}

func TestLogger_EmitsRequestLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var hit bool
	req := testutil.WithRequestID(testutil.NewRequest(t, http.MethodGet, "/healthz"), "req-42")
	testutil.DoRequest(Logger(logger)(okHandler(&hit, nil)), req)

	require.True(t, hit)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "request handled", line["msg"])
	assert.Equal(t, "req-42", line["request_id"])
	assert.Equal(t, "/healthz", line["path"])
	assert.Equal(t, float64(http.StatusNoContent), line["status"])
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	h := Recovery(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
