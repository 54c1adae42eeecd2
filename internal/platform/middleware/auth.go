package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"sdfactory/internal/platform/metrics"
	dErrors "sdfactory/pkg/domain-errors"
	"sdfactory/pkg/platform/httputil"
	"sdfactory/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims the transport layer needs from a
// validated token.
type JWTClaims struct {
	Subject  string
	ClientID string
	Roles    []string
}

// RequireAuth enforces bearer-token authentication and the given role. The
// enforce flag is read once at startup: when false the gate passes every
// request through, which only makes sense for local development.
func RequireAuth(validator JWTValidator, role string, enforce bool, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enforce {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				m.IncrementAuthRejections()
				logger.WarnContext(ctx, "unauthorized access attempt, missing token",
					"request_id", requestcontext.RequestID(ctx))
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				m.IncrementAuthRejections()
				logger.WarnContext(ctx, "unauthorized access attempt, invalid token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			if !hasRole(claims.Roles, role) {
				m.IncrementAuthRejections()
				logger.WarnContext(ctx, "forbidden access attempt, missing role",
					"request_id", requestcontext.RequestID(ctx),
					"subject", claims.Subject,
					"required_role", role)
				httputil.WriteError(w, dErrors.Newf(dErrors.CodeForbidden, "role %q required", role))
				return
			}

			ctx = requestcontext.WithSubject(ctx, claims.Subject)
			ctx = requestcontext.WithRoles(ctx, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
