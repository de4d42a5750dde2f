package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"userdir/internal/auth/token"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/httputil"
	"userdir/pkg/requestcontext"
)

// TokenVerifier validates a bearer token and returns its claims.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*token.Claims, bool)
}

type contextKeySubject struct{}
type contextKeyRoles struct{}

// Subject retrieves the authenticated account identifier from the context.
func Subject(ctx context.Context) string {
	if subject, ok := ctx.Value(contextKeySubject{}).(string); ok {
		return subject
	}
	return ""
}

// Roles retrieves the authenticated account's role names from the context.
func Roles(ctx context.Context) []string {
	if roles, ok := ctx.Value(contextKeyRoles{}).([]string); ok {
		return roles
	}
	return nil
}

// WithIdentity injects subject and roles into a context. Useful for
// handler tests that skip the middleware chain.
func WithIdentity(ctx context.Context, subject string, roles []string) context.Context {
	ctx = context.WithValue(ctx, contextKeySubject{}, subject)
	return context.WithValue(ctx, contextKeyRoles{}, roles)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				unauthorized(w)
				return
			}

			claims, ok := verifier.VerifyToken(raw)
			if !ok {
				if logger != nil {
					logger.WarnContext(r.Context(), "rejected invalid bearer token",
						"request_id", requestcontext.RequestID(r.Context()),
					)
				}
				unauthorized(w)
				return
			}

			ctx := WithIdentity(r.Context(), claims.Subject(), claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles allows only callers holding at least one of the named
// roles. It must run after RequireAuth.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			held := Roles(r.Context())
			for _, required := range roles {
				if slices.Contains(held, required) {
					next.ServeHTTP(w, r)
					return
				}
			}

			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role"))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
}
