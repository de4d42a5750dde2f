// Package httptransport is the thin HTTP layer over the directory and
// authentication services. Handlers decode, delegate and encode; business
// rules stay in the services.
package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"userdir/internal/platform/middleware"
	dErrors "userdir/pkg/domain-errors"
	"userdir/pkg/platform/httputil"
)

// Role names carried in issued tokens.
const (
	RoleAdmin   = "ADMIN"
	RoleAdvisor = "ADVISOR"
	RoleClient  = "CLIENT"
)

// HealthCheck probes one backing dependency for the readiness endpoint.
type HealthCheck func(ctx context.Context) error

// NewRouter mounts all endpoints. The login route and the operational
// endpoints are public; everything else sits behind bearer auth. The
// health checks gate /healthz on the configured backing stores.
func NewRouter(users *UserHandler, auth *AuthHandler, checks ...HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestMetadata)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for _, check := range checks {
			if err := check(req.Context()); err != nil {
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "dependency unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", auth.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth.Verifier(), auth.logger))

			r.Get("/me", auth.HandleMe)
			r.Get("/idtypes", users.HandleListIdTypes)
			r.Get("/roles", users.HandleListRoles)

			r.Route("/users", func(r chi.Router) {
				r.With(middleware.RequireRoles(RoleAdmin, RoleAdvisor)).Post("/", users.HandleCreate)
				r.With(middleware.RequireRoles(RoleAdmin, RoleAdvisor)).Get("/", users.HandleList)
				r.Put("/", users.HandleUpdate)
				r.Post("/basic", users.HandleBasicByEmails)
				r.With(middleware.RequireRoles(RoleClient)).Get("/exists/{idNumber}", users.HandleExists)
				r.Get("/{idNumber}", users.HandleGetByIdentification)
				r.With(middleware.RequireRoles(RoleAdmin)).Delete("/{idNumber}", users.HandleDelete)
			})
		})
	})

	return r
}
