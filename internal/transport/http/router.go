// Package httptransport assembles the HTTP API surface: middleware chain,
// authenticated audit routes, and the operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"markpart/internal/participant/handler"
	"markpart/pkg/platform/httputil"
	"markpart/pkg/platform/middleware/auth"
	"markpart/pkg/platform/middleware/requestid"
	"markpart/pkg/platform/middleware/requesttime"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router mounts.
type Deps struct {
	AuditLogs *handler.Handler
	Validator auth.JWTValidator
	Logger    *slog.Logger
	// Checks run on /health, keyed by dependency name. A nil map means the
	// process is healthy whenever it is serving.
	Checks map[string]HealthChecker
}

// NewRouter wires all endpoints. Audit routes sit behind bearer-token auth
// requiring the audit-log:view claim; /health and /metrics stay open for
// probes and scrapers.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Validator, "audit-log:view", deps.Logger))
		deps.AuditLogs.Register(r)
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range deps.Checks {
			if err := check.Health(req.Context()); err != nil {
				status[name] = "unreachable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "ok"
		}
		httputil.WriteJSON(w, code, status)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
