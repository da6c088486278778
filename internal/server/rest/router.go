package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
)

// RouterConfig wires the services and cross-cutting options into the router.
type RouterConfig struct {
	Users  UserService
	Tasks  TaskService
	Tokens TokenVerifier
	Logger logging.Logger
	// AuthRateLimit applies per client IP to /api/v1/auth; empty disables it.
	AuthRateLimit string
	Metrics       bool
	Development   bool
	// Health reports storage readiness for GET /health; nil means always ready.
	Health func(ctx context.Context) error
	// Now is the clock used to validate due dates; nil means time.Now.
	Now func() time.Time
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	authLimit, err := newRateLimiter(cfg.AuthRateLimit)
	if err != nil {
		return nil, fmt.Errorf("auth rate limit %q: %w", cfg.AuthRateLimit, err)
	}

	g := newGate(now)
	ah := &authHandler{users: cfg.Users, gate: g, log: log}
	th := &taskHandler{tasks: cfg.Tasks, gate: g, log: log}

	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(metricsMiddleware)
	}
	r.Use(newSecure(cfg.Development))

	r.Get("/health", healthHandler(cfg.Health))
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))

		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/register", ah.register)
			r.Post("/login", ah.login)
			r.Post("/refresh", ah.refresh)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Use(bearerAuth(cfg.Tokens, log))
			r.Post("/", th.create)
			r.Put("/", th.update)
			r.Get("/", th.list)
			r.Get("/search", th.search)
			r.Get("/status", th.filterByCompletion)
			r.Get("/{id}", th.get)
			r.Delete("/{id}", th.delete)
			r.Patch("/{id}/completion", th.setCompletion)
		})
	})

	return r, nil
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
