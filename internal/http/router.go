package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"gitea.jw6.us/james/syllacal/internal/api"
	"gitea.jw6.us/james/syllacal/internal/auth"
	"gitea.jw6.us/james/syllacal/internal/config"
	"gitea.jw6.us/james/syllacal/internal/http/csrf"
	"gitea.jw6.us/james/syllacal/internal/http/ratelimit"
	"gitea.jw6.us/james/syllacal/internal/metrics"
	"gitea.jw6.us/james/syllacal/internal/store"
)

// NewRouter wires the HTTP surface: health and metrics probes, the
// Google sign-in flow and the JSON API.
func NewRouter(cfg *config.Config, store *store.Store, authService *auth.Service, apiHandler *api.Handler) http.Handler {
	r := chi.NewRouter()

	// Auth endpoints: 5 requests per second, burst of 10
	authRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)
	// Analysis endpoint: each call spends LLM quota, so 5 per hour
	analyzeRateLimiter := ratelimit.NewIPRateLimiter(rate.Every(12*time.Minute), 5, time.Hour, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Route("/auth", func(r chi.Router) {
		r.Use(authRateLimiter.Middleware())
		r.Get("/login", authService.BeginOAuth)
		r.Get("/callback", authService.HandleOAuthCallback)
	})
	r.With(authService.RequireSession, csrf.Middleware(cfg)).Post("/auth/logout", authService.Logout)

	// Login-state probe stays reachable without a session so the
	// frontend can render the signed-out view.
	r.With(authService.AttachSession).Get("/api/user", apiHandler.User)

	r.Route("/api", func(r chi.Router) {
		r.Use(authService.RequireSession)
		r.Use(csrf.Middleware(cfg))

		r.Get("/events", apiHandler.Events)
		r.Post("/update-event", apiHandler.UpdateEvent)
		r.Post("/delete-events", apiHandler.DeleteEvents)

		r.With(analyzeRateLimiter.Middleware()).Post("/analyze", apiHandler.Analyze)

		r.Get("/staged", apiHandler.Staged)
		r.Delete("/staged", apiHandler.ClearStaged)
		r.Delete("/staged/{index}", apiHandler.RemoveStaged)

		r.Get("/settings", apiHandler.Settings)
		r.Post("/settings/rules", apiHandler.AddRule)
		r.Put("/settings/rules/{category}/{index}", apiHandler.UpdateRule)
		r.Delete("/settings/rules/{category}/{index}", apiHandler.RemoveRule)

		r.Post("/commit", apiHandler.Commit)
	})

	return r
}
