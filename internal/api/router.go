package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"crypto-trader/backend/internal/config"
	"crypto-trader/backend/internal/logging"
)

// Requests-per-second budget for the login endpoint. Credential guessing is
// the only realistic abuse vector on this surface.
const (
	loginRateLimitRPS   = 5
	loginRateLimitBurst = 10
)

// NewRouter creates and configures the chi router with all application routes.
func NewRouter(h *Handler, logger *zap.Logger, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := newRequestMetrics(registry)

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metrics.handler)
	r.Use(requestLogger(logging.ServerLogger(logger)))
	r.Use(recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// --- Public routes ---
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/health/ready", h.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// --- Versioned API routes ---
	r.Route(cfg.APIV1Prefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimit(newTokenBucketLimiter(loginRateLimitRPS, loginRateLimitBurst), logger))
			r.Post("/auth/login", h.Login)
		})

		r.Get("/users/me", h.Me)
	})

	return r
}
