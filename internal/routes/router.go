package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"leadcapture/formbridge/internal/api"
	"leadcapture/formbridge/internal/config"
	"leadcapture/formbridge/internal/logging"
	"leadcapture/formbridge/internal/middleware"
)

// RegisterRoutes builds the HTTP handler. gatherer backs /metrics and must be
// the registry deps.Metrics was registered on.
func RegisterRoutes(deps *api.Dependencies, cfg *config.Config, gatherer prometheus.Gatherer, upSince time.Time) http.Handler {
	r := chi.NewRouter()

	// global middleware
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthCheck", api.HealthCheckHandler(deps.DB, deps.WordPress, upSince))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	handlers := api.NewHandlers(deps)
	limiter := middleware.NewRateLimiter(cfg.SubmitRatePerSec, cfg.SubmitBurst)
	RegisterAPIRoutes(r, handlers, limiter, []byte(cfg.AdminTokenSecret))

	logging.Info("Router initialized",
		"cors_origins", cfg.CORSOrigins,
		"submit_rate_per_sec", cfg.SubmitRatePerSec,
		"submit_burst", cfg.SubmitBurst,
		"trust_proxy", cfg.TrustProxy,
	)
	return r
}
