package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/health"
	pkgmiddleware "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/middleware"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/gateway/internal/config"
	gwmiddleware "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/gateway/internal/middleware"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/gateway/internal/proxy"
)

// NewRouter creates a chi router with global middleware, operational
// endpoints, and proxy routes to the backend services.
func NewRouter(cfg *config.Config, sp *proxy.ServiceProxy, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack (applied in order).
	r.Use(pkgmiddleware.CORS(pkgmiddleware.DefaultCORSConfig()))
	r.Use(gwmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	r.Use(pkgmiddleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(pkgmiddleware.RequestLogging(logger))
	r.Use(pkgmiddleware.RequestLogger(logger))
	r.Use(pkgmiddleware.PrometheusMetrics("gateway"))

	// Health check endpoints (no auth required). The gateway is stateless;
	// readiness does not depend on the backends being up.
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())

	r.Handle("/metrics", promhttp.Handler())
	pkgmiddleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	// JWT auth applied to all /api routes; identity headers are forwarded to
	// the backends.
	r.Route("/api", func(r chi.Router) {
		r.Use(gwmiddleware.JWTAuth(cfg.JWTSecret, logger))

		// Stall service
		r.Handle("/v1/stalls", sp.Handler("stall"))
		r.Handle("/v1/stalls/*", sp.Handler("stall"))
		r.Handle("/v1/cafeterias", sp.Handler("stall"))
		r.Handle("/v1/cafeterias/*", sp.Handler("stall"))
		r.Handle("/v1/search/*", sp.Handler("stall"))
		r.Handle("/v1/favorites", sp.Handler("stall"))
		r.Handle("/v1/favorites/*", sp.Handler("stall"))

		// Review service
		r.Handle("/v1/reviews", sp.Handler("review"))
		r.Handle("/v1/reviews/*", sp.Handler("review"))
		r.Handle("/v1/reports", sp.Handler("review"))
		r.Handle("/v1/reports/*", sp.Handler("review"))
	})

	return r
}
