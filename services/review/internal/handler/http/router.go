package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/health"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/middleware"
)

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(
	reviewHandler *ReviewHandler,
	likeHandler *LikeHandler,
	reportHandler *ReportHandler,
	healthHandler *health.Handler,
	pprofCIDRs []string,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("review-service"))
	r.Use(middleware.TrustedIdentity())

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Post("/", reviewHandler.CreateReview)
		r.Get("/me", reviewHandler.ListMyReviews)
		r.Get("/stall/{stallId}", reviewHandler.ListStallReviews)
		r.Get("/{id}", reviewHandler.GetReview)
		r.Put("/{id}", reviewHandler.UpdateReview)
		r.Delete("/{id}", reviewHandler.DeleteReview)

		r.Put("/{id}/like", likeHandler.Like)
		r.Delete("/{id}/like", likeHandler.Unlike)

		r.Post("/{id}/report", reportHandler.FileReport)
	})

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Use(middleware.RequireRole("admin"))
		r.Get("/pending", reportHandler.ListPendingReports)
		r.Get("/{id}", reportHandler.GetReport)
		r.Post("/{id}/handle", reportHandler.HandleReport)
	})

	return r
}
