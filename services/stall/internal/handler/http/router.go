package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/health"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/middleware"
)

// NewRouter creates a chi router with all stall service routes registered.
func NewRouter(
	stallHandler *StallHandler,
	cafeteriaHandler *CafeteriaHandler,
	favoriteHandler *FavoriteHandler,
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
	r.Use(middleware.PrometheusMetrics("stall-service"))
	r.Use(middleware.TrustedIdentity())

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())
	middleware.RegisterPprof(r, pprofCIDRs, logger)

	r.Route("/api/v1/cafeterias", func(r chi.Router) {
		// Cafeteria data changes rarely; let clients cache reads briefly.
		r.With(middleware.CacheControl(300)).Get("/", cafeteriaHandler.ListCafeterias)
		r.With(middleware.CacheControl(300)).Get("/{id}", cafeteriaHandler.GetCafeteria)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			r.Post("/", cafeteriaHandler.CreateCafeteria)
			r.Put("/{id}", cafeteriaHandler.UpdateCafeteria)
			r.Delete("/{id}", cafeteriaHandler.DeleteCafeteria)
		})
	})

	r.Route("/api/v1/stalls", func(r chi.Router) {
		r.Get("/{idOrSlug}", stallHandler.GetStall)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole("admin"))
			r.Post("/", stallHandler.CreateStall)
			r.Put("/{id}", stallHandler.UpdateStall)
			r.Delete("/{id}", stallHandler.DeleteStall)
		})
	})

	r.Get("/api/v1/search/stalls", stallHandler.SearchStalls)

	r.Route("/api/v1/favorites", func(r chi.Router) {
		r.Get("/", favoriteHandler.ListFavorites)
		r.Put("/{stallId}", favoriteHandler.AddFavorite)
		r.Delete("/{stallId}", favoriteHandler.RemoveFavorite)
	})

	return r
}
