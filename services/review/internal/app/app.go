package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/health"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/httpclient"
	pkgkafka "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/kafka"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/client"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/config"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/event"
	handler "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/handler/http"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/repository/postgres"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/internal/service"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/review/migrations"
)

// App wires together all dependencies and runs the review service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.Files, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	prometheus.MustRegister(database.NewPoolStatsCollector(pool, "review-service"))

	// Kafka producer for aggregate change events.
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	producer := event.NewProducer(kafkaProducer, logger)

	// Stall service client behind a circuit breaker. When the breaker is open
	// the existence check degrades and reviews are accepted unverified.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.StallClientTimeout()
	stallHTTP := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("stall-service"),
		logger,
	)
	stallClient := client.NewStallClient(stallHTTP, cfg.StallServiceURL)

	// Build the dependency graph.
	reviewRepo := postgres.NewReviewRepository(pool)
	likeRepo := postgres.NewLikeRepository(pool)
	reportRepo := postgres.NewReportRepository(pool)

	reviewService := service.NewReviewService(reviewRepo, stallClient, producer, logger)
	likeService := service.NewLikeService(likeRepo, reviewRepo, logger)
	reportService := service.NewReportService(reportRepo, reviewRepo, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return kafkaProducer.Ping(ctx)
	})

	// HTTP router.
	router := handler.NewRouter(
		handler.NewReviewHandler(reviewService, logger),
		handler.NewLikeHandler(likeService, logger),
		handler.NewReportHandler(reportService, logger),
		healthHandler,
		cfg.PprofAllowedCIDRs,
		logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   kafkaProducer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
