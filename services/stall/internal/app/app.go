package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/database"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/health"
	pkgkafka "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/pkg/kafka"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/cache"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/config"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/event"
	handler "github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/handler/http"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/repository/postgres"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/internal/service"
	"github.com/SWE5006-Group-7/NUSHungry-Backend-microservices-sub002/services/stall/migrations"
)

// App wires together all dependencies and runs the stall service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *redis.Client
	dlq        *pkgkafka.DLQProducer
	consumers  []*pkgkafka.Consumer
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

	prometheus.MustRegister(database.NewPoolStatsCollector(pool, "stall-service"))

	// Initialize Redis for the stall cache.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	// Build the dependency graph.
	cafeteriaRepo := postgres.NewCafeteriaRepository(pool)
	stallRepo := postgres.NewStallRepository(pool)
	favoriteRepo := postgres.NewFavoriteRepository(pool)

	stallCache := cache.NewStallCache(redisClient, cfg.CacheTTL(), logger)

	cafeteriaService := service.NewCafeteriaService(cafeteriaRepo, logger)
	stallService := service.NewStallService(stallRepo, cafeteriaRepo, stallCache, logger)
	favoriteService := service.NewFavoriteService(favoriteRepo, stallRepo, logger)

	// Kafka consumers for review aggregate events.
	var dlq *pkgkafka.DLQProducer
	if cfg.DLQEnabled {
		dlq = pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
	}
	idempotencyStore := pkgkafka.NewMemoryIdempotencyStore(cfg.IdempotencyTTL())
	consumerHandler := event.NewConsumerHandler(stallService, logger)
	consumers := event.NewConsumers(cfg.KafkaBrokers, consumerHandler, idempotencyStore, dlq, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	// HTTP router.
	router := handler.NewRouter(
		handler.NewStallHandler(stallService, logger),
		handler.NewCafeteriaHandler(cafeteriaService, logger),
		handler.NewFavoriteHandler(favoriteService, logger),
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
		redis:      redisClient,
		dlq:        dlq,
		consumers:  consumers,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and Kafka consumers and blocks until the context
// is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	for _, c := range a.consumers {
		consumer := c
		go func() {
			if err := consumer.Start(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

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

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}

	if a.dlq != nil {
		if err := a.dlq.Close(); err != nil {
			a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
		}
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
