package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/binhtph/quiz-app/internal/cache"
	"github.com/binhtph/quiz-app/internal/config"
	"github.com/binhtph/quiz-app/internal/events"
	"github.com/binhtph/quiz-app/internal/handlers"
	"github.com/binhtph/quiz-app/internal/metrics"
	"github.com/binhtph/quiz-app/internal/repositories/postgres"
	"github.com/binhtph/quiz-app/internal/seed"
	"github.com/binhtph/quiz-app/internal/services"
	"github.com/binhtph/quiz-app/internal/session"
	"github.com/binhtph/quiz-app/internal/utils"
	"github.com/binhtph/quiz-app/internal/validator"
	"github.com/binhtph/quiz-app/pkg"
	"github.com/gin-gonic/gin"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}

	repo := postgres.NewRepository(db)

	if cfg.SeedSampleData {
		if _, err := seed.SampleData(context.Background(), repo, logger); err != nil {
			return err
		}
	}

	cacheService := newCache(cfg, logger)

	m := metrics.New()

	broadcaster := events.NewBroadcaster(logger)
	external, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher, falling back to mock", "error", err)
		external = events.NewMockEventPublisher(logger)
	}
	publisher := events.NewMultiPublisher(broadcaster, external)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publishers", "error", err)
		}
	}()

	sessions := session.NewManager(logger, cfg.SessionTTL)
	defer sessions.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sessions.Run(ctx, sweepInterval, m.SetActiveSessions)

	serviceManager := services.NewServiceManager(
		repo,
		cacheService,
		publisher,
		sessions,
		logger,
		validator.New(),
		m,
		services.ManagerConfig{
			DefaultPIN:          cfg.DefaultPIN,
			LeaderboardLimit:    cfg.LeaderboardLimit,
			LeaderboardCacheTTL: cfg.LeaderboardCacheTTL,
		},
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger := utils.NewSlogLogger(logger)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(appLogger))
	router.Use(utils.ContextLogger(appLogger))
	router.Use(m.MetricsMiddleware())

	handlers.NewHandlerManager(serviceManager, broadcaster, m, appLogger, handlers.RouterConfig{
		PinRateLimitPerMin: cfg.PinRateLimitPerMin,
		GitCommit:          cfg.GitCommit,
		GitCommitFull:      cfg.GitCommitFull,
	}).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Open event streams only end when their request context does.
	srv.RegisterOnShutdown(func() {
		if err := broadcaster.Close(); err != nil {
			logger.Warn("Failed to close broadcaster", "error", err)
		}
	})
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server exiting")
	return nil
}

// newCache uses Redis when REDIS_URL is set and reachable, in-memory otherwise.
func newCache(cfg *config.Config, logger *slog.Logger) cache.CacheService {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-memory cache")
		return cache.NewMemoryCache()
	}

	client, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		return cache.NewMemoryCache()
	}
	return cache.NewRedisCache(client, logger)
}
