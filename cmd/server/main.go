// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/festy23/teammatch/internal/cache"
	"github.com/festy23/teammatch/internal/config"
	"github.com/festy23/teammatch/internal/database/database"
	"github.com/festy23/teammatch/internal/database/migrate"
	"github.com/festy23/teammatch/internal/embedding"
	eventRouter "github.com/festy23/teammatch/internal/event/router"
	"github.com/festy23/teammatch/internal/health"
	matchingRouter "github.com/festy23/teammatch/internal/matching/router"
	"github.com/festy23/teammatch/internal/matching/scorer"
	"github.com/festy23/teammatch/internal/middleware"
	"github.com/festy23/teammatch/internal/notification"
	profileRouter "github.com/festy23/teammatch/internal/profile/router"
	requestRouter "github.com/festy23/teammatch/internal/request/router"
	"github.com/festy23/teammatch/internal/scheduler"
	statisticsRouter "github.com/festy23/teammatch/internal/statistics/router"
	teamRouter "github.com/festy23/teammatch/internal/team/router"
	"github.com/festy23/teammatch/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatalw("Server stopped with error", "error", err)
	}
}

func run(cfg config.Config, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warnw("Failed to close database", "error", err)
		}
	}()

	if err := migrate.Migrate(db, logger); err != nil {
		return err
	}

	c, closeCache := newCache(cfg.Redis, logger)
	defer closeCache()
	oracle := newOracle(cfg.Matching, logger)
	publisher, closePublisher := newPublisher(cfg.NATS, logger)
	defer closePublisher()

	profiles := profileRouter.NewService(db, oracle, c, logger)
	if cfg.Matching.EmbeddingEnabled {
		if _, err := profiles.ReindexEmbeddings(ctx); err != nil {
			logger.Warnw("Embedding reindex failed, ranking falls back to skill overlap", "error", err)
		}
	}

	ledger := teamRouter.NewLedger(db, c, logger)

	sc := scorer.New(oracle)
	if !cfg.Matching.EmbeddingEnabled {
		sc = sc.WithoutEmbedding()
	}
	broker := requestRouter.NewBroker(db, ledger, sc, c, publisher, cfg.Requests, logger)

	ranker, err := matchingRouter.NewRanker(db, ledger, oracle, c, cfg.Matching, logger)
	if err != nil {
		return err
	}
	defer ranker.Close()

	if cfg.Scheduler.Enabled {
		jobs, err := scheduler.New(cfg.Scheduler, broker, ledger, logger)
		if err != nil {
			return err
		}
		jobs.Start()
		defer func() {
			if err := jobs.Shutdown(); err != nil {
				logger.Warnw("Failed to stop scheduler", "error", err)
			}
		}()
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Logger(logger))

	r.GET("/health", health.New(db, c, logger).Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/", middleware.Auth(cfg.Auth.JWTSecret, logger))
	eventRouter.RegisterRoutes(api, db, logger)
	profileRouter.RegisterRoutes(api, profiles, logger)
	teamRouter.RegisterRoutes(api, ledger, logger)
	requestRouter.RegisterRoutes(api, broker, logger)
	matchingRouter.RegisterRoutes(api, ranker, logger)
	statisticsRouter.RegisterRoutes(api, db, logger)

	return serve(ctx, cfg.Server, r, db, logger)
}

func serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, db *gorm.DB, logger *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:         cfg.GetAddress(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("Server listening", "address", srv.Addr)
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
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if stats, err := database.GetStats(db); err == nil {
		logger.Infow("Database pool at shutdown", "open", stats.OpenConnections, "in_use", stats.InUse)
	}
	return nil
}

// newCache connects to Redis when enabled. The cache is never a source of
// truth, so an unreachable Redis only disables caching.
func newCache(cfg config.RedisConfig, logger *zap.SugaredLogger) (cache.Cache, func()) {
	if !cfg.Enabled {
		return cache.NewNoop(), func() {}
	}
	rc, err := cache.NewRedis(cfg, logger)
	if err != nil {
		logger.Warnw("Redis unavailable, suggestions will not be cached", "error", err)
		return cache.NewNoop(), func() {}
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			logger.Warnw("Failed to close Redis client", "error", err)
		}
	}
}

func newOracle(cfg config.MatchingConfig, logger *zap.SugaredLogger) embedding.Oracle {
	if !cfg.EmbeddingEnabled {
		return embedding.Disabled{}
	}
	return embedding.NewChromem(logger).InScope(cfg.PoolScope)
}

func newPublisher(cfg config.NATSConfig, logger *zap.SugaredLogger) (notification.Publisher, func()) {
	if !cfg.Enabled {
		return notification.Noop{}, func() {}
	}
	pub, err := notification.Connect(cfg, logger)
	if err != nil {
		logger.Warnw("NATS unavailable, request notifications disabled", "error", err)
		return notification.Noop{}, func() {}
	}
	return pub, func() {
		if err := pub.Close(); err != nil {
			logger.Warnw("Failed to close NATS connection", "error", err)
		}
	}
}
