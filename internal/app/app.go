package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newsprism/analytics-server/internal/api"
	"github.com/newsprism/analytics-server/internal/config"
	"github.com/newsprism/analytics-server/internal/repository"
	"github.com/newsprism/analytics-server/internal/service"
	"github.com/newsprism/analytics-server/internal/snapshot"
	"github.com/newsprism/analytics-server/pkg/cache"
	dbbuilder "github.com/newsprism/analytics-server/pkg/database"
	"github.com/newsprism/analytics-server/pkg/httpserver"

	"go.uber.org/zap"
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	httpServer *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	var store service.SnapshotStore
	var dbPool *sql.DB

	switch cfg.SnapshotDriver {
	case "sqlite":
		pool, err := dbbuilder.New(
			dbbuilder.WithDriver("sqlite3"),
			dbbuilder.WithDataSource(cfg.DBPath),
		)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))
		dbPool = pool
		store = repository.NewSnapshotRepository(pool)

	case "json":
		store = snapshot.NewLoader(cfg.SnapshotDir, logger)
		logger.Info("Snapshot loader initialized", zap.String("dir", cfg.SnapshotDir))

	default:
		return nil, fmt.Errorf("unknown snapshot driver %q: want json or sqlite", cfg.SnapshotDriver)
	}

	cacheClient, err := cache.New(ctx,
		cache.WithAddress(cfg.RedisAddr),
	)
	if err != nil {
		if dbPool != nil {
			_ = dbPool.Close()
		}
		return nil, fmt.Errorf("cache init failed: %w", err)
	}
	logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))

	analyticsService := service.NewAnalyticsService(store, logger)

	handlers := api.NewHandlers(analyticsService, cacheClient, logger, cfg.CacheTTL)

	httpServer, err := httpserver.New(
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithLogger(logger),
		httpserver.WithLogging(true),
		httpserver.WithReleaseMode(cfg.AppEnv == "production"),
	)
	if err != nil {
		_ = cacheClient.Close()
		if dbPool != nil {
			_ = dbPool.Close()
		}
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	handlers.Register(httpServer.Engine())

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		httpServer: httpServer,
	}, nil
}

// Run starts the application and blocks until a shutdown signal is received.
func (a *App) Run() error {
	a.logger.Info("application starting")

	a.httpServer.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.logger.Info("application shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := a.cache.Close(); err != nil {
		a.logger.Error("cache shutdown error", zap.Error(err))
	}
	if a.dbPool != nil {
		if err := a.dbPool.Close(); err != nil {
			a.logger.Error("database shutdown error", zap.Error(err))
		}
	}

	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			a.logger.Warn("shutdown completed but deadline exceeded")
		}
	default:
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}
