package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/account_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/account_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/account_ledger/internal/core/ports/services"
	"github.com/SscSPs/account_ledger/internal/core/services"
	"github.com/SscSPs/account_ledger/internal/handlers"
	"github.com/SscSPs/account_ledger/internal/middleware"
	"github.com/SscSPs/account_ledger/internal/platform/config"
	"github.com/SscSPs/account_ledger/internal/realtime"
	"github.com/SscSPs/account_ledger/internal/realtime/bus"
	"github.com/SscSPs/account_ledger/internal/repositories/database/memory"
	"github.com/SscSPs/account_ledger/internal/repositories/database/pgsql"
	"github.com/SscSPs/account_ledger/internal/repositories/database/sqlite"
	"github.com/SscSPs/account_ledger/pkg/database"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// @title Account Ledger API
// @version 1.0
// @description Event-sourced account ledger: commands append events, queries read the projected analytics.

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := realtime.NewRegistry(
		realtime.WithBufferSize(cfg.SubscriberBufferSize),
		realtime.WithLogger(logger),
	)

	g, gctx := errgroup.WithContext(ctx)

	// With Redis configured the projector publishes to the channel and every
	// instance, this one included, feeds its registry from it.
	var notifier portssvc.UpdateNotifier = registry
	if cfg.RedisAddr != "" {
		redisBus, err := bus.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisChannel, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if cerr := redisBus.Close(); cerr != nil {
				logger.Error("Error closing redis bus", slog.String("error", cerr.Error()))
			}
		}()

		forward := func(record domain.AccountAnalytics) {
			_ = registry.Notify(gctx, record)
		}
		if err := redisBus.StartForwarder(gctx, forward); err != nil {
			return err
		}
		notifier = redisBus
		logger.Info("Analytics updates fan out over redis", slog.String("channel", cfg.RedisChannel))
	}

	container := services.NewServiceContainer(cfg, repos, registry, notifier, logger)

	// Rebuild whatever the read model missed before accepting commands
	if err := container.Projector.CatchUp(ctx); err != nil {
		return fmt.Errorf("projector catch-up: %w", err)
	}
	container.Projector.Start(context.WithoutCancel(gctx))

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("set trusted proxies: %w", err)
	}

	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		return fmt.Errorf("register routes: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown waits for open connections; end the SSE streams so it need not.
	srv.RegisterOnShutdown(registry.CloseAll)

	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store_driver", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)

		// Handlers are gone, so nothing publishes any more; drain the queue.
		container.Projector.Stop()
		return err
	})

	return g.Wait()
}

// openStore builds the repositories for the configured driver and returns a
// function releasing their resources.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		logger.Info("Running database migrations...")
		if err := database.MigratePostgres(cfg.DatabaseURL, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Database connection pool established.")
		return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool) }, nil

	case config.StoreDriverSQLite:
		if err := database.MigrateSQLite(cfg.SQLitePath, logger); err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite store opened", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), func() {
			if err := db.Close(); err != nil {
				logger.Error("Error closing sqlite store", slog.String("error", err.Error()))
			}
		}, nil

	default:
		logger.Warn("Using the in-memory store; events are lost on restart")
		return memory.NewRepositoryProvider(), func() {}, nil
	}
}
