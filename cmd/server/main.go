// Package main is the entry point for the GradeHub core server.
//
// The server exposes the record store, progress calculator, gamification
// engine and activity log over HTTP. Every write goes through a publishing
// store that announces the change on the change bus, so other views of the
// same data stay current without polling.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/gradehub/gradehub-core/config"
	"github.com/gradehub/gradehub-core/internal/application/command"
	"github.com/gradehub/gradehub-core/internal/application/query"
	"github.com/gradehub/gradehub-core/internal/domain/record"
	"github.com/gradehub/gradehub-core/internal/domain/shared"
	"github.com/gradehub/gradehub-core/internal/infrastructure/messaging"
	"github.com/gradehub/gradehub-core/internal/infrastructure/persistence"
	"github.com/gradehub/gradehub-core/internal/infrastructure/persistence/memory"
	"github.com/gradehub/gradehub-core/internal/infrastructure/persistence/postgres"
	"github.com/gradehub/gradehub-core/internal/infrastructure/persistence/sqlite"
	httpiface "github.com/gradehub/gradehub-core/internal/interface/http"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting GradeHub core server",
		"env", cfg.App.Environment,
		"debug", cfg.App.Debug,
		"storage", cfg.Storage.Driver,
		"grade_scale", cfg.Academic.GradeScale.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. RECORD STORE
	// ─────────────────────────────────────────────────────────────────────────
	var backing record.Store
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		log.Info("opening sqlite store", "path", cfg.Storage.SQLitePath)
		backing, err = sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
	case config.DriverPostgres:
		log.Info("connecting to postgres store")
		backing, err = postgres.Connect(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres store: %w", err)
		}
	case config.DriverMemory:
		log.Warn("using in-memory store, records will not survive a restart")
		backing = memory.NewStore()
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	defer func() {
		log.Info("closing record store...")
		_ = backing.Close()
	}()
	log.Info("record store ready")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. CHANGE BUS
	// ─────────────────────────────────────────────────────────────────────────
	var bus shared.ChangeBus
	if cfg.Redis.Enabled {
		log.Info("connecting to Redis change bus...", "channel", cfg.Redis.Channel)
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		bus, err = messaging.NewRedisChangeBus(messaging.RedisChangeBusConfig{
			Client:  messaging.NewGoRedisClient(client),
			Channel: cfg.Redis.Channel,
			Logger:  log,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis change bus: %w", err)
		}
		log.Info("Redis change bus established")
	} else {
		bus = messaging.NewInMemoryChangeBus(log)
	}
	defer func() {
		log.Info("closing change bus...")
		_ = bus.Close()
	}()

	// Every write is announced after it is persisted.
	store := persistence.NewPublishingStore(backing, bus, cfg.App.Name, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	scale := cfg.Academic.GradeScale

	logActivity := command.NewLogActivityHandler(store, log)
	recordActivity := command.NewRecordActivityHandler(store, scale, log)

	handlers := &httpiface.Handlers{
		RegisterStudentCmd: command.NewRegisterStudentHandler(store, log),
		EnrollCourseCmd:    command.NewEnrollCourseHandler(store, logActivity, recordActivity, log),
		RecordGradeCmd:     command.NewRecordGradeHandler(store, logActivity, recordActivity, log),
		LogActivityCmd:     logActivity,

		ProgressQry:        query.NewGetProgressHandler(store, scale, log),
		SystemStatsQry:     query.NewGetSystemStatsHandler(store, query.NewGetProgressHandler(store, scale, log), log),
		ActivitySummaryQry: query.NewGetActivitySummaryHandler(store, log),
		GamificationQry:    query.NewGetGamificationHandler(store, log),

		Logger: log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	srvCfg := httpiface.Config{
		Host:         cfg.HTTP.Host,
		Port:         cfg.HTTP.Port,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	srv := httpiface.NewServer(srvCfg, handlers, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "host", srvCfg.Host, "port", srvCfg.Port)
		errCh <- srv.Start()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger configures structured logging for the process.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.App.Environment == config.EnvProduction {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
