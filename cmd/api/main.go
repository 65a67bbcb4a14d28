// Copyright (c) 2026 Gritsos. All rights reserved.

// Command api is the entry point for the Gritsos HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the database (PostgreSQL or SQLite) and run migrations.
//  4. Connect to Redis when the failure throttle is enabled.
//  5. Wire the authentication gate and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gritsos/gritsos-api/internal/api"
	"github.com/gritsos/gritsos-api/internal/platform/config"
	"github.com/gritsos/gritsos-api/internal/platform/constants"
	"github.com/gritsos/gritsos-api/internal/platform/database"
	"github.com/gritsos/gritsos-api/internal/platform/metrics"
	redisstore "github.com/gritsos/gritsos-api/internal/platform/redis"
	"github.com/gritsos/gritsos-api/internal/platform/sec"
	"github.com/gritsos/gritsos-api/internal/users/account"
	"github.com/gritsos/gritsos-api/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("throttle_enabled", cfg.ThrottleEnabled()),
	)

	// Bounded startup so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Database ───────────────────────────────────────────────────────
	handle, err := database.Open(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "open database")
	defer func() {
		log.Info("closing_database", slog.String("driver", string(handle.Driver)))
		handle.Close()
	}()

	checks := []api.HealthCheck{{Name: string(handle.Driver), Check: handle.Ping}}

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	// The interface stays nil when Redis is disabled so the gate skips throttling.
	var throttle auth.Throttle
	if cfg.ThrottleEnabled() {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing_redis_client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()

		throttle = auth.NewRedisThrottle(rdb, cfg.AuthFailureLimit, cfg.AuthFailureWindow)
		checks = append(checks, api.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		}})
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	repository, err := auth.NewRepository(handle)
	must(log, err, "select repository")

	issuer := auth.NewTokenIssuer(repository, cfg.TokenLength)
	store := auth.NewStore(repository, issuer, sec.NewHasher(cfg.BcryptCost))
	gate := auth.NewGate(store, throttle, cfg.AuthTimeout)

	liveness, readiness := api.NewHealthHandlers(log, checks...)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		User:      account.NewHandler(account.NewService(store), gate),
		Devices:   api.NewDeviceHandler(gate),
	}
	if cfg.MetricsEnabled {
		handlers.Metrics = metrics.Handler()
	}

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, handlers)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
