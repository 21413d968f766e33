// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

// Command api is the entry point for the Forkful HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers and the weekly reminder job.
//  7. Start HTTP server with graceful shutdown.
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

	"github.com/forkful/forkful/internal/api"
	"github.com/forkful/forkful/internal/auth"
	"github.com/forkful/forkful/internal/email"
	"github.com/forkful/forkful/internal/platform/config"
	"github.com/forkful/forkful/internal/platform/constants"
	"github.com/forkful/forkful/internal/platform/migration"
	pgstore "github.com/forkful/forkful/internal/platform/postgres"
	redisstore "github.com/forkful/forkful/internal/platform/redis"
	"github.com/forkful/forkful/internal/platform/sec"
	"github.com/forkful/forkful/internal/profile"
	"github.com/forkful/forkful/internal/recipe"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Forkful] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Credential Codec ───────────────────────────────────────────────
	codec, err := sec.NewTokenCodec(cfg.AccessTokenSecret, cfg.RefreshTokenSecret)
	must(log, err, "initialize token codec")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	var sender email.Sender
	if cfg.SMTPHost != "" {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		log.Warn("smtp_not_configured_falling_back_to_log_sender")
		sender = email.NewLogSender(log)
	}

	userRepository := auth.NewUserRepository(pool)
	tokenLedger := auth.NewAccessTokenLedger(pool)
	confirmationRepository := auth.NewConfirmationTokenRepository(pool)
	authService := auth.NewService(userRepository, tokenLedger, confirmationRepository, codec, sender, cfg.ConfirmEmailLink, log)
	authHandler := auth.NewHandler(authService)

	recipeRepository := recipe.NewPostgresRepository(pool)
	recipeCache := recipe.NewRedisCache(rdb)
	recipeService := recipe.NewService(recipeRepository, recipeCache, log)
	recipeHandler := recipe.NewHandler(recipeService)

	profileRepository := profile.NewPostgresRepository(pool)
	profileService := profile.NewService(profileRepository, log)
	profileHandler := profile.NewHandler(profileService)

	// ── 9. Background Jobs ────────────────────────────────────────────────
	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()
	auth.StartWeeklyReminder(jobCtx, authService, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Recipe:    recipeHandler,
		Profile:   profileHandler,
	}

	server := api.NewServer(cfg, log, codec, userRepository, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
