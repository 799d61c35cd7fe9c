// Copyright (c) 2026 Tuber. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Tuber account HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Run database migrations (idempotent).
//  4. Connect to PostgreSQL (pgxpool).
//  5. Connect to Redis when sessions live there.
//  6. Connect to S3 when a bucket is configured.
//  7. Wire services and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
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

	goredis "github.com/redis/go-redis/v9"

	"github.com/taibuivan/tuber/internal/api"
	"github.com/taibuivan/tuber/internal/platform/blob"
	"github.com/taibuivan/tuber/internal/platform/config"
	"github.com/taibuivan/tuber/internal/platform/constants"
	"github.com/taibuivan/tuber/internal/platform/migration"
	pgstore "github.com/taibuivan/tuber/internal/platform/postgres"
	redisstore "github.com/taibuivan/tuber/internal/platform/redis"
	"github.com/taibuivan/tuber/internal/platform/sec"
	"github.com/taibuivan/tuber/internal/users/account"
	"github.com/taibuivan/tuber/internal/users/auth"
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
		slog.String("session_backend", cfg.SessionBackend),
		slog.Bool("blob_storage", cfg.BlobStorageEnabled()),
	)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 4. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	accounts := auth.NewPostgresStore(pool)

	health := api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
	}

	// ── 5. Token service and session store ────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        constants.AuthIssuer,
	})
	must(log, err, "initialize token service")

	var sessions auth.SessionStore = accounts
	if cfg.SessionBackend == config.SessionBackendRedis {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer closeRedis(log, rdb)

		sessions = auth.NewRedisSessionStore(rdb, tokens.RefreshTTL())
		health.CheckSessions = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}

	// ── 6. Object storage ─────────────────────────────────────────────────
	// Left as a nil interface when disabled so uploads fail as upstream errors.
	var media auth.MediaStore
	if cfg.BlobStorageEnabled() {
		store, err := blob.New(startupCtx, blob.Config{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		must(log, err, "initialize object storage")
		media = store
	}

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	authService := auth.NewService(auth.ServiceDeps{
		Accounts: accounts,
		Sessions: sessions,
		Tokens:   tokens,
		Hasher:   sec.NewBcryptHasher(),
		Media:    media,
		Policy: auth.Policy{
			AvatarRequired:                 cfg.AvatarRequired,
			RevokeSessionsOnPasswordChange: cfg.RevokeSessionsOnPasswordChange,
		},
		Logger: log,
	})
	accountService := account.NewService(accounts, media, log)

	liveness, readiness := api.NewHealthHandlers(health, log)

	server := api.NewServer(cfg, log, tokens, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      auth.NewHandler(authService, auth.NewCookieWriter(cfg.CookieSecure)),
		Account:   account.NewHandler(accountService),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
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
		log.Error("server_startup_error", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("server_shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

func closeRedis(log *slog.Logger, client *goredis.Client) {
	log.Info("closing_redis_client")
	if err := client.Close(); err != nil {
		log.Error("redis_close_error", slog.Any("error", err))
	}
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
