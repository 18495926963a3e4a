// Copyright (c) 2026 LMS. All rights reserved.
// Author: Nikhilrai1

// Command api is the entry point for the LMS HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool), retrying until SIGINT/SIGTERM.
//  4. Run database migrations (idempotent).
//  5. Connect to Redis.
//  6. Wire collaborators, services and HTTP handlers.
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

	"github.com/Nikhilrai1/lms/internal/api"
	"github.com/Nikhilrai1/lms/internal/core/course"
	"github.com/Nikhilrai1/lms/internal/platform/config"
	"github.com/Nikhilrai1/lms/internal/platform/constants"
	"github.com/Nikhilrai1/lms/internal/platform/imagehost"
	"github.com/Nikhilrai1/lms/internal/platform/mail"
	"github.com/Nikhilrai1/lms/internal/platform/metrics"
	"github.com/Nikhilrai1/lms/internal/platform/middleware"
	"github.com/Nikhilrai1/lms/internal/platform/migration"
	pgstore "github.com/Nikhilrai1/lms/internal/platform/postgres"
	redisstore "github.com/Nikhilrai1/lms/internal/platform/redis"
	"github.com/Nikhilrai1/lms/internal/platform/sec"
	"github.com/Nikhilrai1/lms/internal/users/account"
	"github.com/Nikhilrai1/lms/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

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
	)

	// The root context is cancelled by SIGINT/SIGTERM, which also stops the
	// database retry loop during startup.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseRetryDelay, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 5. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(ctx, cfg.RedisURL, redisstore.PoolConfig{
		Size:    cfg.RedisPoolSize,
		MinIdle: cfg.RedisMinIdle,
	}, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 6. Collaborators ──────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Issuer:           constants.AuthIssuer,
		ActivationSecret: cfg.ActivationSecret,
		AccessSecret:     cfg.AccessTokenSecret,
		RefreshSecret:    cfg.RefreshTokenSecret,
		ActivationTTL:    cfg.ActivationTokenExpiry,
		AccessTTL:        cfg.AccessTTL(),
		RefreshTTL:       cfg.RefreshTTL(),
	})
	must(log, err, "initialize token service")

	mailer := newMailer(cfg, log)
	images := newImageHost(ctx, cfg, log)
	collector := metrics.New()

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error { return pgstore.Ping(ctx, pool) },
		CheckCache:    func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) },
	}, log)

	// ── 7. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewUserRepository(pool)
	sessionStore := auth.NewSessionStore(rdb)

	authService := auth.NewService(userRepository, sessionStore, tokens, mailer, collector)
	if cfg.SocialAuthEnabled() {
		identities, err := sec.NewIdentityVerifier(sec.IdentityConfig{
			Issuer:       cfg.SocialIssuer,
			Audience:     cfg.SocialAudience,
			PublicKeyPEM: cfg.SocialPublicKey,
		})
		must(log, err, "initialize identity verifier")
		authService.WithIdentityVerifier(identities)
	}
	accountService := account.NewService(userRepository, sessionStore, images, cfg.RefreshTTL())
	courseService := course.NewService(course.NewCourseRepository(pool), course.NewCourseCache(rdb), images, collector)

	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Authenticate: middleware.Authenticate(tokens, sessionStore),
		Auth:         auth.NewHandler(authService, auth.CookiePolicy{Production: cfg.IsProduction()}),
		Account:      account.NewHandler(accountService),
		Course:       course.NewHandler(courseService),
	}

	server := api.NewServer(ctx, cfg, log, collector, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case <-ctx.Done():
		log.Info("shutdown_signal_received")
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// newMailer uses SMTP when a relay is configured and logs mail otherwise.
func newMailer(cfg *config.Config, log *slog.Logger) mail.Sender {
	if !cfg.MailEnabled() {
		if cfg.IsProduction() {
			log.Warn("smtp_not_configured_mail_will_be_logged")
		}
		return mail.NewLogSender(log)
	}

	return mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, log)
}

// newImageHost uses the object store when a bucket is configured and keeps
// uploads in process otherwise.
func newImageHost(ctx context.Context, cfg *config.Config, log *slog.Logger) imagehost.Host {
	if !cfg.ImageHostEnabled() {
		log.Warn("object_store_not_configured_using_memory_host")
		return imagehost.NewMemoryHost("http://localhost:" + cfg.ServerPort + "/uploads")
	}

	s3Config := imagehost.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	}

	client, err := imagehost.NewS3Client(ctx, s3Config)
	must(log, err, "initialize object store")
	return imagehost.NewS3Host(client, s3Config, log)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
