// Command server starts the resume extraction HTTP server.
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

	"github.com/joho/godotenv"

	rediscache "github.com/fairyhunter13/cv-autofill/internal/adapter/cache/redis"
	httpserver "github.com/fairyhunter13/cv-autofill/internal/adapter/httpserver"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/observability"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/ratelimit"
	"github.com/fairyhunter13/cv-autofill/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/cv-autofill/internal/app"
	"github.com/fairyhunter13/cv-autofill/internal/config"
	"github.com/fairyhunter13/cv-autofill/internal/domain"
	"github.com/fairyhunter13/cv-autofill/internal/usecase"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)

	observability.InitMetrics()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracer, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		slog.Error("failed to setup tracing", slog.Any("error", err))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	if missing := app.MissingTools(cfg); len(missing) > 0 {
		slog.Warn("ocr tools not found on PATH, scanned documents will fail", slog.Any("missing", missing))
	}

	var (
		repo   domain.ProfileRepository
		cache  domain.ProfileCache
		events domain.EventPublisher
		deps   app.Dependencies
		budget httpserver.Limiter
	)

	// Infra: DB pool
	if cfg.DBURL != "" {
		pool, err := postgres.Connect(ctx, cfg.DBURL, cfg.GetRetryConfig().BackOff())
		if err != nil {
			slog.Error("db connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			slog.Error("db schema failed", slog.Any("error", err))
			os.Exit(1)
		}
		profileRepo := postgres.NewProfileRepo(pool)
		repo = profileRepo
		deps.DB = pool

		// Start cleanup service for data retention
		if cfg.DataRetentionDays > 0 {
			cleanupSvc := postgres.NewCleanupService(profileRepo, cfg.DataRetentionDays)
			go cleanupSvc.RunPeriodic(ctx, cfg.CleanupInterval)
			slog.Info("cleanup service started", slog.Int("retention_days", cfg.DataRetentionDays), slog.Duration("interval", cfg.CleanupInterval))
		}
	} else {
		slog.Info("DB_URL not set, profiles are not persisted")
	}

	if cfg.RedisURL != "" {
		rdb, err := rediscache.NewClient(cfg.RedisURL)
		if err != nil {
			slog.Error("redis config invalid", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
		cache = rediscache.New(rdb, cfg.ProfileCacheTTL)
		deps.Redis = rdb
		if cfg.ExtractBudgetPerMin > 0 {
			budget = ratelimit.NewRedisLimiter(rdb, map[string]ratelimit.BucketConfig{
				app.BucketExtract: ratelimit.PerMinute(cfg.ExtractBudgetPerMin),
			})
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := redpanda.NewProducer(ctx, cfg.KafkaBrokers, cfg.ProfileEventsTopic)
		if err != nil {
			slog.Error("redpanda producer connect failed", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				slog.Error("failed to close producer", slog.Any("error", err))
			}
		}()
		events = producer
		deps.Kafka = producer
	}

	// Usecases
	extractSvc, err := app.BuildExtractionService(cfg)
	if err != nil {
		slog.Error("extraction pipeline setup failed", slog.Any("error", err))
		os.Exit(1)
	}
	profileSvc := usecase.NewProfileService(extractSvc, repo, cache, events)

	sessions := usecase.NewSessionRegistry(profileSvc, usecase.SessionOptions{
		ClearAfter: cfg.StatusClearAfter,
		Metrics:    observability.ExtractionMetrics{},
	}, cfg.SessionIdleTTL)
	go sessions.RunPeriodic(ctx, time.Minute)

	// HTTP server
	srv := httpserver.NewServer(cfg, profileSvc, sessions, app.BuildReadinessChecks(deps)...)
	srv.Budget = budget
	handler := app.BuildRouter(cfg, srv)

	srvHTTP := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// ends open event streams so Shutdown does not wait on them
	srvHTTP.RegisterOnShutdown(sessions.CloseAll)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", slog.Int("port", cfg.Port), slog.Bool("auth", cfg.AuthEnabled()))
		errCh <- srvHTTP.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	_ = srvHTTP.Shutdown(shutdownCtx)
	stop()
}
