package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wisbric/dutyplan/internal/config"
	"github.com/wisbric/dutyplan/internal/httpserver"
	"github.com/wisbric/dutyplan/internal/notify"
	"github.com/wisbric/dutyplan/internal/platform"
	"github.com/wisbric/dutyplan/internal/runlock"
	"github.com/wisbric/dutyplan/internal/store"
	"github.com/wisbric/dutyplan/internal/telemetry"
	"github.com/wisbric/dutyplan/internal/worker"
	"github.com/wisbric/dutyplan/pkg/calendar"
)

// Run is the main application entry point. It reads config, connects to
// infrastructure, and starts the appropriate mode (api or worker).
func Run(ctx context.Context, cfg *config.Config) error {
	logger := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting dutyplan",
		"mode", cfg.Mode,
		"listen", cfg.ListenAddr(),
	)

	db, err := platform.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	rdb, err := platform.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("closing redis", "error", err)
		}
	}()

	if err := platform.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("migrations applied")

	metricsReg := telemetry.NewMetricsRegistry()

	replanInterval, err := time.ParseDuration(cfg.ReplanInterval)
	if err != nil {
		return fmt.Errorf("parsing replan interval %q: %w", cfg.ReplanInterval, err)
	}
	runLockTTL, err := time.ParseDuration(cfg.RunLockTTL)
	if err != nil {
		return fmt.Errorf("parsing run lock TTL %q: %w", cfg.RunLockTTL, err)
	}

	st := store.NewStore(db)
	lock := runlock.New(rdb, cfg.RunLockKey, runLockTTL)
	notifier := notify.New(cfg.SlackBotToken, cfg.SlackDigestChannel, logger)
	w := worker.New(st, lock, notifier, calendar.NoHolidays{}, cfg.PlanningHorizonDays, logger)

	switch cfg.Mode {
	case "api":
		return runAPI(ctx, cfg, logger, db, rdb, metricsReg, st, w)
	case "worker":
		return runWorker(ctx, logger, w, replanInterval)
	default:
		return fmt.Errorf("unknown mode: %s", cfg.Mode)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, logger *slog.Logger,
	db *pgxpool.Pool, rdb *redis.Client, metricsReg *prometheus.Registry,
	st *store.Store, w *worker.Worker) error {

	srv := httpserver.NewServer(logger, db, rdb, metricsReg, st, w)

	httpSrv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server listening", "addr", cfg.ListenAddr())
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func runWorker(ctx context.Context, logger *slog.Logger, w *worker.Worker, interval time.Duration) error {
	logger.Info("worker started")
	w.RunLoop(ctx, interval)
	return nil
}
