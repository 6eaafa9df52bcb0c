package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hopebridge/hopebridge/internal/admin"
	"github.com/hopebridge/hopebridge/internal/app"
	"github.com/hopebridge/hopebridge/internal/backend"
	jobmetrics "github.com/hopebridge/hopebridge/internal/jobs"
	"github.com/hopebridge/hopebridge/internal/platform/cache"
	"github.com/hopebridge/hopebridge/jobs"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	metricsAddr := flag.String("metrics-addr", ":9091", "address serving /metrics, empty disables it")
	flag.Parse()

	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(*envFile)
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	client := backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)
	catalog := admin.NewCatalog(client, backend.NewCache(redisClient, cfg.CacheTTL))
	metrics := jobmetrics.NewMetrics(nil)
	warmJob := jobs.NewCacheWarmJob(catalog, cfg.APIServiceToken, cfg.CacheWarmResources, logger, metrics)

	var cron []jobs.CronRegistration
	if cfg.CacheWarmEnabled() {
		warmTask, err := jobs.NewCacheWarmTask(jobs.CacheWarmPayload{})
		if err != nil {
			logger.Error("build cache warm task", slog.Any("error", err))
			os.Exit(1)
		}
		cron = append(cron, jobs.CronRegistration{
			Spec:    cfg.CacheWarmCron,
			Task:    warmTask,
			Options: []asynq.Option{asynq.MaxRetry(2), asynq.Unique(time.Minute)},
		})
	} else {
		logger.Warn("cache warm schedule disabled", slog.Bool("service_token", cfg.APIServiceToken != ""), slog.String("cron", cfg.CacheWarmCron))
	}

	redisOpt, err := jobs.RedisOpt(cfg.RedisAddr)
	if err != nil {
		logger.Error("redis options", slog.Any("error", err))
		os.Exit(1)
	}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   redisOpt,
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCacheWarm, Handler: warmJob.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: promhttp.Handler(), ReadTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server", slog.Any("error", err))
			}
		}()
		defer func() { _ = srv.Close() }()
	}

	logger.Info("starting worker", slog.Int("schedules", len(cron)))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
