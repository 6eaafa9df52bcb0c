package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/hopebridge/hopebridge/internal/admin"
	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/app"
	"github.com/hopebridge/hopebridge/internal/auth"
	"github.com/hopebridge/hopebridge/internal/backend"
	"github.com/hopebridge/hopebridge/internal/donor"
	"github.com/hopebridge/hopebridge/internal/observability"
	"github.com/hopebridge/hopebridge/internal/platform/cache"
	"github.com/hopebridge/hopebridge/internal/platform/db"
	"github.com/hopebridge/hopebridge/internal/rbac"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
	"github.com/hopebridge/hopebridge/jobs"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.InTestMode() {
				slog.Default().Info("test mode detected, skipping runtime startup")
				return nil
			}
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig(envFile)
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var pool *pgxpool.Pool
	if cfg.PGDSN != "" {
		pool, err = db.New(ctx, cfg.PGDSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		applied, err := db.Migrate(ctx, pool)
		if err != nil {
			return err
		}
		logger.Info("audit store ready", slog.Any("migrations_applied", applied))
	} else {
		logger.Warn("PG_DSN not set, audit trail disabled")
	}

	metrics := observability.NewMetrics()
	backendCache := backend.NewCache(redisClient, cfg.CacheTTL).WithObserver(metrics)
	if err := backendCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}
	client := backend.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)

	sessionManager := shared.NewSessionManager(redisClient, "hopebridge_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	templates, err := view.NewEngine()
	if err != nil {
		return err
	}
	auditor := shared.NewAuditLogger(pool)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	authHandler := auth.NewHandler(logger, auth.NewService(client), templates, csrfManager)
	catalog := admin.NewCatalog(client, backendCache)
	listingDeps := listing.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrfManager,
		Auditor:   auditor,
		Metrics:   metrics,
	}
	donorHandler := donor.NewHandler(donor.Deps{
		Logger:    logger,
		Templates: templates,
		CSRF:      csrfManager,
		Auditor:   auditor,
		Metrics:   metrics,
	}, client, backendCache)

	redisOpt, err := jobs.RedisOpt(cfg.RedisAddr)
	if err != nil {
		return err
	}
	inspector := asynq.NewInspector(redisOpt)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		Catalog:        catalog,
		ListingDeps:    listingDeps,
		DonorHandler:   donorHandler,
		RBACMiddleware: rbacMiddleware,
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("api", cfg.APIBaseURL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}
