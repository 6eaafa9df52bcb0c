package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/hopebridge/hopebridge/internal/jobs"
	"github.com/hopebridge/hopebridge/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Prefetcher loads resource lists into the backend cache. admin.Catalog
// implements it.
type Prefetcher interface {
	Names() []string
	Prefetch(ctx context.Context, name, token, role string) (int, error)
}

// CacheWarmJob prefetches admin resource lists with the service token so the
// first console visit after a deploy or cache bump is served from Redis.
type CacheWarmJob struct {
	Catalog   Prefetcher
	Token     string
	Resources []string
	Timeout   time.Duration
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewCacheWarmJob wires dependencies for the warm handler. An empty
// resources list warms every catalog entry.
func NewCacheWarmJob(catalog Prefetcher, token string, resources []string, logger *slog.Logger, metrics *jobmetrics.Metrics) *CacheWarmJob {
	return &CacheWarmJob{
		Catalog:   catalog,
		Token:     token,
		Resources: resources,
		Timeout:   20 * time.Second,
		Logger:    logger,
		Metrics:   metrics,
	}
}

// Handle processes cache warm tasks.
func (j *CacheWarmJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Catalog == nil {
		return errors.New("cache warm: handler not configured")
	}
	var payload CacheWarmPayload
	if raw := t.Payload(); len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("cache warm: decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if j.Token == "" {
		return fmt.Errorf("cache warm: service token missing: %w", asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskCacheWarm)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	names := j.resources(payload)
	logger := j.logger()
	logger.Info("starting cache warm", slog.Int("resources", len(names)))
	start := time.Now()

	var errs []error
	warmed := 0
	for _, name := range names {
		rows, err := j.warm(ctx, name)
		j.metrics().AddWarmed(name, err == nil)
		if err != nil {
			logger.Error("warm resource", slog.String("resource", name), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		logger.Debug("warmed resource", slog.String("resource", name), slog.Int("rows", rows))
		warmed++
	}

	logger.Info("completed cache warm", slog.Int("warmed", warmed), slog.Int("failed", len(errs)), slog.Duration("duration", time.Since(start)))
	return errors.Join(errs...)
}

func (j *CacheWarmJob) warm(ctx context.Context, name string) (int, error) {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	return j.Catalog.Prefetch(ctx, name, j.Token, shared.RoleAdmin)
}

func (j *CacheWarmJob) resources(payload CacheWarmPayload) []string {
	if len(payload.Resources) > 0 {
		return payload.Resources
	}
	if len(j.Resources) > 0 {
		return j.Resources
	}
	return j.Catalog.Names()
}

func (j *CacheWarmJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCacheWarm))
	}
	return slog.Default().With(slog.String("job", TaskCacheWarm))
}

func (j *CacheWarmJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
