package jobs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/hopebridge/hopebridge/internal/platform/cache"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskCacheWarm prefetches admin resource lists into the backend cache.
	TaskCacheWarm = "cache:warm"
)

// ErrUnknownTask is returned when triggering a task type nobody handles.
var ErrUnknownTask = errors.New("unknown task")

// CacheWarmPayload narrows a warm run to some resources. Empty means the
// worker's configured list.
type CacheWarmPayload struct {
	Resources []string `json:"resources,omitempty"`
}

// NewCacheWarmTask constructs an Asynq task.
func NewCacheWarmTask(payload CacheWarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheWarm, data), nil
}

// TaskNames lists the task types that can be triggered by name.
func TaskNames() []string {
	return []string{TaskCacheWarm}
}

// NewTask builds a task with its default payload from a task type name.
func NewTask(name string) (*asynq.Task, error) {
	switch name {
	case TaskCacheWarm:
		return NewCacheWarmTask(CacheWarmPayload{})
	}
	return nil, fmt.Errorf("jobs: %w: %q", ErrUnknownTask, name)
}

// RedisOpt converts a REDIS_ADDR value, host:port or redis:// URL, into
// asynq connection options.
func RedisOpt(addr string) (asynq.RedisClientOpt, error) {
	opts, err := cache.Options(addr)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Network:   opts.Network,
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}
