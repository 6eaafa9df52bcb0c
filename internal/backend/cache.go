package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/hopebridge/hopebridge/internal/platform/httpx"
)

const (
	cacheVersionKey = "backend:version"
	bumpChannel     = "backend.bump"
)

// Cache wraps Redis based caching of API reads with versioning controls.
// A nil Cache, or one without client, always calls the loader.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	group    singleflight.Group
	observer CacheObserver
}

// CacheObserver is told about every cached read.
type CacheObserver interface {
	ObserveCache(hit bool)
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// WithObserver reports hits and misses to o.
func (c *Cache) WithObserver(o CacheObserver) *Cache {
	if c != nil {
		c.observer = o
	}
	return c
}

func (c *Cache) observe(hit bool) {
	if c.observer != nil {
		c.observer.ObserveCache(hit)
	}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if c == nil || c.client == nil {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
// Concurrent misses on the same key share one loader call. The shared call
// outlives any single caller's context. A caller that joined another's call
// and got back a credential error loads again with its own loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		return roundTripJSON(value, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.observe(true)
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	c.observe(false)
	var ran bool
	ch := c.group.DoChan(key, func() (any, error) {
		ran = true
		return c.populate(context.WithoutCancel(ctx), key, loader)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil && !ran && credentialError(res.Err) {
			raw, err := c.populate(ctx, key, loader)
			if err != nil {
				return err
			}
			return json.Unmarshal(raw, dest)
		}
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

func (c *Cache) populate(ctx context.Context, key string, loader func(context.Context) (any, error)) ([]byte, error) {
	value, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, err
	}
	return raw, nil
}

// credentialError reports errors tied to the token that made the call.
func credentialError(err error) bool {
	return errors.Is(err, httpx.ErrUnauthorized) || errors.Is(err, httpx.ErrForbidden)
}

// Bump invalidates the cache by incrementing the global version and publishing an event.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation follows version bumps published by other instances
// until ctx is cancelled.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				current, err := c.client.Get(ctx, cacheVersionKey).Int64()
				if err == nil && current >= ver {
					continue
				}
				_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
			}
		}
	}()
	return nil
}

func roundTripJSON(value, dest any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}
