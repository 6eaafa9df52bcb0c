package backend

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Scope decides how cached list reads are shared between callers.
type Scope int

const (
	// ScopeRole shares a cached list between callers holding the same role.
	ScopeRole Scope = iota
	// ScopeUser caches per token, for endpoints returning the caller's own rows.
	ScopeUser
	// ScopeNone bypasses the cache.
	ScopeNone
)

// Collection is the typed DataSource for one REST resource.
type Collection[T any] struct {
	client *Client
	cache  *Cache
	path   string
	scope  Scope
}

// NewCollection binds a REST path to a row type.
func NewCollection[T any](client *Client, cache *Cache, path string, scope Scope) *Collection[T] {
	return &Collection[T]{client: client, cache: cache, path: "/" + strings.Trim(path, "/"), scope: scope}
}

// Path returns the REST path of the collection.
func (c *Collection[T]) Path() string {
	return c.path
}

// List fetches every row visible to the caller.
func (c *Collection[T]) List(ctx context.Context, token, role string) ([]T, error) {
	load := func(ctx context.Context) (any, error) {
		var rows []T
		if err := c.client.Get(ctx, token, c.path, nil, &rows); err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []T{}
		}
		return rows, nil
	}
	if c.scope == ScopeNone || c.cache == nil {
		rows, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return rows.([]T), nil
	}
	key, err := c.cache.BuildKey(ctx, "backend", "list", c.path, c.scopeToken(token, role))
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := c.cache.FetchJSON(ctx, key, &rows, load); err != nil {
		return nil, err
	}
	return rows, nil
}

// Get fetches one row by id.
func (c *Collection[T]) Get(ctx context.Context, token, id string) (T, error) {
	var row T
	err := c.client.Get(ctx, token, c.itemPath(id), nil, &row)
	return row, err
}

// Delete removes one row and invalidates cached lists.
func (c *Collection[T]) Delete(ctx context.Context, token, id string) error {
	if err := c.client.Delete(ctx, token, c.itemPath(id)); err != nil {
		return err
	}
	return c.cache.Bump(ctx)
}

// Invalidate drops cached reads after a mutation made elsewhere.
func (c *Collection[T]) Invalidate(ctx context.Context) error {
	return c.cache.Bump(ctx)
}

func (c *Collection[T]) itemPath(id string) string {
	return c.path + "/" + url.PathEscape(id)
}

func (c *Collection[T]) scopeToken(token, role string) string {
	if c.scope == ScopeUser {
		sum := sha256.Sum256([]byte(token))
		return "user-" + hex.EncodeToString(sum[:8])
	}
	if role == "" {
		role = "anonymous"
	}
	return "role-" + role
}
