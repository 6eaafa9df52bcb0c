// Package admin assembles the admin resources into one catalog used by the
// web console, the terminal browser, the export command and the cache warm job.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"

	"github.com/hopebridge/hopebridge/internal/admin/blogs"
	"github.com/hopebridge/hopebridge/internal/admin/campaigns"
	"github.com/hopebridge/hopebridge/internal/admin/celebrities"
	"github.com/hopebridge/hopebridge/internal/admin/coupons"
	"github.com/hopebridge/hopebridge/internal/admin/donations"
	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/admin/partners"
	"github.com/hopebridge/hopebridge/internal/admin/queries"
	"github.com/hopebridge/hopebridge/internal/admin/volunteers"
	"github.com/hopebridge/hopebridge/internal/backend"
	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/tui"
)

// ErrUnknownResource is returned for names missing from the catalog.
var ErrUnknownResource = errors.New("unknown resource")

// Entry is one admin resource with its row type erased.
type Entry struct {
	Name  string
	Title string

	mount    func(r chi.Router, deps listing.Deps)
	prefetch func(ctx context.Context, token, role string) (int, error)
	export   func(ctx context.Context, w io.Writer, token, role string, st dataview.State) (int, error)
	browse   func(ctx context.Context, token, role string, opts ...tui.Option) (tea.Model, error)
}

// Prefetch loads the resource list, populating the backend cache. It
// returns the number of rows.
func (e Entry) Prefetch(ctx context.Context, token, role string) (int, error) {
	return e.prefetch(ctx, token, role)
}

// Export writes the CSV of the rows matching st and returns how many rows
// survived search and filters.
func (e Entry) Export(ctx context.Context, w io.Writer, token, role string, st dataview.State) (int, error) {
	return e.export(ctx, w, token, role, st)
}

// Browser loads the rows and returns the terminal browser over them.
func (e Entry) Browser(ctx context.Context, token, role string, opts ...tui.Option) (tea.Model, error) {
	return e.browse(ctx, token, role, opts...)
}

// Catalog indexes the admin resources by name.
type Catalog struct {
	entries []Entry
	byName  map[string]Entry
}

// NewCatalog binds every admin resource to the API through client and cache.
func NewCatalog(client *backend.Client, cache *backend.Cache) *Catalog {
	c := &Catalog{byName: make(map[string]Entry)}
	register(c, client, cache, campaigns.Path, campaigns.Resource)
	register(c, client, cache, donations.Path, donations.Resource)
	register(c, client, cache, coupons.Path, coupons.Resource)
	register(c, client, cache, blogs.Path, blogs.Resource)
	register(c, client, cache, celebrities.Path, celebrities.Resource)
	register(c, client, cache, volunteers.Path, volunteers.Resource)
	register(c, client, cache, partners.Path, partners.Resource)
	register(c, client, cache, queries.Path, queries.Resource)
	return c
}

func register[T any](c *Catalog, client *backend.Client, cache *backend.Cache, path string, build func(listing.Source[T]) listing.Resource[T]) {
	c.add(entryOf(build(backend.NewCollection[T](client, cache, path, backend.ScopeRole))))
}

func entryOf[T any](res listing.Resource[T]) Entry {
	return Entry{
		Name:  res.Name,
		Title: res.Table.Title(),
		mount: func(r chi.Router, deps listing.Deps) {
			r.Route(res.Links.Base, listing.NewHandler(deps, res).MountRoutes)
		},
		prefetch: func(ctx context.Context, token, role string) (int, error) {
			rows, err := res.Source.List(ctx, token, role)
			return len(rows), err
		},
		export: func(ctx context.Context, w io.Writer, token, role string, st dataview.State) (int, error) {
			rows, err := res.Source.List(ctx, token, role)
			if err != nil {
				return 0, err
			}
			if err := res.Table.Export(w, rows, st); err != nil {
				return 0, err
			}
			return len(res.Table.Filtered(rows, st)), nil
		},
		browse: func(ctx context.Context, token, role string, opts ...tui.Option) (tea.Model, error) {
			rows, err := res.Source.List(ctx, token, role)
			if err != nil {
				return nil, err
			}
			return tui.New(res.Table, rows, opts...), nil
		},
	}
}

func (c *Catalog) add(e Entry) {
	c.entries = append(c.entries, e)
	c.byName[e.Name] = e
}

// Lookup finds an entry by name.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// Prefetch warms the cached list of the named resource.
func (c *Catalog) Prefetch(ctx context.Context, name, token, role string) (int, error) {
	e, ok := c.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("admin: %w: %q", ErrUnknownResource, name)
	}
	return e.Prefetch(ctx, token, role)
}

// Entries returns the entries in navigation order.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Names returns the sorted resource names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mount registers every listing under /admin behind gate.
func (c *Catalog) Mount(r chi.Router, deps listing.Deps, gate func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(gate)
		for _, e := range c.entries {
			e.mount(r, deps)
		}
	})
}
