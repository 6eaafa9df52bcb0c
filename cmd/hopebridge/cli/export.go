// Package cli holds the testable bodies of the hopebridge subcommands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hopebridge/hopebridge/internal/admin"
	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/shared"
)

// ExportOptions configure one CSV export from the terminal.
type ExportOptions struct {
	Resource string
	Token    string
	Search   string
	// Filters are key=value pairs, e.g. status=active.
	Filters []string
	// Out is the target file. Empty writes FileName(title, today) into Dir,
	// "-" writes to Stdout.
	Out    string
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
	Now    func() time.Time
}

// ParseFilters turns key=value pairs into a State.
func ParseFilters(search string, pairs []string) (dataview.State, error) {
	st := dataview.NewState()
	st.SetSearch(strings.TrimSpace(search))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return dataview.State{}, fmt.Errorf("filter %q: want key=value", pair)
		}
		st.SetFilter(key, strings.TrimSpace(value))
	}
	return st, nil
}

// ExportCommand writes the CSV of one resource and returns the exit code.
func ExportCommand(ctx context.Context, catalog *admin.Catalog, opts ExportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	entry, ok := catalog.Lookup(opts.Resource)
	if !ok {
		fmt.Fprintf(opts.Stderr, "unknown resource %q (have: %s)\n", opts.Resource, strings.Join(catalog.Names(), ", "))
		return 2
	}
	st, err := ParseFilters(opts.Search, opts.Filters)
	if err != nil {
		fmt.Fprintln(opts.Stderr, err)
		return 2
	}

	if opts.Out == "-" {
		if _, err := entry.Export(ctx, opts.Stdout, opts.Token, shared.RoleAdmin, st); err != nil {
			fmt.Fprintf(opts.Stderr, "export %s: %v\n", opts.Resource, err)
			return 1
		}
		return 0
	}

	path := opts.Out
	if path == "" {
		path = filepath.Join(opts.Dir, dataview.FileName(entry.Title, opts.Now()))
	}
	n, err := exportFile(ctx, entry, path, opts.Token, st)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "export %s: %v\n", opts.Resource, err)
		return 1
	}
	fmt.Fprintf(opts.Stdout, "exported %d rows to %s\n", n, path)
	return 0
}

func exportFile(ctx context.Context, entry admin.Entry, path, token string, st dataview.State) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return entry.Export(ctx, f, token, shared.RoleAdmin, st)
}
