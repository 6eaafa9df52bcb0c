package dataview

import (
	"errors"
	"fmt"
	"strings"
)

// Empty-state messages.
const (
	EmptyNoResults = "No results found"
	EmptyNoData    = "No data available"
)

var (
	// ErrInvalidConfig reports a malformed table descriptor.
	ErrInvalidConfig = errors.New("dataview: invalid config")
	// ErrExportDisabled is returned when exporting a non-exportable table.
	ErrExportDisabled = errors.New("dataview: export disabled")
)

// Action is a per-row control supplied by the caller.
type Action struct {
	Label string
	Href  string
	// Method is GET for links, POST for form buttons.
	Method  string
	Confirm string
	Danger  bool
}

// Options toggles optional table features. The zero value enables all.
type Options struct {
	DisableSearch bool
	DisableExport bool
	DisableFilter bool
}

// Config describes one table.
type Config[T any] struct {
	Title    string
	Columns  []Column[T]
	Filters  []Filter[T]
	Options  Options
	PageSize int
	// ID returns the row identifier used as the row key.
	ID func(T) string
	// RowLink is the target of a row click.
	RowLink func(T) string
	// Actions renders per-row controls.
	Actions func(T) []Action
}

// Table is an immutable, concurrency-safe view definition.
type Table[T any] struct {
	cfg Config[T]
}

// New validates cfg and returns the table.
func New[T any](cfg Config[T]) (*Table[T], error) {
	if len(cfg.Columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidConfig)
	}
	for i, col := range cfg.Columns {
		if strings.TrimSpace(col.Header) == "" {
			return nil, fmt.Errorf("%w: column %d has no header", ErrInvalidConfig, i)
		}
		if col.Accessor == nil {
			return nil, fmt.Errorf("%w: column %q has no accessor", ErrInvalidConfig, col.Header)
		}
	}
	seen := make(map[string]struct{}, len(cfg.Filters))
	for _, f := range cfg.Filters {
		if f.Key == "" {
			return nil, fmt.Errorf("%w: filter without key", ErrInvalidConfig)
		}
		if _, dup := seen[f.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate filter key %q", ErrInvalidConfig, f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Table[T]{cfg: cfg}, nil
}

// MustNew is New for package-level table definitions.
func MustNew[T any](cfg Config[T]) *Table[T] {
	t, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

// Title returns the table title.
func (t *Table[T]) Title() string { return t.cfg.Title }

// Columns returns the column descriptors.
func (t *Table[T]) Columns() []Column[T] { return t.cfg.Columns }

// Filters returns the filter descriptors, or none when filtering is disabled.
func (t *Table[T]) Filters() []Filter[T] {
	if t.cfg.Options.DisableFilter {
		return nil
	}
	return t.cfg.Filters
}

// Searchable reports whether the search box is offered.
func (t *Table[T]) Searchable() bool { return !t.cfg.Options.DisableSearch }

// Exportable reports whether CSV export is offered.
func (t *Table[T]) Exportable() bool { return !t.cfg.Options.DisableExport }

// Headers returns the column headers in order.
func (t *Table[T]) Headers() []string {
	headers := make([]string, len(t.cfg.Columns))
	for i, col := range t.cfg.Columns {
		headers[i] = col.Header
	}
	return headers
}

// Applied returns st reduced to what this table honours: the search only when
// searching is offered and filters only for declared, enabled keys.
func (t *Table[T]) Applied(st State) State {
	out := NewState()
	out.Page = st.Page
	if t.Searchable() {
		out.Search = st.Search
	}
	for _, f := range t.Filters() {
		if v, ok := st.Filters[f.Key]; ok {
			out.Filters[f.Key] = v
		}
	}
	return out
}

// Filtered applies search then filters. rows is never modified.
func (t *Table[T]) Filtered(rows []T, st State) []T {
	st = t.Applied(st)
	query := fold(st.Search)
	type activeFilter struct {
		filter Filter[T]
		value  string
	}
	var active []activeFilter
	for _, f := range t.Filters() {
		if v := st.Filters[f.Key]; !Inert(v) {
			active = append(active, activeFilter{filter: f, value: v})
		}
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if query != "" && !t.matchesSearch(row, query) {
			continue
		}
		keep := true
		for _, af := range active {
			if !af.filter.matches(row, af.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) matchesSearch(row T, query string) bool {
	for _, col := range t.cfg.Columns {
		if !col.Searchable() {
			continue
		}
		if strings.Contains(fold(col.searchText(row)), query) {
			return true
		}
	}
	return false
}

// Row is one visible row with its caller-derived decorations.
type Row[T any] struct {
	Key     string
	Link    string
	Cells   []any
	Actions []Action
	Data    T
}

// Result is the derived view for one state.
type Result[T any] struct {
	Title      string
	Headers    []string
	Rows       []Row[T]
	Total      int
	Filtered   int
	Pagination Pagination
	State      State
	// Empty is set when no row survived search and filters.
	Empty string
}

// Derive computes the visible page: search, then filters, then pagination.
func (t *Table[T]) Derive(rows []T, st State) Result[T] {
	st = t.Applied(st)
	filtered := t.Filtered(rows, st)
	page := NewPagination(st.Page, t.cfg.PageSize, len(filtered))
	st.Page = page.Page
	start, end := page.Bounds()

	res := Result[T]{
		Title:      t.cfg.Title,
		Headers:    t.Headers(),
		Total:      len(rows),
		Filtered:   len(filtered),
		Pagination: page,
		State:      st,
		Rows:       make([]Row[T], 0, end-start),
	}
	for i, row := range filtered[start:end] {
		res.Rows = append(res.Rows, t.decorate(row, start+i))
	}
	if len(filtered) == 0 {
		res.Empty = EmptyNoData
		if st.Active() {
			res.Empty = EmptyNoResults
		}
	}
	return res
}

func (t *Table[T]) decorate(row T, index int) Row[T] {
	out := Row[T]{Data: row, Cells: make([]any, len(t.cfg.Columns))}
	if t.cfg.ID != nil {
		out.Key = t.cfg.ID(row)
	} else {
		out.Key = fmt.Sprintf("row-%d", index)
	}
	if t.cfg.RowLink != nil {
		out.Link = t.cfg.RowLink(row)
	}
	if t.cfg.Actions != nil {
		out.Actions = t.cfg.Actions(row)
	}
	for i, col := range t.cfg.Columns {
		out.Cells[i] = col.Display(row)
	}
	return out
}
