package listing

import (
	"time"

	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/view"
)

// TextColumn shows a string field.
func TextColumn[T any](header string, get func(T) string) dataview.Column[T] {
	return dataview.Column[T]{Header: header, Accessor: func(row T) any { return get(row) }}
}

// StatusColumn shows a status field as a badge. Search and export see the
// bare status text.
func StatusColumn[T any](header string, get func(T) string) dataview.Column[T] {
	return dataview.Column[T]{
		Header:   header,
		Accessor: func(row T) any { return get(row) },
		Render:   func(v any, _ T) any { return view.Badge(dataview.Stringify(v)) },
	}
}

// MoneyColumn shows an amount with thousands separators.
func MoneyColumn[T any](header string, get func(T) float64) dataview.Column[T] {
	return dataview.Column[T]{
		Header:   header,
		Accessor: func(row T) any { return get(row) },
		Render:   func(v any, _ T) any { return view.Money(v.(float64)) },
	}
}

// DateColumn shows a calendar date. It does not take part in search.
func DateColumn[T any](header string, get func(T) time.Time) dataview.Column[T] {
	return dataview.Column[T]{
		Header:   header,
		Accessor: func(row T) any { return get(row) },
		Render:   func(v any, _ T) any { return view.Date(v.(time.Time)) },
		NoSearch: true,
	}
}

// StatusFilter filters on an exact status value.
func StatusFilter[T any](get func(T) string, options ...dataview.Option) dataview.Filter[T] {
	return dataview.Filter[T]{Key: "status", Label: "Status", Options: options, Value: func(row T) any { return get(row) }}
}

// Options builds filter options whose label is the value.
func Options(values ...string) []dataview.Option {
	opts := make([]dataview.Option, len(values))
	for i, v := range values {
		opts[i] = dataview.Option{Value: v, Label: v}
	}
	return opts
}
