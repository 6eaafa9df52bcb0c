// Package dataview derives searchable, filterable, paginated views over an
// in-memory row slice and exports the filtered set as CSV.
package dataview

// Column describes how one field is extracted and displayed across all rows.
type Column[T any] struct {
	Header   string
	Accessor func(T) any
	// Render formats the raw value for display. It must not mutate the row.
	Render func(value any, row T) any
	// NoSearch excludes the column from free-text search.
	NoSearch bool
}

// Value returns the raw accessor value for row.
func (c Column[T]) Value(row T) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(row)
}

// Display returns the rendered value, or the raw value when no renderer is set.
func (c Column[T]) Display(row T) any {
	value := c.Value(row)
	if c.Render == nil {
		return value
	}
	return c.Render(value, row)
}

// Searchable reports whether the column participates in free-text search.
func (c Column[T]) Searchable() bool {
	return !c.NoSearch
}

// searchText is the text matched by free-text search. Rendered output is
// preferred, falling back to the raw value when the renderer produced
// something without a clean string form.
func (c Column[T]) searchText(row T) string {
	value := c.Value(row)
	if c.Render == nil {
		return Stringify(value)
	}
	if text, ok := textOf(c.Render(value, row)); ok {
		return text
	}
	return Stringify(value)
}

// Field builds an accessor reading a key from map rows.
func Field(name string) func(map[string]any) any {
	return func(row map[string]any) any {
		return row[name]
	}
}

// Text is a column over map rows addressed by field name.
func Text(header, field string) Column[map[string]any] {
	return Column[map[string]any]{Header: header, Accessor: Field(field)}
}
