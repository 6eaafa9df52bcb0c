package dataview

// AllValue is the filter value that matches every row.
const AllValue = "all"

// Option is one selectable value of a Filter.
type Option struct {
	Value string
	Label string
}

// Filter is an exact-match constraint on one field, offered as an
// enumerated option set.
type Filter[T any] struct {
	Key     string
	Label   string
	Options []Option
	// Value extracts the compared field. Map rows fall back to row[Key].
	Value func(T) any
}

func (f Filter[T]) extract(row T) any {
	if f.Value != nil {
		return f.Value(row)
	}
	if m, ok := any(row).(map[string]any); ok {
		return m[f.Key]
	}
	return nil
}

// matches compares the stringified field with want, ignoring case.
func (f Filter[T]) matches(row T, want string) bool {
	return fold(Stringify(f.extract(row))) == fold(want)
}

// Inert reports whether a filter value matches everything.
func Inert(value string) bool {
	return value == "" || value == AllValue
}

// OptionLabel returns the label of the option carrying value.
func (f Filter[T]) OptionLabel(value string) string {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}
