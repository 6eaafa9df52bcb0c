package dataview

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Query parameter names used to carry State in URLs.
const (
	QuerySearch       = "q"
	QueryPage         = "page"
	QueryFilterPrefix = "f."
)

// State is the ephemeral view state of one table instance.
type State struct {
	Search  string
	Filters map[string]string
	Page    int
}

// NewState returns the initial state: no search, no filters, page 1.
func NewState() State {
	return State{Filters: map[string]string{}, Page: 1}
}

// SetSearch changes the search text and resets to the first page.
func (s *State) SetSearch(query string) {
	s.Search = query
	s.Page = 1
}

// SetFilter changes one filter value and resets to the first page.
func (s *State) SetFilter(key, value string) {
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	s.Filters[key] = value
	s.Page = 1
}

// SetPage moves to page, never below 1.
func (s *State) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	s.Page = page
}

// Searching reports whether a search is in effect.
func (s State) Searching() bool {
	return s.Search != ""
}

// Filtering reports whether any filter is in effect.
func (s State) Filtering() bool {
	for _, v := range s.Filters {
		if !Inert(v) {
			return true
		}
	}
	return false
}

// Active reports whether search or any filter narrows the row set.
func (s State) Active() bool {
	return s.Searching() || s.Filtering()
}

// Filter returns the value of the filter key, or AllValue.
func (s State) Filter(key string) string {
	if v := s.Filters[key]; v != "" {
		return v
	}
	return AllValue
}

// StateFromQuery decodes State from URL query values.
func StateFromQuery(values url.Values) State {
	st := NewState()
	st.Search = strings.TrimSpace(values.Get(QuerySearch))
	for key, vals := range values {
		if !strings.HasPrefix(key, QueryFilterPrefix) || len(vals) == 0 {
			continue
		}
		name := strings.TrimPrefix(key, QueryFilterPrefix)
		if name == "" {
			continue
		}
		st.Filters[name] = vals[0]
	}
	if page, err := strconv.Atoi(values.Get(QueryPage)); err == nil {
		st.SetPage(page)
	}
	return st
}

// Query encodes the state. Inert filters and page 1 are omitted.
func (s State) Query() url.Values {
	values := url.Values{}
	if s.Search != "" {
		values.Set(QuerySearch, s.Search)
	}
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := s.Filters[k]; !Inert(v) {
			values.Set(QueryFilterPrefix+k, v)
		}
	}
	if s.Page > 1 {
		values.Set(QueryPage, strconv.Itoa(s.Page))
	}
	return values
}

// WithPage returns a copy of the state on page.
func (s State) WithPage(page int) State {
	out := s.clone()
	out.SetPage(page)
	return out
}

func (s State) clone() State {
	out := State{Search: s.Search, Page: s.Page, Filters: make(map[string]string, len(s.Filters))}
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	return out
}
