package dataview

import "math"

const (
	// DefaultPageSize is the number of rows shown per page.
	DefaultPageSize = 10
	// WindowSize caps the page numbers offered at once.
	WindowSize = 5
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata, clamping page into range.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if page > totalPages {
		page = totalPages
	}
	if page <= 0 {
		page = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Bounds returns the half-open slice range of the current page.
func (p Pagination) Bounds() (start, end int) {
	start = (p.Page - 1) * p.PerPage
	if start > p.Total {
		start = p.Total
	}
	end = start + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return start, end
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Prev returns the previous page number, never below 1.
func (p Pagination) Prev() int {
	if p.Page > 1 {
		return p.Page - 1
	}
	return 1
}

// Next returns the next page number, never past the last page.
func (p Pagination) Next() int {
	if p.Page < p.TotalPages {
		return p.Page + 1
	}
	return p.Page
}

// Window returns at most WindowSize page numbers centred on the current
// page: the first pages near the start, the last pages near the end.
func (p Pagination) Window() []int {
	if p.TotalPages <= 0 {
		return nil
	}
	first := 1
	switch {
	case p.TotalPages <= WindowSize:
	case p.Page <= 3:
	case p.Page >= p.TotalPages-2:
		first = p.TotalPages - WindowSize + 1
	default:
		first = p.Page - 2
	}
	last := first + WindowSize - 1
	if last > p.TotalPages {
		last = p.TotalPages
	}
	pages := make([]int, 0, last-first+1)
	for n := first; n <= last; n++ {
		pages = append(pages, n)
	}
	return pages
}
