package view

import (
	"github.com/hopebridge/hopebridge/internal/dataview"
)

// FilterView is one filter select as rendered.
type FilterView struct {
	Key      string
	Label    string
	Name     string
	Selected string
	Options  []dataview.Option
}

// TableView is the template model of a derived dataview.
type TableView struct {
	Title      string
	BasePath   string
	ExportHref string
	Searchable bool
	Search     string
	Filters    []FilterView
	Headers    []string
	HasActions bool
	Rows       []RowView
	Pagination dataview.Pagination
	State      dataview.State
	Total      int
	Filtered   int
	Empty      string
}

// RowView is one visible row.
type RowView struct {
	Key     string
	Link    string
	Cells   []any
	Actions []dataview.Action
}

// NewTableView adapts a derived result for the dataview partial. The export
// link carries the current search and filters but not the page.
func NewTableView[T any](table *dataview.Table[T], res dataview.Result[T], basePath string) TableView {
	tv := TableView{
		Title:      res.Title,
		BasePath:   basePath,
		Searchable: table.Searchable(),
		Search:     res.State.Search,
		Headers:    res.Headers,
		Pagination: res.Pagination,
		State:      res.State,
		Total:      res.Total,
		Filtered:   res.Filtered,
		Empty:      res.Empty,
		Rows:       make([]RowView, len(res.Rows)),
	}
	if table.Exportable() {
		tv.ExportHref = basePath + "/export.csv"
		if q := res.State.WithPage(1).Query().Encode(); q != "" {
			tv.ExportHref += "?" + q
		}
	}
	for _, f := range table.Filters() {
		tv.Filters = append(tv.Filters, FilterView{
			Key:      f.Key,
			Label:    f.Label,
			Name:     dataview.QueryFilterPrefix + f.Key,
			Selected: res.State.Filter(f.Key),
			Options:  f.Options,
		})
	}
	for i, row := range res.Rows {
		cells := make([]any, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = Cell(c)
		}
		tv.Rows[i] = RowView{Key: row.Key, Link: row.Link, Cells: cells, Actions: row.Actions}
		if len(row.Actions) > 0 {
			tv.HasActions = true
		}
	}
	return tv
}
