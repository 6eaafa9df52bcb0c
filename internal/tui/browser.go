// Package tui browses a dataview table in the terminal.
package tui

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hopebridge/hopebridge/internal/dataview"
)

const maxColumnWidth = 32

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("37"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	activeStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

const helpText = "/ search · f filter value · tab next filter · ←/p → /n page · e export · q quit"

// Option customises a Browser.
type Option func(*options)

type options struct {
	exportDir string
	now       func() time.Time
}

// WithExportDir sets where exports are written. Defaults to the working directory.
func WithExportDir(dir string) Option {
	return func(o *options) { o.exportDir = dir }
}

// WithClock overrides the clock used for export file names.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Browser is the Bubble Tea model over one table and its rows.
type Browser[T any] struct {
	table     *dataview.Table[T]
	rows      []T
	state     dataview.State
	result    dataview.Result[T]
	search    textinput.Model
	grid      table.Model
	searching bool
	filterIdx int
	status    string
	failed    bool
	opts      options
}

// New builds a browser showing page 1 of rows.
func New[T any](t *dataview.Table[T], rows []T, opts ...Option) *Browser[T] {
	o := options{exportDir: ".", now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	search := textinput.New()
	search.Prompt = "search: "
	search.Placeholder = "type to filter rows"
	search.CharLimit = 128

	b := &Browser[T]{
		table:  t,
		rows:   rows,
		state:  dataview.NewState(),
		search: search,
		opts:   o,
	}
	b.grid = table.New(table.WithColumns(b.columns(nil)), table.WithFocused(true), table.WithHeight(dataview.DefaultPageSize+1))
	b.refresh()
	return b
}

// State returns the current view state.
func (b *Browser[T]) State() dataview.State {
	return b.state
}

// Result returns the current derived page.
func (b *Browser[T]) Result() dataview.Result[T] {
	return b.result
}

// Init implements tea.Model.
func (b *Browser[T]) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b *Browser[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		b.grid, cmd = b.grid.Update(msg)
		return b, cmd
	}
	if b.searching {
		return b, b.updateSearch(key)
	}
	switch key.String() {
	case "ctrl+c", "q":
		return b, tea.Quit
	case "/":
		b.searching = true
		b.status = ""
		return b, b.search.Focus()
	case "f":
		b.cycleFilter()
	case "tab":
		if filters := b.table.Filters(); len(filters) > 0 {
			b.filterIdx = (b.filterIdx + 1) % len(filters)
		}
	case "n", "right":
		b.state.SetPage(b.result.Pagination.Next())
		b.refresh()
	case "p", "left":
		b.state.SetPage(b.result.Pagination.Prev())
		b.refresh()
	case "e":
		b.export()
	default:
		var cmd tea.Cmd
		b.grid, cmd = b.grid.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b *Browser[T]) updateSearch(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "enter":
		b.searching = false
		b.search.Blur()
		return nil
	case "esc":
		b.searching = false
		b.search.Blur()
		b.search.SetValue("")
		b.state.SetSearch("")
		b.refresh()
		return nil
	}
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(key)
	if strings.TrimSpace(b.search.Value()) != b.state.Search {
		b.state.SetSearch(strings.TrimSpace(b.search.Value()))
		b.refresh()
	}
	return cmd
}

// cycleFilter advances the selected filter through all and its options.
func (b *Browser[T]) cycleFilter() {
	filters := b.table.Filters()
	if len(filters) == 0 {
		return
	}
	f := filters[b.filterIdx%len(filters)]
	values := make([]string, 0, len(f.Options)+1)
	values = append(values, dataview.AllValue)
	for _, opt := range f.Options {
		values = append(values, opt.Value)
	}
	current := b.state.Filter(f.Key)
	next := values[0]
	for i, v := range values {
		if v == current {
			next = values[(i+1)%len(values)]
			break
		}
	}
	b.state.SetFilter(f.Key, next)
	b.refresh()
}

func (b *Browser[T]) export() {
	if !b.table.Exportable() {
		b.setError("export disabled for " + b.table.Title())
		return
	}
	var buf bytes.Buffer
	if err := b.table.Export(&buf, b.rows, b.state); err != nil {
		b.setError(err.Error())
		return
	}
	path := filepath.Join(b.opts.exportDir, dataview.FileName(b.table.Title(), b.opts.now()))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		b.setError(err.Error())
		return
	}
	b.failed = false
	b.status = fmt.Sprintf("exported %d rows to %s", b.result.Filtered, path)
}

func (b *Browser[T]) setError(msg string) {
	b.failed = true
	b.status = msg
}

func (b *Browser[T]) refresh() {
	b.result = b.table.Derive(b.rows, b.state)
	b.state = b.result.State
	cells := make([]table.Row, len(b.result.Rows))
	for i, row := range b.result.Rows {
		r := make(table.Row, len(row.Cells))
		for j, c := range row.Cells {
			r[j] = truncate(dataview.Stringify(c))
		}
		cells[i] = r
	}
	b.grid.SetColumns(b.columns(cells))
	b.grid.SetRows(cells)
	b.grid.GotoTop()
}

func (b *Browser[T]) columns(rows []table.Row) []table.Column {
	headers := b.table.Headers()
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		width := lipgloss.Width(h)
		for _, r := range rows {
			if w := lipgloss.Width(r[i]); w > width {
				width = w
			}
		}
		cols[i] = table.Column{Title: h, Width: width}
	}
	return cols
}

// View implements tea.Model.
func (b *Browser[T]) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(b.table.Title()))
	sb.WriteString("\n")
	if b.table.Searchable() {
		if b.searching || b.state.Search != "" {
			sb.WriteString(b.search.View())
		} else {
			sb.WriteString(mutedStyle.Render("search: (press /)"))
		}
		sb.WriteString("\n")
	}
	if filters := b.table.Filters(); len(filters) > 0 {
		parts := make([]string, len(filters))
		for i, f := range filters {
			label := fmt.Sprintf("%s: %s", f.Label, f.OptionLabel(b.state.Filter(f.Key)))
			if i == b.filterIdx%len(filters) {
				label = activeStyle.Render(label)
			}
			parts[i] = label
		}
		sb.WriteString(strings.Join(parts, "   "))
		sb.WriteString("\n")
	}
	sb.WriteString(b.grid.View())
	sb.WriteString("\n")
	if b.result.Empty != "" {
		sb.WriteString(mutedStyle.Render(b.result.Empty))
		sb.WriteString("\n")
	}
	p := b.result.Pagination
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("page %d/%d · %d of %d rows · %s", p.Page, max(p.TotalPages, 1), b.result.Filtered, b.result.Total, window(p))))
	sb.WriteString("\n")
	if b.status != "" {
		style := statusStyle
		if b.failed {
			style = errorStyle
		}
		sb.WriteString(style.Render(b.status))
		sb.WriteString("\n")
	}
	sb.WriteString(mutedStyle.Render(helpText))
	return sb.String()
}

func window(p dataview.Pagination) string {
	pages := p.Window()
	parts := make([]string, len(pages))
	for i, n := range pages {
		if n == p.Page {
			parts[i] = fmt.Sprintf("[%d]", n)
			continue
		}
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " ")
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) <= maxColumnWidth {
		return s
	}
	runes := []rune(s)
	if len(runes) > maxColumnWidth-1 {
		runes = runes[:maxColumnWidth-1]
	}
	return string(runes) + "…"
}
