package dataview

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// csvStreamer writes fully quoted CSV records separated by "\n", without a
// trailing newline. Embedded double quotes are doubled.
type csvStreamer struct {
	buf          *bufio.Writer
	flushEvery   int
	pendingLines int
	written      int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	return &csvStreamer{buf: bufio.NewWriterSize(w, csvBufferSize), flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(fields []string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	var line strings.Builder
	if s.written > 0 {
		line.WriteByte('\n')
	}
	for i, field := range fields {
		if i > 0 {
			line.WriteByte(',')
		}
		line.WriteByte('"')
		line.WriteString(strings.ReplaceAll(field, `"`, `""`))
		line.WriteByte('"')
	}
	if _, err := s.buf.WriteString(line.String()); err != nil {
		return err
	}
	s.written++
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// Export writes the header and every row that survives search and filters,
// ignoring pagination.
func (t *Table[T]) Export(w io.Writer, rows []T, st State) error {
	if !t.Exportable() {
		return ErrExportDisabled
	}
	streamer := newCSVStreamer(w)
	if err := streamer.writeRow(t.Headers()); err != nil {
		return err
	}
	for _, row := range t.Filtered(rows, st) {
		if err := streamer.writeRow(t.exportRecord(row)); err != nil {
			return err
		}
	}
	return streamer.Flush()
}

func (t *Table[T]) exportRecord(row T) []string {
	record := make([]string, len(t.cfg.Columns))
	for i, col := range t.cfg.Columns {
		value := col.Display(row)
		if s, ok := value.(string); ok {
			record[i] = StripTags(s)
			continue
		}
		record[i] = Stringify(value)
	}
	return record
}

// FileName returns the download name "{title}-{YYYY-MM-DD}.csv".
func FileName(title string, now time.Time) string {
	if strings.TrimSpace(title) == "" {
		title = "data"
	}
	return fmt.Sprintf("%s-%s.csv", title, now.UTC().Format("2006-01-02"))
}
