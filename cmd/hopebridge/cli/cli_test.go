package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hopebridge/hopebridge/internal/admin"
	"github.com/hopebridge/hopebridge/internal/backend"
	"github.com/hopebridge/hopebridge/jobs"
)

func newCatalog(t *testing.T) *admin.Catalog {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/partners" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer svc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"_id":"p1","name":"Acme","type":"corporate"},{"_id":"p2","name":"Water Aid","type":"ngo"}]`))
	}))
	t.Cleanup(srv.Close)
	return admin.NewCatalog(backend.NewClient(srv.URL, time.Second, nil), nil)
}

func TestParseFilters(t *testing.T) {
	st, err := ParseFilters("  water ", []string{"type=ngo", " status = active "})
	require.NoError(t, err)
	require.Equal(t, "water", st.Search)
	if diff := cmp.Diff(map[string]string{"type": "ngo", "status": "active"}, st.Filters); diff != "" {
		t.Fatalf("filters mismatch (-want +got):\n%s", diff)
	}

	_, err = ParseFilters("", []string{"novalue"})
	require.Error(t, err)
	_, err = ParseFilters("", []string{"=x"})
	require.Error(t, err)
}

func TestExportCommandWritesFile(t *testing.T) {
	catalog := newCatalog(t)
	dir := t.TempDir()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)

	code := ExportCommand(context.Background(), catalog, ExportOptions{
		Resource: "partners",
		Token:    "svc",
		Filters:  []string{"type=ngo"},
		Dir:      dir,
		Stdout:   stdout,
		Stderr:   stderr,
		Now:      func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) },
	})
	require.Equal(t, 0, code, stderr.String())

	path := filepath.Join(dir, "Partners-2025-01-02.csv")
	require.Equal(t, "exported 1 rows to "+path+"\n", stdout.String())
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"Water Aid"`)
	require.NotContains(t, string(raw), "Acme")
}

func TestExportCommandToStdout(t *testing.T) {
	catalog := newCatalog(t)
	stdout := new(bytes.Buffer)
	code := ExportCommand(context.Background(), catalog, ExportOptions{Resource: "partners", Token: "svc", Out: "-", Stdout: stdout, Stderr: new(bytes.Buffer)})
	require.Equal(t, 0, code)
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, 3)
}

func TestExportCommandFailures(t *testing.T) {
	catalog := newCatalog(t)
	stderr := new(bytes.Buffer)
	code := ExportCommand(context.Background(), catalog, ExportOptions{Resource: "sponsors", Stderr: stderr, Stdout: new(bytes.Buffer)})
	require.Equal(t, 2, code)
	require.Contains(t, stderr.String(), "campaigns")

	dir := t.TempDir()
	stderr.Reset()
	code = ExportCommand(context.Background(), catalog, ExportOptions{Resource: "partners", Token: "expired", Dir: dir, Stderr: stderr, Stdout: new(bytes.Buffer)})
	require.Equal(t, 1, code)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "failed export leaves no partial file")
}

func TestTriggerRejectsUnknownJob(t *testing.T) {
	var c *JobsCLI
	_, err := c.Trigger(context.Background(), "mail:send")
	require.ErrorIs(t, err, jobs.ErrUnknownTask)
}
