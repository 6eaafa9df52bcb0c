package listing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/observability"
	"github.com/hopebridge/hopebridge/internal/platform/httpx"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
)

type post struct {
	ID     string
	Title  string
	Status string
}

type fakeSource struct {
	rows    []post
	listErr error
	deleted []string
}

func (f *fakeSource) List(context.Context, string, string) ([]post, error) {
	return f.rows, f.listErr
}

func (f *fakeSource) Get(_ context.Context, _ string, id string) (post, error) {
	for _, row := range f.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return post{}, fmt.Errorf("backend: GET /posts/%s: %w", id, httpx.ErrNotFound)
}

func (f *fakeSource) Delete(_ context.Context, _ string, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type recordingAuditor struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

func (a *recordingAuditor) Record(_ context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

type principal struct {
	cleared bool
}

func (p *principal) Token() string { return "tok" }
func (p *principal) Role() string  { return shared.RoleAdmin }
func (p *principal) Clear()        { p.cleared = true }

type fixture struct {
	router  http.Handler
	source  *fakeSource
	auditor *recordingAuditor
	metrics *observability.Metrics
	caller  *principal
}

func newFixture(t *testing.T, rows []post) *fixture {
	t.Helper()
	templates, err := view.NewEngine()
	require.NoError(t, err)

	f := &fixture{
		source:  &fakeSource{rows: rows},
		auditor: &recordingAuditor{},
		metrics: observability.NewMetrics(),
		caller:  &principal{},
	}
	links := Links{Base: "/admin/posts"}
	table := dataview.MustNew(dataview.Config[post]{
		Title: "Posts",
		Columns: []dataview.Column[post]{
			{Header: "Title", Accessor: func(p post) any { return p.Title }},
			{Header: "Status", Accessor: func(p post) any { return p.Status }, Render: func(v any, _ post) any {
				return view.Badge(dataview.Stringify(v))
			}},
		},
		Filters: []dataview.Filter[post]{{
			Key:     "status",
			Label:   "Status",
			Options: []dataview.Option{{Value: "published", Label: "Published"}, {Value: "draft", Label: "Draft"}},
			Value:   func(p post) any { return p.Status },
		}},
		ID:      func(p post) string { return p.ID },
		RowLink: func(p post) string { return links.Show(p.ID) },
		Actions: func(p post) []dataview.Action { return []dataview.Action{links.DeleteAction(p.ID)} },
	})
	h := NewHandler(Deps{
		Templates: templates,
		Principal: func(*http.Request) shared.Principal { return f.caller },
		Auditor:   f.auditor,
		Metrics:   f.metrics,
		Now:       func() time.Time { return time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC) },
	}, Resource[post]{Name: "posts", Source: f.source, Table: table, Deletable: true, Links: links})

	r := chi.NewRouter()
	r.Route("/admin/posts", h.MountRoutes)
	f.router = r
	return f
}

func (f *fixture) do(method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func manyPosts(n int) []post {
	rows := make([]post, n)
	for i := range rows {
		status := "published"
		if i%2 == 1 {
			status = "draft"
		}
		rows[i] = post{ID: fmt.Sprintf("p%02d", i+1), Title: fmt.Sprintf("Post %02d", i+1), Status: status}
	}
	return rows
}

func TestListRendersFirstPage(t *testing.T) {
	f := newFixture(t, manyPosts(25))
	rr := f.do(http.MethodGet, "/admin/posts")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Post 01")
	assert.Contains(t, body, "Post 10")
	assert.NotContains(t, body, "Post 11")
	assert.Contains(t, body, `data-href="/admin/posts/p01"`)
	assert.Contains(t, body, `action="/admin/posts/p01/delete"`)
	assert.Contains(t, body, `href="/admin/posts/export.csv"`)
	assert.Contains(t, body, "25 of 25 rows")
}

func TestListAppliesStateAndClampsPage(t *testing.T) {
	f := newFixture(t, manyPosts(25))
	rr := f.do(http.MethodGet, "/admin/posts?f.status=draft&page=9")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Post 22")
	assert.Contains(t, body, "Post 24")
	assert.NotContains(t, body, "Post 02<")
	assert.Contains(t, body, `href="/admin/posts/export.csv?f.status=draft"`)
}

func TestListEmptyStates(t *testing.T) {
	f := newFixture(t, nil)
	body := f.do(http.MethodGet, "/admin/posts").Body.String()
	assert.Contains(t, body, dataview.EmptyNoData)

	f = newFixture(t, manyPosts(3))
	body = f.do(http.MethodGet, "/admin/posts?q=nothing-matches").Body.String()
	assert.Contains(t, body, dataview.EmptyNoResults)
}

func TestExportStreamsFilteredRows(t *testing.T) {
	f := newFixture(t, manyPosts(25))
	rr := f.do(http.MethodGet, "/admin/posts/export.csv?f.status=published&page=2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Posts-2024-03-09.csv")
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/csv"))

	lines := strings.Split(rr.Body.String(), "\n")
	require.Len(t, lines, 14, "header plus 13 published rows regardless of page")
	assert.Equal(t, `"Title","Status"`, lines[0])
	assert.Equal(t, `"Post 01","published"`, lines[1])

	require.Len(t, f.auditor.logs, 1)
	assert.Equal(t, shared.AuditExport, f.auditor.logs[0].Action)
	assert.Equal(t, 13, f.auditor.logs[0].Meta["rows"])
}

func TestShowAndNotFound(t *testing.T) {
	f := newFixture(t, manyPosts(2))
	rr := f.do(http.MethodGet, "/admin/posts/p02")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Post 02")
	assert.Contains(t, rr.Body.String(), `action="/admin/posts/p02/delete"`)

	rr = f.do(http.MethodGet, "/admin/posts/zz")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "does not exist")
}

func TestDeleteAuditsAndRedirects(t *testing.T) {
	f := newFixture(t, manyPosts(2))
	rr := f.do(http.MethodPost, "/admin/posts/p01/delete")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/posts", rr.Header().Get("Location"))
	assert.Equal(t, []string{"p01"}, f.source.deleted)
	require.Len(t, f.auditor.logs, 1)
	assert.Equal(t, shared.AuditDelete, f.auditor.logs[0].Action)
	assert.Equal(t, "p01", f.auditor.logs[0].EntityID)
}

func TestUnauthorizedSignsOut(t *testing.T) {
	f := newFixture(t, nil)
	f.source.listErr = fmt.Errorf("backend: %w", httpx.ErrUnauthorized)
	rr := f.do(http.MethodGet, "/admin/posts?q=x")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login?next=%2Fadmin%2Fposts%3Fq%3Dx&expired=1", rr.Header().Get("Location"))
	assert.True(t, f.caller.cleared)
}

func TestUnavailableRendersBadGateway(t *testing.T) {
	f := newFixture(t, nil)
	f.source.listErr = fmt.Errorf("backend: %w", httpx.ErrUnavailable)
	rr := f.do(http.MethodGet, "/admin/posts")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "unavailable")
}
