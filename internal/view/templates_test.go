package view

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/shared"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1,234,567.50", Money(1234567.5))
	assert.Equal(t, "0.00", Money(0))

	ts := time.Date(2025, 3, 7, 14, 5, 0, 0, time.UTC)
	assert.Equal(t, "07 Mar 2025", Date(ts))
	assert.Equal(t, "07 Mar 2025 14:05", DateTime(ts))
	assert.Empty(t, Date(time.Time{}))
	assert.Empty(t, DateTime(time.Time{}))
}

func TestBadge(t *testing.T) {
	assert.Equal(t, template.HTML(`<span class="badge badge-in-review">In Review</span>`), Badge("In Review"))
	assert.Equal(t, template.HTML(`<span class="badge badge-&lt;x&gt;">&lt;x&gt;</span>`), Badge("<x>"))
	assert.Empty(t, Badge(""))
}

func TestCell(t *testing.T) {
	assert.Equal(t, template.HTML("<b>x</b>"), Cell(template.HTML("<b>x</b>")))
	assert.Equal(t, "07 Mar 2025 00:00", Cell(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", Cell(nil))
	assert.Equal(t, "42", Cell(42))
}

func TestPageHref(t *testing.T) {
	st := dataview.NewState()
	st.SetSearch("water")
	st.SetFilter("status", "active")
	assert.Equal(t, "/admin/campaigns?f.status=active&page=3&q=water", PageHref("/admin/campaigns", st, 3))
	assert.Equal(t, "/admin/campaigns", PageHref("/admin/campaigns", dataview.NewState(), 1))
}

func TestNewTemplateDataFromSession(t *testing.T) {
	sm := shared.NewSessionManager(nil, "s", "secret", time.Hour, false)
	req := httptest.NewRequest(http.MethodGet, "/admin/blogs", nil)
	sess, err := sm.Load(req.Context(), req)
	require.NoError(t, err)
	sess.SignIn("u1", "tok", shared.RoleAdmin, "Ada")
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Saved"})
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	td := NewTemplateData(req, shared.NewCSRFManager("csrf"), "Blogs", "payload")
	assert.Equal(t, "Blogs", td.Title)
	assert.Equal(t, "/admin/blogs", td.CurrentPath)
	assert.Equal(t, "Ada", td.User)
	assert.Equal(t, shared.RoleAdmin, td.Role)
	assert.NotEmpty(t, td.CSRFToken)
	require.NotNil(t, td.Flash)
	assert.Equal(t, "Saved", td.Flash.Message)
	assert.Equal(t, "payload", td.Data)
}

func TestRenderError(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	RenderError(rr, httptest.NewRequest(http.MethodGet, "/x", nil), engine, nil, http.StatusBadGateway, "The platform API is unavailable.")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "The platform API is unavailable.")
}
