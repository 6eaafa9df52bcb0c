package view

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        string
	Role        string
	Data        any
}

// NewEngine parses the embedded templates.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": DateTime,
		"cell":       Cell,
		"money":      Money,
		"pageHref":   PageHref,
		"hasPrefix":  strings.HasPrefix,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}

// NewTemplateData fills the per-request fields of TemplateData from the
// session: CSRF token, pending flash and the signed-in user.
func NewTemplateData(r *http.Request, csrf *shared.CSRFManager, title string, data any) TemplateData {
	td := TemplateData{Title: title, CurrentPath: r.URL.Path, Data: data}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return td
	}
	if csrf != nil {
		td.CSRFToken, _ = csrf.EnsureToken(r.Context(), sess)
	}
	td.Flash = sess.PopFlash()
	td.Role = sess.Role()
	if sess.Token() != "" {
		td.User = sess.DisplayName()
		if td.User == "" {
			td.User = sess.User()
		}
	}
	return td
}

// Badge renders a status value as a pill. Export and search see the bare text.
func Badge(status string) template.HTML {
	if status == "" {
		return ""
	}
	class := strings.ToLower(strings.ReplaceAll(status, " ", "-"))
	return template.HTML(`<span class="badge badge-` + template.HTMLEscapeString(class) + `">` + template.HTMLEscapeString(status) + `</span>`)
}

var printer = message.NewPrinter(language.English)

// Money formats an amount with two decimals and thousands separators.
func Money(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Date formats a calendar date, empty for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006")
}

// RenderError writes the error page with status.
func RenderError(w http.ResponseWriter, r *http.Request, e *Engine, csrf *shared.CSRFManager, status int, message string) {
	td := NewTemplateData(r, csrf, http.StatusText(status), message)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := e.Render(w, "pages/error.html", td); err != nil {
		_, _ = w.Write([]byte(template.HTMLEscapeString(message)))
	}
}

// DateTime formats a timestamp, empty for the zero time.
func DateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02 Jan 2006 15:04")
}

// Cell converts a rendered column value for output. Markup produced by
// column renderers as template.HTML is trusted; everything else is text.
func Cell(v any) any {
	switch val := v.(type) {
	case template.HTML:
		return val
	case time.Time:
		return DateTime(val)
	}
	return dataview.Stringify(v)
}

// PageHref links to page of the listing at base, preserving search and filters.
func PageHref(base string, st dataview.State, page int) string {
	query := st.WithPage(page).Query().Encode()
	if query == "" {
		return base
	}
	return base + "?" + query
}
