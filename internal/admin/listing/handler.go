// Package listing serves the admin list, detail, export and delete screens
// of one REST resource through a dataview table.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/observability"
	"github.com/hopebridge/hopebridge/internal/platform/httpx"
	"github.com/hopebridge/hopebridge/internal/rbac"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
)

// Source is the DataSource behind a listing. backend.Collection implements it.
type Source[T any] interface {
	List(ctx context.Context, token, role string) ([]T, error)
	Get(ctx context.Context, token, id string) (T, error)
	Delete(ctx context.Context, token, id string) error
}

// Field is one label/value pair on the detail page.
type Field struct {
	Label string
	Value any
}

// Resource binds a row type to its source and table.
type Resource[T any] struct {
	// Name is the URL segment and the audit entity, e.g. "campaigns".
	Name   string
	Source Source[T]
	Table  *dataview.Table[T]
	// Detail lists the fields of the detail page. Defaults to the table columns.
	Detail func(T) []Field
	// Deletable enables POST /{id}/delete.
	Deletable bool
	Links     Links
}

// Deps are the collaborators shared by every listing.
type Deps struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Principal shared.PrincipalResolver
	Auditor   shared.Auditor
	Metrics   *observability.Metrics
	Now       func() time.Time
}

// ListPage is the model of pages/admin_list.html.
type ListPage struct {
	CSRFToken string
	Table     view.TableView
}

// ShowPage is the model of pages/admin_show.html.
type ShowPage struct {
	Title    string
	Key      string
	BackHref string
	Fields   []Field
	Actions  []dataview.Action
}

// Handler serves one resource under its Links base.
type Handler[T any] struct {
	deps  Deps
	res   Resource[T]
	links Links
}

// NewHandler constructs a Handler mounted at res.Links.Base, e.g. "/admin/blogs".
func NewHandler[T any](deps Deps, res Resource[T]) *Handler[T] {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Principal == nil {
		deps.Principal = shared.RequestPrincipal
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Handler[T]{deps: deps, res: res, links: res.Links}
}

// Name returns the resource name.
func (h *Handler[T]) Name() string {
	return h.res.Name
}

// Base returns the mount path.
func (h *Handler[T]) Base() string {
	return h.links.Base
}

// MountRoutes registers the listing routes on r.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/export.csv", h.export)
	r.Get("/{id}", h.show)
	if h.res.Deletable {
		r.Post("/{id}/delete", h.delete)
	}
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	p := h.deps.Principal(r)
	rows, err := h.res.Source.List(r.Context(), p.Token(), p.Role())
	if err != nil {
		h.fail(w, r, p, err)
		return
	}
	st := dataview.StateFromQuery(r.URL.Query())
	res := h.res.Table.Derive(rows, st)
	td := view.NewTemplateData(r, h.deps.CSRF, h.res.Table.Title(), nil)
	td.Data = ListPage{CSRFToken: td.CSRFToken, Table: view.NewTableView(h.res.Table, res, h.links.Base)}
	if err := h.deps.Templates.Render(w, "pages/admin_list.html", td); err != nil {
		h.deps.Logger.Error("render admin list", slog.String("resource", h.res.Name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler[T]) export(w http.ResponseWriter, r *http.Request) {
	if !h.res.Table.Exportable() {
		http.NotFound(w, r)
		return
	}
	p := h.deps.Principal(r)
	rows, err := h.res.Source.List(r.Context(), p.Token(), p.Role())
	if err != nil {
		h.fail(w, r, p, err)
		return
	}
	st := dataview.StateFromQuery(r.URL.Query())
	filtered := h.res.Table.Filtered(rows, st)
	name := dataview.FileName(h.res.Table.Title(), h.deps.Now())

	httpx.Attachment(w, "text/csv; charset=utf-8", name)
	if err := h.res.Table.Export(w, rows, st); err != nil {
		h.deps.Logger.Error("export csv", slog.String("resource", h.res.Name), slog.Any("error", err))
		return
	}
	h.deps.Metrics.ObserveExport(h.res.Name, len(filtered))
	h.audit(r, p, shared.AuditLog{
		Action: shared.AuditExport,
		Entity: h.res.Name,
		Meta:   map[string]any{"rows": len(filtered), "query": st.Query().Encode(), "file": name},
	})
}

func (h *Handler[T]) show(w http.ResponseWriter, r *http.Request) {
	p := h.deps.Principal(r)
	id := chi.URLParam(r, "id")
	row, err := h.res.Source.Get(r.Context(), p.Token(), id)
	if err != nil {
		h.fail(w, r, p, err)
		return
	}
	page := ShowPage{
		Title:    h.res.Table.Title(),
		Key:      id,
		BackHref: h.links.Base,
		Fields:   h.fields(row),
	}
	if h.res.Deletable {
		page.Actions = append(page.Actions, h.links.DeleteAction(id))
	}
	td := view.NewTemplateData(r, h.deps.CSRF, h.res.Table.Title(), page)
	if err := h.deps.Templates.Render(w, "pages/admin_show.html", td); err != nil {
		h.deps.Logger.Error("render admin show", slog.String("resource", h.res.Name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler[T]) delete(w http.ResponseWriter, r *http.Request) {
	p := h.deps.Principal(r)
	id := chi.URLParam(r, "id")
	if err := h.res.Source.Delete(r.Context(), p.Token(), id); err != nil {
		h.fail(w, r, p, err)
		return
	}
	h.audit(r, p, shared.AuditLog{Action: shared.AuditDelete, Entity: h.res.Name, EntityID: id})
	h.flash(r, "success", fmt.Sprintf("%s entry deleted.", h.res.Table.Title()))
	http.Redirect(w, r, h.links.Base, http.StatusSeeOther)
}

func (h *Handler[T]) fields(row T) []Field {
	if h.res.Detail != nil {
		return h.res.Detail(row)
	}
	return ColumnFields(h.res.Table, row)
}

// ColumnFields lists the rendered table columns of row.
func ColumnFields[T any](table *dataview.Table[T], row T) []Field {
	cols := table.Columns()
	fields := make([]Field, len(cols))
	for i, col := range cols {
		fields[i] = Field{Label: col.Header, Value: col.Display(row)}
	}
	return fields
}

// fail maps API errors onto the page flow: an expired token signs the
// caller out, everything else renders the error page.
func (h *Handler[T]) fail(w http.ResponseWriter, r *http.Request, p shared.Principal, err error) {
	h.deps.Metrics.ObserveBackendError(h.res.Name, httpx.Class(err))
	if errors.Is(err, httpx.ErrUnauthorized) {
		rbac.SignOut(w, r, p)
		return
	}
	status := httpx.StatusOf(err)
	message := http.StatusText(status)
	switch {
	case errors.Is(err, httpx.ErrNotFound):
		message = "The requested entry does not exist."
	case errors.Is(err, httpx.ErrUnavailable):
		status = http.StatusBadGateway
		message = "The platform API is unavailable. Try again shortly."
	default:
		h.deps.Logger.Error("admin backend call", slog.String("resource", h.res.Name), slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	view.RenderError(w, r, h.deps.Templates, h.deps.CSRF, status, message)
}

func (h *Handler[T]) audit(r *http.Request, p shared.Principal, log shared.AuditLog) {
	if h.deps.Auditor == nil {
		return
	}
	log.Actor = actorOf(r, p)
	if err := h.deps.Auditor.Record(r.Context(), log); err != nil {
		h.deps.Logger.Warn("audit record", slog.String("action", log.Action), slog.String("entity", log.Entity), slog.Any("error", err))
	}
}

func (h *Handler[T]) flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

func actorOf(r *http.Request, p shared.Principal) string {
	if sess := shared.SessionFromContext(r.Context()); sess != nil && sess.User() != "" {
		return sess.User()
	}
	return p.Role()
}
