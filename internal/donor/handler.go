// Package donor serves the donor dashboards: coupons, campaign tracking and
// event registration.
package donor

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hopebridge/hopebridge/internal/admin/coupons"
	"github.com/hopebridge/hopebridge/internal/admin/donations"
	"github.com/hopebridge/hopebridge/internal/backend"
	"github.com/hopebridge/hopebridge/internal/dataview"
	"github.com/hopebridge/hopebridge/internal/observability"
	"github.com/hopebridge/hopebridge/internal/platform/httpx"
	"github.com/hopebridge/hopebridge/internal/rbac"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
)

// API paths used by the dashboards.
const (
	MyCouponsPath   = "/coupons/my"
	RedeemPath      = "/coupons/redeem"
	MyDonationsPath = "/donations/my"
	EventsPath      = "/events"
)

// Deps are the collaborators of the donor Handler.
type Deps struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Principal shared.PrincipalResolver
	Auditor   shared.Auditor
	Metrics   *observability.Metrics
}

// Handler wires the donor dashboard endpoints.
type Handler struct {
	deps      Deps
	client    *backend.Client
	coupons   *backend.Collection[coupons.Coupon]
	donations *backend.Collection[donations.Donation]
	events    *backend.Collection[Event]
	validator *validator.Validate

	couponsTable   *dataview.Table[coupons.Coupon]
	donationsTable *dataview.Table[donations.Donation]
	eventsTable    *dataview.Table[Event]
}

// NewHandler constructs a Handler. The donor's own lists are cached per token.
func NewHandler(deps Deps, client *backend.Client, cache *backend.Cache) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Principal == nil {
		deps.Principal = shared.RequestPrincipal
	}
	return &Handler{
		deps:           deps,
		client:         client,
		coupons:        backend.NewCollection[coupons.Coupon](client, cache, MyCouponsPath, backend.ScopeUser),
		donations:      backend.NewCollection[donations.Donation](client, cache, MyDonationsPath, backend.ScopeUser),
		events:         backend.NewCollection[Event](client, cache, EventsPath, backend.ScopeRole),
		validator:      shared.NewValidator(),
		couponsTable:   couponsTable(),
		donationsTable: donationsTable(),
		eventsTable:    eventsTable(),
	}
}

// MountRoutes registers donor routes on r.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/coupons", h.showCoupons)
	r.Post("/coupons/redeem", h.redeemCoupon)
	r.Get("/campaigns", h.showCampaigns)
	r.Get("/events", h.showEvents)
	r.Get("/events/{id}/register", h.showRegister)
	r.Post("/events/{id}/register", h.register)
}

// CouponsPage is the model of pages/donor_coupons.html.
type CouponsPage struct {
	CSRFToken string
	Table     view.TableView
	Code      string
	Errors    map[string]string
}

// CampaignsPage is the model of pages/donor_campaigns.html.
type CampaignsPage struct {
	CSRFToken string
	Table     view.TableView
	Summary   Summary
}

// EventsPage is the model of pages/donor_events.html.
type EventsPage struct {
	CSRFToken string
	Table     view.TableView
}

// RegisterPage is the model of pages/donor_event_register.html.
type RegisterPage struct {
	Event  Event
	Form   registerForm
	Errors map[string]string
}

type redeemForm struct {
	Code string `form:"code" validate:"required,alphanum,min=4,max=32"`
}

type registerForm struct {
	Name  string `form:"name" validate:"required,max=100"`
	Email string `form:"email" validate:"required,email"`
	Phone string `form:"phone" validate:"required,e164"`
}

func (h *Handler) showCoupons(w http.ResponseWriter, r *http.Request) {
	h.renderCoupons(w, r, http.StatusOK, "", nil)
}

func (h *Handler) renderCoupons(w http.ResponseWriter, r *http.Request, status int, code string, errs map[string]string) {
	p := h.deps.Principal(r)
	rows, err := h.coupons.List(r.Context(), p.Token(), p.Role())
	if err != nil {
		h.fail(w, r, p, "coupons", err)
		return
	}
	res := h.couponsTable.Derive(rows, dataview.StateFromQuery(r.URL.Query()))
	td := view.NewTemplateData(r, h.deps.CSRF, "My coupons", nil)
	td.Data = CouponsPage{
		CSRFToken: td.CSRFToken,
		Table:     view.NewTableView(h.couponsTable, res, "/donor/coupons"),
		Code:      code,
		Errors:    errs,
	}
	h.render(w, status, "pages/donor_coupons.html", td)
}

func (h *Handler) redeemCoupon(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	p := h.deps.Principal(r)
	form := redeemForm{Code: strings.ToUpper(strings.TrimSpace(r.PostFormValue("code")))}
	if errs := shared.FieldErrors(h.validator.Struct(form)); len(errs) > 0 {
		h.renderCoupons(w, r, http.StatusBadRequest, form.Code, errs)
		return
	}
	var redeemed coupons.Coupon
	err := h.client.Post(r.Context(), p.Token(), RedeemPath, map[string]string{"code": form.Code}, &redeemed)
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) || errors.Is(err, httpx.ErrNotFound) || errors.Is(err, httpx.ErrDuplicate) {
			h.renderCoupons(w, r, http.StatusUnprocessableEntity, form.Code, map[string]string{"code": apiMessage(err, "This coupon cannot be redeemed.")})
			return
		}
		h.fail(w, r, p, "coupons", err)
		return
	}
	h.invalidate(r.Context(), h.coupons.Invalidate)
	h.audit(r, p, shared.AuditLog{Action: shared.AuditRedeem, Entity: "coupons", EntityID: redeemed.ID, Meta: map[string]any{"code": form.Code}})
	h.flash(r, "success", "Coupon "+form.Code+" redeemed.")
	http.Redirect(w, r, "/donor/coupons", http.StatusSeeOther)
}

func (h *Handler) showCampaigns(w http.ResponseWriter, r *http.Request) {
	p := h.deps.Principal(r)
	rows, err := h.donations.List(r.Context(), p.Token(), p.Role())
	if err != nil {
		h.fail(w, r, p, "donations", err)
		return
	}
	res := h.donationsTable.Derive(rows, dataview.StateFromQuery(r.URL.Query()))
	td := view.NewTemplateData(r, h.deps.CSRF, "My donations", nil)
	td.Data = CampaignsPage{
		CSRFToken: td.CSRFToken,
		Table:     view.NewTableView(h.donationsTable, res, "/donor/campaigns"),
		Summary:   Summarize(rows),
	}
	h.render(w, http.StatusOK, "pages/donor_campaigns.html", td)
}

func (h *Handler) showEvents(w http.ResponseWriter, r *http.Request) {
	p := h.deps.Principal(r)
	rows, err := h.events.List(r.Context(), p.Token(), p.Role())
	if err != nil {
		h.fail(w, r, p, "events", err)
		return
	}
	res := h.eventsTable.Derive(rows, dataview.StateFromQuery(r.URL.Query()))
	td := view.NewTemplateData(r, h.deps.CSRF, "Events", nil)
	td.Data = EventsPage{CSRFToken: td.CSRFToken, Table: view.NewTableView(h.eventsTable, res, "/donor/events")}
	h.render(w, http.StatusOK, "pages/donor_events.html", td)
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	h.renderRegister(w, r, http.StatusOK, registerForm{}, nil)
}

func (h *Handler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form registerForm, errs map[string]string) {
	p := h.deps.Principal(r)
	event, err := h.events.Get(r.Context(), p.Token(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, p, "events", err)
		return
	}
	td := view.NewTemplateData(r, h.deps.CSRF, "Register for "+event.Title, RegisterPage{Event: event, Form: form, Errors: errs})
	h.render(w, status, "pages/donor_event_register.html", td)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	p := h.deps.Principal(r)
	id := chi.URLParam(r, "id")
	form := registerForm{
		Name:  strings.TrimSpace(r.PostFormValue("name")),
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Phone: strings.ReplaceAll(strings.TrimSpace(r.PostFormValue("phone")), " ", ""),
	}
	if errs := shared.FieldErrors(h.validator.Struct(form)); len(errs) > 0 {
		h.renderRegister(w, r, http.StatusBadRequest, form, errs)
		return
	}
	body := map[string]string{"name": form.Name, "email": form.Email, "phone": form.Phone}
	if err := h.client.Post(r.Context(), p.Token(), EventsPath+"/"+url.PathEscape(id)+"/register", body, nil); err != nil {
		if errors.Is(err, httpx.ErrValidation) || errors.Is(err, httpx.ErrDuplicate) {
			h.renderRegister(w, r, http.StatusUnprocessableEntity, form, map[string]string{"general": apiMessage(err, "Registration was rejected.")})
			return
		}
		h.fail(w, r, p, "events", err)
		return
	}
	h.invalidate(r.Context(), h.events.Invalidate)
	h.flash(r, "success", "You are registered. See you there!")
	http.Redirect(w, r, "/donor/events", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, td view.TemplateData) {
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := h.deps.Templates.Render(w, name, td); err != nil {
		h.deps.Logger.Error("render donor page", slog.String("template", name), slog.Any("error", err))
		if status == http.StatusOK {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, p shared.Principal, resource string, err error) {
	h.deps.Metrics.ObserveBackendError(resource, httpx.Class(err))
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
		h.deps.Logger.Error("donor backend call", slog.String("resource", resource), slog.Any("error", err))
	}
	view.RenderError(w, r, h.deps.Templates, h.deps.CSRF, status, message)
}

func (h *Handler) invalidate(ctx context.Context, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		h.deps.Logger.Warn("invalidate cache", slog.Any("error", err))
	}
}

func (h *Handler) audit(r *http.Request, p shared.Principal, log shared.AuditLog) {
	if h.deps.Auditor == nil {
		return
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		log.Actor = sess.User()
	}
	if log.Actor == "" {
		log.Actor = p.Role()
	}
	if err := h.deps.Auditor.Record(r.Context(), log); err != nil {
		h.deps.Logger.Warn("audit record", slog.String("action", log.Action), slog.Any("error", err))
	}
}

func (h *Handler) flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

// apiMessage returns the API's explanation of err, or fallback.
func apiMessage(err error, fallback string) string {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
