package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hopebridge/hopebridge/internal/platform/httpx"
	"github.com/hopebridge/hopebridge/internal/rbac"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	templates   *view.Engine
	csrfManager *shared.CSRFManager
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:      logger,
		service:     service,
		templates:   templates,
		csrfManager: csrf,
		validator:   shared.NewValidator(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// Landing returns the start page of role.
func Landing(role string) string {
	switch role {
	case shared.RoleAdmin:
		return "/admin/campaigns"
	case shared.RoleDonor:
		return "/donor/campaigns"
	}
	return "/"
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=8"`
}

type loginPageData struct {
	Expired bool
	Next    string
	Form    loginForm
	Errors  map[string]string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	next := r.URL.Query().Get("next")
	if shared.SignedIn(sess) {
		http.Redirect(w, r, h.target(next, sess.Role()), http.StatusSeeOther)
		return
	}
	data := loginPageData{Expired: r.URL.Query().Get("expired") == "1", Next: next}
	h.render(w, r, http.StatusOK, data)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	data := loginPageData{Next: r.PostFormValue("next"), Form: form}
	if errs := shared.FieldErrors(h.validator.Struct(form)); len(errs) > 0 {
		data.Errors = errs
		h.render(w, r, http.StatusBadRequest, data)
		return
	}

	res, err := h.service.Authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			data.Errors = map[string]string{"general": "Invalid email or password."}
		case errors.Is(err, shared.ErrRoleNotAllowed):
			status = http.StatusForbidden
			data.Errors = map[string]string{"general": "This account has no access to the console."}
		default:
			h.logger.Error("login", slog.String("email", form.Email), slog.Any("error", err))
			status = http.StatusBadGateway
			if !errors.Is(err, httpx.ErrUnavailable) {
				status = http.StatusInternalServerError
			}
			data.Errors = map[string]string{"general": "Sign in is unavailable right now. Try again shortly."}
		}
		h.render(w, r, status, data)
		return
	}
	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	role := res.AccountRole()
	name := res.User.Name
	if name == "" {
		name = res.User.Email
	}
	sess.SignIn(res.User.ID, res.Token, role, name)
	sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Welcome back, " + name + "."})
	h.logger.Info("signed in", slog.String("user", res.User.ID), slog.String("role", role))
	http.Redirect(w, r, h.target(data.Next, role), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.Clear()
	}
	http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
}

func (h *Handler) target(next, role string) string {
	if rbac.SafeNext(next) {
		return next
	}
	return Landing(role)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	td := view.NewTemplateData(r, h.csrfManager, "Sign in", data)
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := h.templates.Render(w, "pages/login.html", td); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		if status == http.StatusOK {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}
