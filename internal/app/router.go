package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hopebridge/hopebridge/internal/admin"
	"github.com/hopebridge/hopebridge/internal/admin/listing"
	"github.com/hopebridge/hopebridge/internal/auth"
	"github.com/hopebridge/hopebridge/internal/donor"
	"github.com/hopebridge/hopebridge/internal/observability"
	"github.com/hopebridge/hopebridge/internal/rbac"
	"github.com/hopebridge/hopebridge/internal/shared"
	"github.com/hopebridge/hopebridge/internal/view"
	"github.com/hopebridge/hopebridge/jobs"
	"github.com/hopebridge/hopebridge/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	AuthHandler    *auth.Handler
	Catalog        *admin.Catalog
	ListingDeps    listing.Deps
	DonorHandler   *donor.Handler
	RBACMiddleware rbac.Middleware
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// HomeLink is one tile on the home page.
type HomeLink struct {
	Href  string
	Label string
}

type homePage struct {
	Links []HomeLink
}

// NewRouter constructs the chi.Router with console defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if !shared.SignedIn(sess) {
			http.Redirect(w, r, rbac.LoginPath, http.StatusSeeOther)
			return
		}
		data := homePage{Links: homeLinks(params.Catalog, sess.Role())}
		td := view.NewTemplateData(r, params.CSRFManager, "Home", data)
		if err := params.Templates.Render(w, "pages/home.html", td); err != nil {
			params.Logger.Error("render home", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.Catalog != nil {
		params.Catalog.Mount(r, params.ListingDeps, params.RBACMiddleware.RequireRole(shared.RoleAdmin))
	}
	if params.DonorHandler != nil {
		r.Route("/donor", func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireRole(shared.RoleDonor))
			params.DonorHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

func homeLinks(catalog *admin.Catalog, role string) []HomeLink {
	var links []HomeLink
	if role == shared.RoleAdmin && catalog != nil {
		for _, e := range catalog.Entries() {
			links = append(links, HomeLink{Href: listing.AdminLinks(e.Name).Base, Label: e.Title})
		}
	}
	return append(links,
		HomeLink{Href: "/donor/campaigns", Label: "My donations"},
		HomeLink{Href: "/donor/coupons", Label: "My coupons"},
		HomeLink{Href: "/donor/events", Label: "Events"},
	)
}

// staticCacheHandler caches static assets in the browser for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
