// Package rbac gates routes on the role the platform API granted at login.
package rbac

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hopebridge/hopebridge/internal/shared"
)

// LoginPath is where anonymous callers are sent.
const LoginPath = "/auth/login"

// Middleware wires role authorization helpers for HTTP handlers.
type Middleware struct {
	Resolve shared.PrincipalResolver
	Logger  *slog.Logger
}

// RequireRole ensures the caller is signed in with one of roles. Anonymous
// callers are redirected to the login page, others get 403.
func (m Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	normalized := normalizeRoles(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := m.principal(r)
			if !shared.SignedIn(p) {
				http.Redirect(w, r, LoginRedirect(r.URL.RequestURI()), http.StatusSeeOther)
				return
			}
			if len(normalized) == 0 || shared.HasRole(p, normalized...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac role denied", slog.String("path", r.URL.Path), slog.String("role", p.Role()))
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// LoginRedirect builds the login URL returning to next after sign-in.
func LoginRedirect(next string) string {
	if !SafeNext(next) {
		return LoginPath
	}
	return LoginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext reports whether next is a local path safe to redirect to.
func SafeNext(next string) bool {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return false
	}
	return !strings.HasPrefix(next, LoginPath)
}

func (m Middleware) principal(r *http.Request) shared.Principal {
	if m.Resolve != nil {
		return m.Resolve(r)
	}
	return shared.RequestPrincipal(r)
}

func normalizeRoles(roles []string) []string {
	unique := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		role = strings.TrimSpace(strings.ToLower(role))
		if role == "" {
			continue
		}
		if _, ok := unique[role]; ok {
			continue
		}
		unique[role] = struct{}{}
		normalized = append(normalized, role)
	}
	return normalized
}

// SignOut clears p after the API rejected its token and sends the caller to
// the login page, flagged as expired, returning to the current page.
func SignOut(w http.ResponseWriter, r *http.Request, p shared.Principal) {
	p.Clear()
	target := LoginRedirect(r.URL.RequestURI())
	sep := "?"
	if strings.Contains(target, "?") {
		sep = "&"
	}
	http.Redirect(w, r, target+sep+"expired=1", http.StatusSeeOther)
}
