package shared

import (
	"context"
	"net/http"
)

// Roles granted by the backend.
const (
	RoleAdmin = "admin"
	RoleDonor = "donor"
)

// Principal is the signed-in caller as seen by page controllers.
type Principal interface {
	Token() string
	Role() string
	Clear()
}

// PrincipalResolver yields the Principal for a request.
type PrincipalResolver func(*http.Request) Principal

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// RequestPrincipal resolves the Principal from the request session. A
// request without session yields an anonymous principal.
func RequestPrincipal(r *http.Request) Principal {
	if sess := SessionFromContext(r.Context()); sess != nil {
		return sess
	}
	return anonymous{}
}

// SignedIn reports whether p carries a backend token.
func SignedIn(p Principal) bool {
	return p != nil && p.Token() != ""
}

// HasRole reports whether p holds one of roles. Admins hold every role.
func HasRole(p Principal, roles ...string) bool {
	if !SignedIn(p) {
		return false
	}
	role := p.Role()
	if role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type anonymous struct{}

func (anonymous) Token() string { return "" }
func (anonymous) Role() string  { return "" }
func (anonymous) Clear()        {}
