package auth

import "strings"

// Account is the identity returned by the platform login.
type Account struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginResult is the body of a successful POST /auth/login.
type LoginResult struct {
	Token string  `json:"token"`
	Role  string  `json:"role"`
	User  Account `json:"user"`
}

// AccountRole prefers the role on the user record over the top-level one.
func (r LoginResult) AccountRole() string {
	role := r.User.Role
	if role == "" {
		role = r.Role
	}
	return strings.ToLower(strings.TrimSpace(role))
}
