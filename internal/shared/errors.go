package shared

import "errors"

var (
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
	// ErrInvalidCredentials is returned when the API rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleNotAllowed is returned for accounts whose role has no console.
	ErrRoleNotAllowed = errors.New("role not allowed")
)
