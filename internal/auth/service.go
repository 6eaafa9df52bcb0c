package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/hopebridge/hopebridge/internal/platform/httpx"
	"github.com/hopebridge/hopebridge/internal/shared"
)

// LoginPath is the API endpoint exchanging credentials for a token.
const LoginPath = "/auth/login"

// Poster is the subset of backend.Client used by the Service.
type Poster interface {
	Post(ctx context.Context, token, path string, body, out any) error
}

// Service wraps the platform login.
type Service struct {
	api Poster
}

// NewService constructs a new Service.
func NewService(api Poster) *Service {
	return &Service{api: api}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Authenticate exchanges email/password for an API token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := s.api.Post(ctx, "", LoginPath, credentials{Email: email, Password: password}, &res)
	switch {
	case errors.Is(err, httpx.ErrUnauthorized), errors.Is(err, httpx.ErrValidation), errors.Is(err, httpx.ErrNotFound):
		return LoginResult{}, shared.ErrInvalidCredentials
	case err != nil:
		return LoginResult{}, fmt.Errorf("auth: login: %w", err)
	}
	if res.Token == "" {
		return LoginResult{}, fmt.Errorf("auth: login: %w: empty token", httpx.ErrUnavailable)
	}
	switch res.AccountRole() {
	case shared.RoleAdmin, shared.RoleDonor:
		return res, nil
	}
	return LoginResult{}, shared.ErrRoleNotAllowed
}
