package ports

import (
	"context"

	"github.com/revogue/storefront-client/internal/core/domain"
)

// AuthService is the surface the storefront UI consumes. Failed operations
// return a *domain.AuthFailure whose Message is safe to show the user.
type AuthService interface {
	Login(ctx context.Context, identity, password string) (*domain.AuthUser, error)
	Register(ctx context.Context, input RegisterInput) (*domain.AuthUser, error)
	Logout(ctx context.Context) error

	CurrentUser() *domain.AuthUser
	IsAdmin() bool
	State() domain.AuthState
}
