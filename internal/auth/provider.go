package auth

import (
	"context"

	"github.com/folio-labs/portfolio-api/internal/auth/domain"
)

// Provider is the identity provider behind the auth gate and the users
// endpoints.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignUp(ctx context.Context, email, password string) (*domain.Account, error)
	SignOut(ctx context.Context, uid string) error
}
