package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/auth"
	"github.com/folio-labs/portfolio-api/internal/auth/domain"
)

// AuthService fronts the identity provider for the users endpoints. Provider
// failures leave it translated into the application taxonomy.
type AuthService struct {
	provider auth.Provider
	logger   *zap.Logger
}

func NewAuthService(provider auth.Provider, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{provider: provider, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.provider.SignIn(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, apperr.WithOp(apperr.Translate(err), "users.Login")
	}
	if session == nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	return session, nil
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.provider.SignUp(ctx, normalizeEmail(email), password)
	if err != nil {
		return nil, apperr.WithOp(apperr.Translate(err), "users.Register")
	}
	s.logger.Info("user registered", zap.String("uid", account.ID))
	return account, nil
}

// Logout revokes the refresh tokens of uid so its sessions cannot be renewed.
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	if err := s.provider.SignOut(ctx, uid); err != nil {
		return apperr.WithOp(apperr.Translate(err), "users.Logout")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
