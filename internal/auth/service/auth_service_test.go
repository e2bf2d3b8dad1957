package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/auth/domain"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	id, _ := args.Get(0).(*domain.Identity)
	return id, args.Error(1)
}

func (m *mockProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *mockProvider) SignUp(ctx context.Context, email, password string) (*domain.Account, error) {
	args := m.Called(ctx, email, password)
	a, _ := args.Get(0).(*domain.Account)
	return a, args.Error(1)
}

func (m *mockProvider) SignOut(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func TestLogin(t *testing.T) {
	p := new(mockProvider)
	svc := NewAuthService(p, nil)
	ctx := context.Background()

	p.On("SignIn", ctx, "ada@example.com", "Str0ng!pw").
		Return(&domain.Session{AccessToken: "tok", User: domain.Account{ID: "u1"}}, nil).Once()

	s, err := svc.Login(ctx, "  Ada@Example.com ", "Str0ng!pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.AccessToken)
	p.AssertExpectations(t)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	p := new(mockProvider)
	svc := NewAuthService(p, nil)

	p.On("SignIn", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("googleapi: Error 400: INVALID_LOGIN_CREDENTIALS, invalid")).Once()

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.EUnauthorized, ae.Code)
	assert.Equal(t, "invalid credentials", ae.Msg)
	assert.Equal(t, "users.Login", ae.Op)
}

func TestRegister_AlreadyExists(t *testing.T) {
	p := new(mockProvider)
	svc := NewAuthService(p, nil)

	p.On("SignUp", mock.Anything, "ada@example.com", "Str0ng!pw").
		Return(nil, apperr.Conflict("the user is already registered")).Once()

	_, err := svc.Register(context.Background(), "ada@example.com", "Str0ng!pw")
	assert.Equal(t, apperr.EConflict, apperr.Code(err))
}

func TestRegister(t *testing.T) {
	p := new(mockProvider)
	svc := NewAuthService(p, nil)

	p.On("SignUp", mock.Anything, "ada@example.com", "Str0ng!pw").
		Return(&domain.Account{ID: "u2", Email: "ada@example.com"}, nil).Once()

	a, err := svc.Register(context.Background(), "ada@example.com", "Str0ng!pw")
	require.NoError(t, err)
	assert.Equal(t, "u2", a.ID)
}

func TestLogout(t *testing.T) {
	p := new(mockProvider)
	svc := NewAuthService(p, nil)

	p.On("SignOut", mock.Anything, "u1").Return(nil).Once()
	require.NoError(t, svc.Logout(context.Background(), "u1"))

	p.On("SignOut", mock.Anything, "u2").Return(errors.New("boom")).Once()
	assert.Equal(t, apperr.EInternal, apperr.Code(svc.Logout(context.Background(), "u2")))
}
