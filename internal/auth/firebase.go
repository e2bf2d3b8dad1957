package auth

import (
	"context"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/folio-labs/portfolio-api/config"
	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/auth/domain"
)

// InitializeFirebase initializes the Firebase Admin SDK app shared by the
// auth provider and the storage bucket.
func InitializeFirebase(ctx context.Context, cfg *config.FirebaseConfig) (*firebase.App, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	var fbcfg *firebase.Config
	if cfg.StorageBucket != "" {
		fbcfg = &firebase.Config{StorageBucket: cfg.StorageBucket}
	}

	app, err := firebase.NewApp(ctx, fbcfg, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	return app, nil
}

// FirebaseProvider verifies ID tokens and manages accounts with the Admin
// SDK. Password sign-in goes through the Identity Toolkit REST API, which the
// Admin SDK does not cover.
type FirebaseProvider struct {
	client          *fbauth.Client
	identity        *identitytoolkit.Service
	requireVerified bool
}

func NewFirebaseProvider(ctx context.Context, app *firebase.App, cfg *config.FirebaseConfig) (*FirebaseProvider, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	p := &FirebaseProvider{client: client, requireVerified: cfg.RequireVerifiedEmail}
	if cfg.APIKey != "" {
		p.identity, err = identitytoolkit.NewService(ctx, option.WithAPIKey(cfg.APIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
		}
	}
	return p, nil
}

// VerifyToken accepts only unrevoked tokens so a logout takes effect before
// the token expires.
func (p *FirebaseProvider) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	tok, err := p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	if err != nil {
		return nil, err
	}

	id := &domain.Identity{ID: tok.UID, Role: domain.RoleAuthenticated}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	if role, ok := tok.Claims["role"].(string); ok && role != "" {
		id.Role = role
	}
	if p.requireVerified {
		if verified, _ := tok.Claims["email_verified"].(bool); !verified {
			return nil, errUnconfirmed()
		}
	}
	return id, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if p.identity == nil {
		return nil, apperr.Internal("password sign-in is not configured", nil)
	}

	resp, err := p.identity.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	user, err := p.client.GetUser(ctx, resp.LocalId)
	if err != nil {
		return nil, err
	}
	if p.requireVerified && !user.EmailVerified {
		return nil, errUnconfirmed()
	}

	return &domain.Session{
		AccessToken:  resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         account(user),
	}, nil
}

func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (*domain.Account, error) {
	params := (&fbauth.UserToCreate{}).Email(email).Password(password)

	user, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, apperr.Conflict("the user is already registered")
		}
		return nil, err
	}
	a := account(user)
	return &a, nil
}

// SignOut revokes every refresh token of uid.
func (p *FirebaseProvider) SignOut(ctx context.Context, uid string) error {
	return p.client.RevokeRefreshTokens(ctx, uid)
}

func errUnconfirmed() error {
	return apperr.Unauthorized("please confirm your email before signing in")
}

func account(u *fbauth.UserRecord) domain.Account {
	a := domain.Account{ID: u.UID, Email: u.Email, EmailVerified: u.EmailVerified}
	if u.UserMetadata != nil && u.UserMetadata.CreationTimestamp > 0 {
		a.CreatedAt = time.UnixMilli(u.UserMetadata.CreationTimestamp).UTC()
	}
	return a
}
