package domain

import "time"

const (
	RoleAuthenticated = "authenticated"
	RoleAdmin         = "admin"
)

// Identity is the verified caller of a request.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Account is a user as known to the identity provider. There is no local
// user table.
type Account struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
}

// Session is the result of a password sign-in.
type Session struct {
	AccessToken  string  `json:"accessToken"`
	RefreshToken string  `json:"refreshToken"`
	ExpiresIn    int64   `json:"expiresIn"`
	User         Account `json:"user"`
}
