package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	httpmw "github.com/folio-labs/portfolio-api/internal/api/http/middleware"
	"github.com/folio-labs/portfolio-api/internal/auth"
	"github.com/folio-labs/portfolio-api/internal/auth/domain"
)

type fakeProvider struct {
	auth.Provider
	identities map[string]*domain.Identity
	calls      int
}

func (f *fakeProvider) VerifyToken(_ context.Context, token string) (*domain.Identity, error) {
	f.calls++
	if id, ok := f.identities[token]; ok {
		return id, nil
	}
	return nil, errors.New("ID token has expired")
}

func newProvider() *fakeProvider {
	return &fakeProvider{identities: map[string]*domain.Identity{
		"user-token":  {ID: "u1", Email: "user@example.com", Role: domain.RoleAuthenticated},
		"admin-token": {ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}
}

func newRouter(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(httpmw.ErrorHandler("test", zaptest.NewLogger(t)))
	handlers = append(handlers, func(c *gin.Context) {
		id := auth.IdentityFrom(c)
		if id == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, id.ID)
	})
	r.GET("/", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireUser(t *testing.T) {
	p := newProvider()
	r := newRouter(t, RequireUser(p, zaptest.NewLogger(t)))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization token"},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, "missing authorization token"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "missing authorization token"},
		{"expired", "Bearer stale", http.StatusUnauthorized, "invalid or expired token"},
		{"valid", "Bearer user-token", http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRequireUser_MissingTokenNeverCallsProvider(t *testing.T) {
	p := newProvider()
	r := newRouter(t, RequireUser(p, nil))

	do(r, "")
	assert.Equal(t, 0, p.calls)
}

func TestOptionalUser(t *testing.T) {
	r := newRouter(t, OptionalUser(newProvider()))

	w := do(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = do(r, "Bearer stale")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	w = do(r, "Bearer admin-token")
	assert.Equal(t, "a1", w.Body.String())
}

func TestRequireRole(t *testing.T) {
	p := newProvider()

	tests := []struct {
		operation string
		token     string
		status    int
	}{
		{OpRead, "Bearer user-token", http.StatusOK},
		{OpCreate, "Bearer user-token", http.StatusOK},
		{OpUpdate, "Bearer user-token", http.StatusForbidden},
		{OpDelete, "Bearer user-token", http.StatusForbidden},
		{OpUpdate, "Bearer admin-token", http.StatusOK},
		{OpDelete, "Bearer admin-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.operation+" "+tt.token, func(t *testing.T) {
			r := newRouter(t,
				RequireUser(p, nil),
				RequireRole(DefaultPermissions, TableProjects, tt.operation, true, zaptest.NewLogger(t)))
			assert.Equal(t, tt.status, do(r, tt.token).Code)
		})
	}
}

func TestRequireRole_WithoutIdentity(t *testing.T) {
	r := newRouter(t, RequireRole(DefaultPermissions, TableProjects, OpRead, false, nil))
	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
}

func TestPermissions(t *testing.T) {
	assert.True(t, DefaultPermissions.Allows(TablePresenter, OpRead, domain.RoleAuthenticated))
	assert.False(t, DefaultPermissions.Allows(TablePresenter, OpCreate, domain.RoleAuthenticated))
	assert.True(t, DefaultPermissions.Allows(TablePresenter, OpCreate, domain.RoleAdmin))
	assert.False(t, DefaultPermissions.Allows("unknown", OpRead, domain.RoleAdmin))
}
