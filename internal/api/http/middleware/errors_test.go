package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/folio-labs/portfolio-api/internal/apperr"
)

func TestErrorHandler_OperationalError(t *testing.T) {
	r := newEngine(t, "development")
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(apperr.Validation("invalid input data", apperr.FieldError{Field: "title", Message: "title is required"}))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeError(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "invalid input data", body.Error)
	assert.Len(t, body.Details, 1)
	assert.NotEmpty(t, body.Stack)
}

func TestErrorHandler_ProductionHidesStackAndCause(t *testing.T) {
	r := newEngine(t, "production")
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: password authentication failed for user admin"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password authentication")

	body := decodeError(t, w)
	assert.Equal(t, "internal server error", body.Error)
	assert.Empty(t, body.Stack)
}

func TestErrorHandler_RetryAfter(t *testing.T) {
	r := newEngine(t, "production")
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(apperr.TooManyRequests("slow down", 1500*time.Millisecond))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, 2, decodeError(t, w).RetryAfter)
}

func TestErrorHandler_NoErrorPassesThrough(t *testing.T) {
	r := newEngine(t, "production")
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := newEngine(t, "production")
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w).Error)
}

func TestNotFound(t *testing.T) {
	r := newEngine(t, "production")
	r.NoRoute(NotFound())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "route /nope not found", decodeError(t, w).Error)
}
