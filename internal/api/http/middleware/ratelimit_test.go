package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-labs/portfolio-api/internal/metrics"
	"github.com/folio-labs/portfolio-api/internal/ratelimit"
)

func TestOperation_SixthCallRejected(t *testing.T) {
	mock := clock.NewMock()
	l := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.WithClock(mock))
	m := metrics.New(prometheus.NewRegistry())

	r := newEngine(t, "production")
	r.POST("/create", Operation(l, m, "create_profile", 5, 900*time.Second), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusCreated, serve(r, httptest.NewRequest(http.MethodPost, "/create", nil)).Code)
	}

	w := serve(r, httptest.NewRequest(http.MethodPost, "/create", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "900", w.Header().Get("Retry-After"))
	assert.Equal(t, 900, decodeError(t, w).RetryAfter)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitRejected.WithLabelValues("create_profile")))

	mock.Add(900 * time.Second)
	assert.Equal(t, http.StatusCreated, serve(r, httptest.NewRequest(http.MethodPost, "/create", nil)).Code)
}

func TestGlobalLimit_ExemptsHealth(t *testing.T) {
	l := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.WithClock(clock.NewMock()))
	g := ratelimit.NewGlobal(l, 1, time.Minute)

	r := newEngine(t, "production")
	r.Use(GlobalLimit(g, nil, "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/api", nil)).Code)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 60, decodeError(t, w).RetryAfter)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	}
}
