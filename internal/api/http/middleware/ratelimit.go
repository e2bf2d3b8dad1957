package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/metrics"
	"github.com/folio-labs/portfolio-api/internal/ratelimit"
)

// GlobalLimit applies the coarse per-address limiter to every path except
// the exempt ones.
func GlobalLimit(g *ratelimit.Global, m *metrics.Metrics, exempt ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(exempt))
	for _, p := range exempt {
		skip[p] = true
	}
	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		if d := g.Allow(c.Request.Context(), c.ClientIP()); !d.Allowed {
			m.RateLimited(ratelimit.GlobalOperation)
			_ = c.Error(apperr.TooManyRequests("too many requests from this IP, please try again later", d.RetryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Operation limits one named operation to max requests per window and
// client address.
func Operation(l *ratelimit.Limiter, m *metrics.Metrics, operation string, max int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := l.Check(c.Request.Context(), operation, c.ClientIP(), max, window)
		if !d.Allowed {
			m.RateLimited(operation)
			_ = c.Error(apperr.TooManyRequests("too many requests for this operation, please try again later", d.RetryAfter))
			c.Abort()
			return
		}
		c.Next()
	}
}
