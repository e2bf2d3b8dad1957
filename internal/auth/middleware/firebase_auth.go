package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/auth"
)

// RequireUser rejects requests without a valid bearer token before any
// handler runs and stores the verified identity in the context.
func RequireUser(provider auth.Provider, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			_ = c.Error(apperr.Unauthorized("missing authorization token"))
			c.Abort()
			return
		}

		id, err := provider.VerifyToken(c.Request.Context(), token)
		if err != nil {
			logger.Debug("token verification failed", zap.Error(err), zap.String("ip", c.ClientIP()))
			if apperr.Code(err) != apperr.EUnauthorized {
				err = apperr.Unauthorized("invalid or expired token")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		auth.SetIdentity(c, id)
		c.Next()
	}
}

// OptionalUser sets the identity when a valid token is present and never
// fails the request.
func OptionalUser(provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractToken(c); token != "" {
			if id, err := provider.VerifyToken(c.Request.Context(), token); err == nil {
				auth.SetIdentity(c, id)
			}
		}
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
