package middleware

import (
	"fmt"
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/config"
	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/logging"
)

// ErrorHandler is the terminal error handler and must be registered first.
// Handlers and middlewares report failures with c.Error and abort; this
// middleware turns the last error into the JSON error body once.
func ErrorHandler(env string, logger *zap.Logger) gin.HandlerFunc {
	production := env == config.EnvProduction
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		ae := apperr.Translate(c.Errors.Last().Err)
		status := apperr.HTTPStatus(ae.Code)

		log := logging.FromContext(c.Request.Context(), logger).With(
			zap.String("code", ae.Code),
			zap.Int("status", status),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("ip", c.ClientIP()),
		)
		if ae.Operational() {
			log.Info("request failed", zap.Error(ae))
		} else {
			log.Error("request failed", zap.Error(ae), zap.Strings("stack", ae.Stack()))
		}

		if c.Writer.Written() {
			return
		}

		body := gin.H{"success": false, "error": ae.Msg}
		if len(ae.Details) > 0 {
			body["details"] = ae.Details
		}
		if ae.RetryAfter > 0 {
			secs := int(math.Ceil(ae.RetryAfter.Seconds()))
			body["retryAfter"] = secs
			c.Header("Retry-After", strconv.Itoa(secs))
		}
		if !production {
			body["stack"] = ae.Stack()
		}
		c.AbortWithStatusJSON(status, body)
	}
}

// NotFound reports unknown routes through the error handler.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperr.NotFound(fmt.Sprintf("route %s not found", c.Request.URL.Path)))
		c.Abort()
	}
}

// Recovery turns a panic into an internal error handled by ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(apperr.Internal("", fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}
