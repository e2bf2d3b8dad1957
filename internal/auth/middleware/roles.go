package middleware

import (
	"fmt"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/auth"
	"github.com/folio-labs/portfolio-api/internal/auth/domain"
)

const (
	TableProjects  = "projects"
	TablePresenter = "presenter"

	OpRead   = "read"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Permissions lists the roles allowed per table and operation.
type Permissions map[string]map[string][]string

// DefaultPermissions is the role table of the portfolio.
var DefaultPermissions = Permissions{
	TableProjects: {
		OpRead:   {domain.RoleAuthenticated, domain.RoleAdmin},
		OpCreate: {domain.RoleAuthenticated, domain.RoleAdmin},
		OpUpdate: {domain.RoleAdmin},
		OpDelete: {domain.RoleAdmin},
	},
	TablePresenter: {
		OpRead:   {domain.RoleAuthenticated, domain.RoleAdmin},
		OpCreate: {domain.RoleAdmin},
		OpUpdate: {domain.RoleAdmin},
		OpDelete: {domain.RoleAdmin},
	},
}

// Allows reports whether role may perform operation on table.
func (p Permissions) Allows(table, operation, role string) bool {
	return slices.Contains(p[table][operation], role)
}

// RequireRole must run after RequireUser. Without an identity it answers 401,
// with a role outside the table 403.
func RequireRole(perms Permissions, table, operation string, warn bool, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := auth.IdentityFrom(c)
		if id == nil {
			_ = c.Error(apperr.Unauthorized(""))
			c.Abort()
			return
		}

		if !perms.Allows(table, operation, id.Role) {
			if warn {
				logger.Warn("permission denied",
					zap.String("user", id.ID),
					zap.String("table", table),
					zap.String("operation", operation),
					zap.String("role", id.Role))
			}
			_ = c.Error(apperr.Forbidden(fmt.Sprintf("you are not allowed to %s %s", operation, table)))
			c.Abort()
			return
		}
		c.Next()
	}
}
