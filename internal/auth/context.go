package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/folio-labs/portfolio-api/internal/auth/domain"
)

const CtxIdentity = "identity"

// SetIdentity stores the verified caller in the gin context.
func SetIdentity(c *gin.Context, id *domain.Identity) {
	c.Set(CtxIdentity, id)
}

// IdentityFrom returns the caller set by the auth middleware, or nil.
func IdentityFrom(c *gin.Context) *domain.Identity {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*domain.Identity)
	return id
}
