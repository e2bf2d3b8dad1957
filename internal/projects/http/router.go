package http

import (
	"github.com/gin-gonic/gin"

	httpmw "github.com/folio-labs/portfolio-api/internal/api/http/middleware"
	authmw "github.com/folio-labs/portfolio-api/internal/auth/middleware"
)

const (
	OpRead   = "read_projects"
	OpCreate = "create_project"
	OpUpdate = "update_project"
	OpDelete = "delete_project"
)

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, g httpmw.Guards) {
	rg.GET("/read", g.Limit(OpRead), g.Query, h.list)
	rg.POST("/create",
		g.Auth, g.Role(authmw.TableProjects, authmw.OpCreate), g.Limit(OpCreate), g.Upload, h.create)
	rg.PATCH("/update/:id",
		g.Auth, g.Role(authmw.TableProjects, authmw.OpUpdate), g.Limit(OpUpdate), requireID, g.Upload, h.update)
	rg.DELETE("/delete/:id",
		g.Auth, g.Role(authmw.TableProjects, authmw.OpDelete), g.Limit(OpDelete), requireID, h.delete)
}
