package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpmw "github.com/folio-labs/portfolio-api/internal/api/http/middleware"
	"github.com/folio-labs/portfolio-api/internal/projects/domain"
	"github.com/folio-labs/portfolio-api/internal/validation"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "projects retrieved successfully", Data: items})
}

func (h *Handler) create(c *gin.Context) {
	img := imageFrom(c)

	req := newCreateRequest(img != nil)
	if err := c.ShouldBind(req); err != nil {
		fail(c, validation.Error(err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), req.project(), img)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, response{Message: "project created successfully", Data: p})
}

func (h *Handler) update(c *gin.Context) {
	id := c.GetInt64(ctxProjectID)
	img := imageFrom(c)

	req := newUpdateRequest(img != nil)
	if err := c.ShouldBind(req); err != nil {
		fail(c, validation.Error(err))
		return
	}

	p, err := h.svc.Update(c.Request.Context(), id, req.patch(), img)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "project updated successfully", Data: p})
}

func (h *Handler) delete(c *gin.Context) {
	id := c.GetInt64(ctxProjectID)

	p, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Message: "project deleted successfully", Data: p})
}

const ctxProjectID = "projectID"

// requireID validates the :id path parameter before any body is parsed.
func requireID(c *gin.Context) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		fail(c, validation.Error(err))
		return
	}
	c.Set(ctxProjectID, p.ID)
	c.Next()
}

func imageFrom(c *gin.Context) *domain.ImageUpload {
	f := httpmw.FileFrom(c)
	if f == nil {
		return nil
	}
	return &domain.ImageUpload{Filename: f.Filename, ContentType: f.ContentType, Data: f.Data}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
