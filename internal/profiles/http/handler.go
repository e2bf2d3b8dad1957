package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpmw "github.com/folio-labs/portfolio-api/internal/api/http/middleware"
	"github.com/folio-labs/portfolio-api/internal/profiles/domain"
	"github.com/folio-labs/portfolio-api/internal/validation"
)

const (
	OpRead   = "read_profile"
	OpCreate = "create_profile"
	OpUpdate = "update_profile"
)

type Service interface {
	Get(ctx context.Context) (*domain.Presenter, error)
	Upsert(ctx context.Context, patch domain.PresenterPatch) (*domain.Presenter, error)
}

// Handler serves the presenter ("about me") endpoints.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

type createReq struct {
	Name               string  `json:"name" form:"name" binding:"required,min=2,max=50"`
	ProfileURL         *string `json:"profileUrl" form:"profileUrl" binding:"omitnil,url"`
	AboutMeDescription *string `json:"aboutMeDescription" form:"aboutMeDescription" binding:"omitnil,min=10,max=1000"`
	ContactEmail       *string `json:"contactEmail" form:"contactEmail" binding:"omitnil,email"`
}

type updateReq struct {
	Name               *string `json:"name" form:"name" binding:"omitnil,min=2,max=50"`
	ProfileURL         *string `json:"profileUrl" form:"profileUrl" binding:"omitnil,url"`
	AboutMeDescription *string `json:"aboutMeDescription" form:"aboutMeDescription" binding:"omitnil,min=10,max=1000"`
	ContactEmail       *string `json:"contactEmail" form:"contactEmail" binding:"omitnil,email"`
}

func (r createReq) patch() domain.PresenterPatch {
	return domain.PresenterPatch{
		Name:               &r.Name,
		ProfileURL:         r.ProfileURL,
		AboutMeDescription: r.AboutMeDescription,
		ContactEmail:       r.ContactEmail,
	}
}

func (r updateReq) patch() domain.PresenterPatch {
	return domain.PresenterPatch(r)
}

// Register attaches presenter routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, g httpmw.Guards) {
	rg.GET("/read", g.Limit(OpRead), g.Query, h.read)
	rg.POST("/create", g.Auth, g.Limit(OpCreate), h.create)
	rg.PATCH("/update", g.Auth, g.Limit(OpUpdate), h.update)
}

func (h *Handler) read(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "presenter retrieved successfully", "data": p})
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(validation.Error(err))
		c.Abort()
		return
	}
	h.upsert(c, http.StatusCreated, req.patch())
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(validation.Error(err))
		c.Abort()
		return
	}
	h.upsert(c, http.StatusOK, req.patch())
}

func (h *Handler) upsert(c *gin.Context, status int, patch domain.PresenterPatch) {
	p, err := h.svc.Upsert(c.Request.Context(), patch)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.JSON(status, gin.H{"message": "presenter saved successfully", "data": p})
}
