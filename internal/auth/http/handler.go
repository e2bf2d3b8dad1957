package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	httpmw "github.com/folio-labs/portfolio-api/internal/api/http/middleware"
	"github.com/folio-labs/portfolio-api/internal/apperr"
	"github.com/folio-labs/portfolio-api/internal/auth"
	"github.com/folio-labs/portfolio-api/internal/auth/domain"
	"github.com/folio-labs/portfolio-api/internal/validation"
)

const (
	OpLogin    = "login"
	OpRegister = "register"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Register(ctx context.Context, email, password string) (*domain.Account, error)
	Logout(ctx context.Context, uid string) error
}

type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}

type loginReq struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type registerReq struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,password"`
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Register attaches the users routes. Login is public; registering another
// account and logging out need a signed-in caller.
func (h *Handler) Register(rg *gin.RouterGroup, g httpmw.Guards) {
	rg.POST("/login", g.Limit(OpLogin), h.login)
	rg.POST("/register", g.Auth, g.Limit(OpRegister), h.register)
	rg.POST("/logout", g.Auth, h.logout)
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBind(&req); err != nil {
		abort(c, validation.Error(err))
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Success: true, Message: "signed in successfully", Data: session})
}

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBind(&req); err != nil {
		abort(c, validation.Error(err))
		return
	}

	account, err := h.svc.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, response{Success: true, Message: "user created successfully", Data: account})
}

func (h *Handler) logout(c *gin.Context) {
	id := auth.IdentityFrom(c)
	if id == nil {
		abort(c, apperr.Unauthorized("user not authenticated"))
		return
	}

	if err := h.svc.Logout(c.Request.Context(), id.ID); err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Success: true, Message: "signed out successfully"})
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
