package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/folio-labs/portfolio-api/config"
	httpapi "github.com/folio-labs/portfolio-api/internal/api/http"
	httpmw "github.com/folio-labs/portfolio-api/internal/api/http/middleware"
	"github.com/folio-labs/portfolio-api/internal/auth"
	authhttp "github.com/folio-labs/portfolio-api/internal/auth/http"
	authmw "github.com/folio-labs/portfolio-api/internal/auth/middleware"
	"github.com/folio-labs/portfolio-api/internal/metrics"
	profileshttp "github.com/folio-labs/portfolio-api/internal/profiles/http"
	projectshttp "github.com/folio-labs/portfolio-api/internal/projects/http"
	"github.com/folio-labs/portfolio-api/internal/ratelimit"
	"github.com/folio-labs/portfolio-api/internal/validation"
)

// OperationWindow is the window shared by every per-operation budget.
const OperationWindow = 15 * time.Minute

// OperationBudgets is the number of requests a client address may make per
// operation inside OperationWindow.
var OperationBudgets = map[string]int{
	profileshttp.OpRead:   200,
	profileshttp.OpCreate: 5,
	profileshttp.OpUpdate: 10,
	projectshttp.OpRead:   100,
	projectshttp.OpCreate: 10,
	projectshttp.OpUpdate: 20,
	projectshttp.OpDelete: 5,
	authhttp.OpLogin:      10,
	authhttp.OpRegister:   5,
}

type RouterDeps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	Provider auth.Provider
	Limiter  *ratelimit.Limiter
	Global   *ratelimit.Global

	Projects  projectshttp.Service
	Presenter profileshttp.Service
	Users     authhttp.Service
}

func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	cfg := dep.Config
	env := cfg.App.Environment
	logger := dep.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	validation.Setup()

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// The request logger wraps the error handler so it records the final status.
	r.Use(
		httpmw.RequestIDMiddleware(logger, dep.Metrics),
		httpmw.ErrorHandler(env, logger),
		httpmw.Recovery(),
		httpmw.SecurityHeaders(),
		cors.New(cors.Config{
			AllowOrigins:     []string{cfg.App.FrontendURL},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", httpmw.HeaderRequestID},
			ExposeHeaders:    []string{httpmw.HeaderRequestID, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		httpmw.BodyLimit(cfg.Server.MaxBodyBytes),
		httpmw.Sanitize(env, logger),
		httpmw.GlobalLimit(dep.Global, dep.Metrics, "/health", "/metrics"),
	)
	r.NoRoute(httpmw.NotFound())

	httpapi.NewHealthHandler(env, cfg.App.Version).RegisterRoutes(r)
	if dep.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{})))
	}

	guards := httpmw.Guards{
		Auth: authmw.RequireUser(dep.Provider, logger),
		Limit: func(op string) gin.HandlerFunc {
			budget, ok := OperationBudgets[op]
			if !ok {
				panic(fmt.Sprintf("no rate limit budget for operation %q", op))
			}
			return httpmw.Operation(dep.Limiter, dep.Metrics, op, budget, OperationWindow)
		},
		Role: func(table, op string) gin.HandlerFunc {
			return authmw.RequireRole(authmw.DefaultPermissions, table, op, !cfg.App.IsProduction(), logger)
		},
		Upload: httpmw.SingleImage("image", cfg.Upload.MaxBytes),
		Query:  httpmw.QueryAllowlist(env, logger),
	}

	api := r.Group("/api")
	profileshttp.New(dep.Presenter).Register(api.Group("/profiles"), guards)
	projectshttp.New(dep.Projects).Register(api.Group("/projects"), guards)
	authhttp.New(dep.Users).Register(api.Group("/users"), guards)

	return r, nil
}
