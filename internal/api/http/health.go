package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
}

type IndexResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Timestamp time.Time         `json:"timestamp"`
	Endpoints map[string]string `json:"endpoints"`
}

type HealthHandler struct {
	environment string
	version     string
	started     time.Time
	now         func() time.Time
}

func NewHealthHandler(environment, version string) *HealthHandler {
	return &HealthHandler{
		environment: environment,
		version:     version,
		started:     time.Now(),
		now:         time.Now,
	}
}

// HealthCheck reports liveness and process uptime in seconds.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	now := h.now()
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "OK",
		Timestamp:   now.UTC(),
		Uptime:      now.Sub(h.started).Seconds(),
		Environment: h.environment,
	})
}

// Index lists the API entry points.
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, IndexResponse{
		Message:   "Portfolio API",
		Version:   h.version,
		Timestamp: h.now().UTC(),
		Endpoints: map[string]string{
			"health":   "/health",
			"profiles": "/api/profiles",
			"projects": "/api/projects",
			"users":    "/api/users",
		},
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Index)
	r.GET("/health", h.HealthCheck)
}
