package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/folio-labs/portfolio-api/config"
)

func SetGinMode(env string) {
	switch env {
	case config.EnvProduction:
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}
}
