package middleware

import "github.com/gin-gonic/gin"

// Guards carries the per-route middleware factories that feature routers
// compose into their chains.
type Guards struct {
	Auth   gin.HandlerFunc
	Limit  func(operation string) gin.HandlerFunc
	Role   func(table, operation string) gin.HandlerFunc
	Upload gin.HandlerFunc
	Query  gin.HandlerFunc
}
