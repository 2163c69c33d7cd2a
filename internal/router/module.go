package router

import "github.com/gin-gonic/gin"

// Module owns a set of routes. Register receives the /api group with the
// registry middleware already applied.
type Module interface {
	Register(rg *gin.RouterGroup)
}
