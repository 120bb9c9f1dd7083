package router

import "github.com/gin-gonic/gin"

// Module is one routable feature slice of the directory API (auth, members,
// user profile, admin, debug). Each registers its own routes, including any
// per-route auth middleware, on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
