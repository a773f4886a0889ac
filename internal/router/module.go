package router

import "github.com/gin-gonic/gin"

// Module describes a feature module that registers its routes. Root is
// the site itself, api is mounted under /api.
type Module interface {
	Register(root, api *gin.RouterGroup)
}
