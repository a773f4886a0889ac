package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/online-school/internal/interface/http"
	"github.com/oksasatya/online-school/internal/interface/middleware"
)

// UserModule wires the account pages and the user search API.
// Site: GET /, GET /user/, POST /user/education/, POST /user/certifications/, POST /user/delete/
// API:  GET /api/users/search
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(root, api *gin.RouterGroup) {
	root.GET("/", m.Handler.Home)

	user := root.Group("/user")
	user.Use(middleware.RequireSession())
	user.Use(middleware.RateLimit(m.Redis, middleware.AccountPolicy, middleware.KeyByUserID(), nil, func(c *gin.Context, _ time.Duration) {
		m.Handler.Pages.Error(c, http.StatusTooManyRequests)
	}))
	{
		user.GET("/", m.Handler.Profile)
		user.POST("/education/", m.Handler.AddEducation)
		user.POST("/certifications/", m.Handler.AddCertification)
		user.POST("/delete/", m.Handler.Delete)
	}

	auth := api.Group("/users")
	auth.Use(middleware.RequireSessionJSON())
	auth.Use(middleware.RateLimit(m.Redis, middleware.SearchPolicy, middleware.KeyByUserID(), nil, middleware.LimitedJSON))
	{
		auth.GET("/search", m.Handler.Search)
	}
}
