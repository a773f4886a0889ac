package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/online-school/internal/interface/http"
	"github.com/oksasatya/online-school/internal/interface/middleware"
)

// AuthModule serves registration, login and logout pages.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Redis   *redis.Client // nil disables rate limiting
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb}
}

func (m *AuthModule) Register(root, _ *gin.RouterGroup) {
	limited := func(c *gin.Context, _ time.Duration) {
		m.Handler.Pages.Error(c, http.StatusTooManyRequests)
	}
	registerLimiter := middleware.RateLimit(m.Redis, middleware.RegisterPolicy, middleware.KeyByIP(), nil, limited)
	loginLimiter := middleware.RateLimit(m.Redis, middleware.LoginPolicy, middleware.KeyByIP(), nil, limited)

	root.GET("/register/", m.Handler.RegisterForm)
	root.POST("/register/", registerLimiter, m.Handler.Register)
	root.GET("/login/", m.Handler.LoginForm)
	root.POST("/login/", loginLimiter, m.Handler.Login)
	root.GET("/logout/", m.Handler.Logout)
}
