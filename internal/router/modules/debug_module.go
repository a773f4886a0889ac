package modules

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/online-school/internal/interface/middleware"
	"github.com/oksasatya/online-school/pkg/response"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// DebugModule exposes health, Prometheus metrics and expvar.
type DebugModule struct {
	Checks   map[string]Check
	Gatherer prometheus.Gatherer
	Redis    *redis.Client
	Expvar   bool
}

func NewDebugModule(checks map[string]Check, gatherer prometheus.Gatherer, rdb *redis.Client, expvarEnabled bool) *DebugModule {
	return &DebugModule{Checks: checks, Gatherer: gatherer, Redis: rdb, Expvar: expvarEnabled}
}

func (m *DebugModule) Register(root, _ *gin.RouterGroup) {
	// probes from inside the network are never limited
	rl := middleware.RateLimit(m.Redis, middleware.HealthPolicy, middleware.KeyByIP(), middleware.AllowPrivateIP(), nil)
	root.GET("/healthz", rl, m.health)

	private := root.Group("/", middleware.OnlyPrivateIP())
	if m.Gatherer != nil {
		private.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
	}
	if m.Expvar {
		private.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	}
}

func (m *DebugModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(m.Checks))
	for name, check := range m.Checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	if status != http.StatusOK {
		response.JSON(c, response.Error[any](c, status, "unhealthy", results))
		return
	}
	response.JSON(c, response.Success(c, status, results, "healthy", nil))
}
