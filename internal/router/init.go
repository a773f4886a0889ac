package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/internal/infrastructure/memory"
	handlers "github.com/oksasatya/online-school/internal/interface/http"
	"github.com/oksasatya/online-school/internal/interface/middleware"
	"github.com/oksasatya/online-school/internal/router/modules"
	"github.com/oksasatya/online-school/pkg/helpers"
	"github.com/oksasatya/online-school/web"
)

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Service *application.Service
	Redis   *redis.Client // rate limiting; nil disables it
	Logger  *logrus.Logger
	Cookies *helpers.Manager
	Flash   *handlers.Flash
	Blobs   application.BlobStore

	// LocalFiles is served under /blobs/ when uploads are kept in memory.
	LocalFiles *memory.BlobStore

	Checks   map[string]modules.Check
	Gatherer prometheus.Gatherer
	Expvar   bool
}

type Options struct {
	ServiceName    string
	TrustProxy     bool
	HTTPLog        bool
	Tracing        bool
	CORSOrigins    []string
	MaxUploadBytes int64
	Metrics        *helpers.Prom
}

// NewEngine builds the gin engine with the global middleware stack,
// templates and every module registered.
func NewEngine(opts Options, d Deps) *gin.Engine {
	r := gin.New()
	if !opts.TrustProxy {
		// gin trusts every proxy by default
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(opts.TrustProxy))
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.GinHandleMiddleware())
	}
	if opts.HTTPLog {
		r.Use(gin.Logger())
	}
	if opts.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = opts.MaxUploadBytes
		r.Use(middleware.BodyLimit(opts.MaxUploadBytes))
	}
	r.Use(middleware.LoadSession(d.Service, d.Logger))

	web.Load(r, d.Blobs.URL)

	reg := NewRegistry(r)
	// without configured origins the API is same-origin only
	if len(opts.CORSOrigins) > 0 {
		reg.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	InitModules(reg, d)
	reg.RegisterAll()

	pages := handlers.NewPages(d.Flash)
	r.NoRoute(func(c *gin.Context) { pages.Error(c, 404) })
	return r
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, d Deps) {
	pages := handlers.NewPages(d.Flash)
	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(d.Service, pages, d.Cookies, d.Logger), d.Redis))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(d.Service, pages, d.Cookies, d.Logger), d.Redis))
	r.Add(modules.NewDebugModule(d.Checks, d.Gatherer, d.Redis, d.Expvar))
	if d.LocalFiles != nil {
		r.Add(modules.NewFilesModule(d.LocalFiles))
	}
}
