package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/online-school/config"
	"github.com/oksasatya/online-school/internal/container"
	handlers "github.com/oksasatya/online-school/internal/interface/http"
	"github.com/oksasatya/online-school/internal/router"
	"github.com/oksasatya/online-school/pkg/helpers"
	"github.com/oksasatya/online-school/pkg/validation"
)

const serviceName = "online-school"

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Run migrations using database/sql with pgx stdlib
	if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer c.Close()

	tracing := cfg.OTLPEndpoint != ""
	if tracing {
		shutdown, err := helpers.InitTracer(ctx, serviceName, cfg.OTLPEndpoint)
		if err != nil {
			helpers.LogError(logger, "tracer init failed, continuing without tracing", err, nil)
			tracing = false
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	deps := router.Deps{
		Service:    c.Service,
		Logger:     logger,
		Cookies:    helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure),
		Flash:      handlers.NewFlash(cfg.FlashSecret, cfg.CookieSecure, logger),
		Blobs:      c.Blobs,
		LocalFiles: c.LocalFiles,
		Checks:     c.Checks(),
		Gatherer:   c.Registry,
		Expvar:     cfg.DebugMetricsEnabled,
	}
	if cfg.RateLimitEnabled {
		deps.Redis = c.Redis
	}
	r := router.NewEngine(router.Options{
		ServiceName:    serviceName,
		TrustProxy:     cfg.TrustProxyHeaders,
		HTTPLog:        cfg.HTTPLogEnabled || cfg.Env == "development",
		Tracing:        tracing,
		CORSOrigins:    cfg.CORSOrigins(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Metrics:        c.Prom,
	}, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
