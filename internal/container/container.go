// Package container builds the shared infrastructure once at startup so the
// server and the command line tools wire the same components.
package container

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/online-school/config"
	"github.com/oksasatya/online-school/internal/application"
	"github.com/oksasatya/online-school/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/online-school/internal/infrastructure/postgres"
	"github.com/oksasatya/online-school/internal/router/modules"
	"github.com/oksasatya/online-school/pkg/helpers"
	mailtpl "github.com/oksasatya/online-school/pkg/mailer/templates"
)

type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Pool  *pgxpool.Pool
	Redis *redis.Client
	GCS   *storage.Client // nil when uploads stay in memory

	Blobs      application.BlobStore
	LocalFiles *memory.BlobStore // set when Blobs is the in-memory store

	ES        *elasticsearch.Client
	Directory *application.Directory
	Rabbit    *helpers.RabbitPublisher

	Registry *prometheus.Registry
	Prom     *helpers.Prom

	Service *application.Service

	closers []func()
}

// New connects Postgres and Redis, which are required, and the optional
// bucket, search and queue backends. Optional backends that fail to
// connect are logged and left out.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	c.Pool = pool
	c.onClose(pool.Close)

	c.Redis = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	c.onClose(func() { _ = c.Redis.Close() })
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	if err := c.initBlobs(ctx); err != nil {
		c.Close()
		return nil, err
	}
	c.initSearch(ctx)
	c.initQueue()

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.Prom = helpers.NewProm(c.Registry)

	sessions := application.NewSessionStore(c.Redis, helpers.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL))
	svc := application.NewService(pginfra.NewUserRepository(pool), c.Blobs, sessions, logger)
	svc.Metrics = c.Prom
	svc.Brand = mailtpl.Brand{
		AppName:     cfg.AppName,
		CompanyName: cfg.CompanyName,
		LogoURL:     cfg.LogoURL,
		SupportURL:  cfg.SupportURL,
	}
	if c.Directory != nil {
		svc.Index = c.Directory
	}
	if c.Rabbit != nil {
		svc.Jobs = c.Rabbit
	}
	c.Service = svc
	return c, nil
}

func (c *Container) initBlobs(ctx context.Context) error {
	if c.Config.GCSBucket == "" {
		c.Logger.Warn("GCS_BUCKET not set, uploads are kept in memory")
		c.LocalFiles = memory.NewBlobStore()
		c.Blobs = c.LocalFiles
		return nil
	}
	client, err := helpers.NewGCSClient(ctx, c.Config.GCSCredentialsJSONPath)
	if err != nil {
		return fmt.Errorf("init gcs client: %w", err)
	}
	c.GCS = client
	c.onClose(func() { _ = client.Close() })
	c.Blobs = helpers.NewGCSStore(client, c.Config.GCSBucket)
	return nil
}

func (c *Container) initSearch(ctx context.Context) {
	addrs := c.Config.ESAddrs()
	if len(addrs) == 0 {
		helpers.LogInfo(c.Logger, "user search disabled", logrus.Fields{"reason": "ELASTICSEARCH_ADDRS not set"})
		return
	}
	es, err := helpers.NewESClient(addrs, c.Config.ElasticsearchUser, c.Config.ElasticsearchPass)
	if err != nil {
		helpers.LogError(c.Logger, "elasticsearch client failed, user search disabled", err, nil)
		return
	}
	c.ES = es
	c.Directory = application.NewDirectory(es, c.Config.ESUsersIndex, c.Redis)
	if err := c.Directory.EnsureIndex(ctx); err != nil {
		// documents are indexed on the next write once the cluster is back
		helpers.LogError(c.Logger, "ensure users index failed", err, logrus.Fields{"index": c.Config.ESUsersIndex})
	}
}

func (c *Container) initQueue() {
	if c.Config.RabbitMQURL == "" {
		helpers.LogInfo(c.Logger, "notification emails disabled", logrus.Fields{"reason": "RABBITMQ_URL not set"})
		return
	}
	pub, err := helpers.NewRabbitPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQEmailQueue)
	if err != nil {
		helpers.LogError(c.Logger, "rabbitmq connect failed, notification emails disabled", err, nil)
		return
	}
	c.Rabbit = pub
	c.onClose(pub.Close)
}

// Checks are the readiness probes served on /healthz.
func (c *Container) Checks() map[string]modules.Check {
	checks := map[string]modules.Check{
		"postgres": pginfra.Pinger(c.Pool),
		"redis":    func(ctx context.Context) error { return c.Redis.Ping(ctx).Err() },
	}
	if c.ES != nil {
		checks["elasticsearch"] = func(ctx context.Context) error {
			res, err := c.ES.Ping(c.ES.Ping.WithContext(ctx))
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return errors.New(res.Status())
			}
			return nil
		}
	}
	return checks
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
