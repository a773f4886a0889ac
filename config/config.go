package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read from the environment. Defaults suit local development;
// Validate refuses the unsafe ones in production.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Database
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Google Cloud Storage; uploads are kept in memory when the bucket is empty
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// Sessions
	SessionSecret string
	SessionTTL    time.Duration
	FlashSecret   string

	// Cookies
	CookieDomain string
	CookieSecure bool

	// HTTP
	CORSAllowedOrigins string // comma-separated
	TrustProxyHeaders  bool
	MaxUploadMB        int
	RateLimitEnabled   bool

	// Migrations
	MigrationsDir string

	// Mailgun
	MailgunDomain string
	MailgunAPIKey string
	MailgunSender string
	NotifyEmail   string // staff mailbox for registration and verification notices

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEmailQueue string
	WorkerMetricsAddr  string // email worker /metrics listener, off when empty

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESUsersIndex       string

	// Branding for emails
	CompanyName string
	LogoURL     string
	SupportURL  string

	// Email sending toggle
	MailSendEnabled bool

	// Seeded administrator
	AdminUsername string
	AdminPassword string

	// Tracing; disabled when the endpoint is empty
	OTLPEndpoint string

	// Debug metrics (/debug/vars)
	DebugMetricsEnabled bool

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parsed reads key with parse, keeping def when unset or malformed.
func parsed[T any](key string, def T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	out, err := parse(v)
	if err != nil {
		log.Printf("config: %s=%q is invalid (%v), using %v", key, v, err, def)
		return def
	}
	return out
}

func getbool(key string, def bool) bool { return parsed(key, def, strconv.ParseBool) }

func getint(key string, def int) int { return parsed(key, def, strconv.Atoi) }

func getdur(key string, def time.Duration) time.Duration {
	return parsed(key, def, time.ParseDuration)
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "Online School"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", "8080"),
		GinMode: getenv("GIN_MODE", "release"),

		DBHost:        getenv("DB_HOST", "localhost"),
		DBPort:        getenv("DB_PORT", "5432"),
		DBUser:        getenv("DB_USER", "postgres"),
		DBPassword:    getenv("DB_PASSWORD", "postgres"),
		DBName:        getenv("DB_NAME", "online_school"),
		DBSSLMode:     getenv("DB_SSLMODE", "disable"),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		SessionSecret: getenv("SESSION_SECRET", "devsessionsecret"),
		SessionTTL:    getdur("SESSION_TTL", 14*24*time.Hour),
		FlashSecret:   getenv("FLASH_SECRET", "devflashsecret"),

		CookieDomain: getenv("COOKIE_DOMAIN", ""),
		CookieSecure: getbool("COOKIE_SECURE", false),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),
		TrustProxyHeaders:  getbool("TRUST_PROXY_HEADERS", false),
		MaxUploadMB:        getint("MAX_UPLOAD_MB", 20),
		RateLimitEnabled:   getbool("RATE_LIMIT_ENABLED", true),

		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		MailgunDomain: getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getenv("MAILGUN_API_KEY", ""),
		MailgunSender: getenv("MAILGUN_SENDER", ""),
		NotifyEmail:   getenv("NOTIFY_EMAIL", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),
		WorkerMetricsAddr:  getenv("WORKER_METRICS_ADDR", ""),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESUsersIndex:       getenv("ES_USERS_INDEX", "users"),

		CompanyName: getenv("COMPANY_NAME", ""),
		LogoURL:     getenv("LOGO_URL", ""),
		SupportURL:  getenv("SUPPORT_URL", ""),

		MailSendEnabled: getbool("MAIL_SEND_ENABLED", true),

		AdminUsername: getenv("ADMIN_USERNAME", ""),
		AdminPassword: getenv("ADMIN_PASSWORD", ""),

		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", true),

		HTTPLogEnabled: getbool("HTTP_LOG_ENABLED", false),
	}
}

// MaxUploadBytes is the request body ceiling for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// Validate rejects settings that are unsafe outside development.
func (c *Config) Validate() error {
	if c.Env != "production" {
		return nil
	}
	var problems []string
	if c.SessionSecret == "devsessionsecret" || len(c.SessionSecret) < 32 {
		problems = append(problems, "SESSION_SECRET must be set to at least 32 bytes")
	}
	if c.FlashSecret == "devflashsecret" || len(c.FlashSecret) < 32 {
		problems = append(problems, "FLASH_SECRET must be set to at least 32 bytes")
	}
	if !c.CookieSecure {
		problems = append(problems, "COOKIE_SECURE must be true")
	}
	// the in-memory blob fallback loses uploads on restart
	if c.GCSBucket == "" {
		problems = append(problems, "GCS_BUCKET must be set")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid production config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// PostgresDSN returns a postgres:// URL for pgx and golang-migrate.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
