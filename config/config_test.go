package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_ENABLED", "not-a-bool")

	c := Load()
	if c.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v", c.SessionTTL)
	}
	if c.MaxUploadBytes() != 5<<20 {
		t.Errorf("MaxUploadBytes = %d", c.MaxUploadBytes())
	}
	if got := c.CORSOrigins(); len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", got)
	}
	if !c.RateLimitEnabled {
		t.Error("invalid bool should fall back to the default")
	}
	if len(c.ESAddrs()) != 0 {
		t.Errorf("search is off unless addresses are configured, got %v", c.ESAddrs())
	}
}

func TestValidateProduction(t *testing.T) {
	c := Load()
	if err := c.Validate(); err != nil {
		t.Fatalf("development defaults should pass: %v", err)
	}

	c.Env = "production"
	if err := c.Validate(); err == nil {
		t.Fatal("dev secrets must be rejected in production")
	}

	c.SessionSecret = "0123456789abcdef0123456789abcdef"
	c.FlashSecret = "fedcba9876543210fedcba9876543210"
	c.CookieSecure = true
	c.GCSBucket = ""
	err := c.Validate()
	if err == nil || !strings.Contains(err.Error(), "GCS_BUCKET") {
		t.Fatalf("production without a bucket: got %v", err)
	}

	c.GCSBucket = "online-school-uploads"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	c := &Config{DBUser: "app", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "online_school", DBSSLMode: "disable"}
	want := "postgres://app:p%40ss%2Fword@db:5432/online_school?sslmode=disable"
	if got := c.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
}
