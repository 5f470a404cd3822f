package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	GatewayREST = "rest"
	GatewaySQL  = "sql"
)

type Config struct {
	BindAddress string   `env:"BIND_ADDRESS" envDefault:"0.0.0.0:8080"`
	TLSDomains  []string `env:"TLS_DOMAINS" envSeparator:","` // e.g. "example.com,example2.com"
	DebugMode   bool     `env:"DEBUG_MODE" envDefault:"false"`
	// PublicBaseURL is where visitors reach this server, used for the disk and S3 asset URLs
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	TemplatesGlob string `env:"TEMPLATES_GLOB" envDefault:"templates/*.tmpl"`

	// Remote table gateway: "rest" (PostgREST of the hosted service) or "sql" (direct connection)
	GatewayBackend         string `env:"GATEWAY_BACKEND" envDefault:"rest"`
	SupabaseURL            string `env:"SUPABASE_URL"`
	SupabaseAnonKey        string `env:"SUPABASE_ANON_KEY"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY"`             // privileged access is disabled without it
	DatabaseDriver         string `env:"DATABASE_DRIVER" envDefault:"postgres"` // postgres, mysql or sqlite
	DatabaseDSN            string `env:"DATABASE_DSN"`
	AutoMigrate            bool   `env:"AUTO_MIGRATE" envDefault:"false"`
	// SQL backend only: the privileged handle can be switched off to mirror a deployment without the service role key
	SQLPrivileged bool `env:"SQL_PRIVILEGED" envDefault:"true"`

	// Asset store: "supabase", "disk", "s3" or "" (none)
	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"supabase"`
	StorageDir      string `env:"STORAGE_DIR" envDefault:"./data/storage"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3SSEEncryption string `env:"S3_SSE_ENCRYPTION"`

	AdminPassword     string        `env:"ADMIN_PASSWORD"`
	SessionSecret     string        `env:"SESSION_SECRET"`
	SessionMaxAge     time.Duration `env:"SESSION_MAX_AGE" envDefault:"12h"`
	MaxImageDimension uint          `env:"MAX_IMAGE_DIMENSION" envDefault:"2400"`
	MaxUploadMB       int64         `env:"MAX_UPLOAD_MB" envDefault:"20"`

	ResendAPIKey string   `env:"RESEND_API_KEY"`
	NotifyFrom   string   `env:"NOTIFY_FROM"`
	NotifyTo     []string `env:"NOTIFY_TO" envSeparator:","`

	IntakeRate  time.Duration `env:"INTAKE_RATE" envDefault:"10s"` // one public form submission per client per INTAKE_RATE
	IntakeBurst int           `env:"INTAKE_BURST" envDefault:"5"`
}

// Load reads .env (when present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Reading .env: %v", err)
	}
	return Parse()
}

// Parse reads the environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.GatewayBackend = strings.ToLower(c.GatewayBackend)
	c.StorageBackend = strings.ToLower(c.StorageBackend)
	switch c.GatewayBackend {
	case GatewayREST:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return errors.New("GATEWAY_BACKEND=rest needs SUPABASE_URL and SUPABASE_ANON_KEY")
		}
	case GatewaySQL:
		if c.DatabaseDSN == "" {
			return errors.New("GATEWAY_BACKEND=sql needs DATABASE_DSN")
		}
		switch c.DatabaseDriver {
		case "postgres", "mysql", "sqlite":
		default:
			return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unknown GATEWAY_BACKEND %q", c.GatewayBackend)
	}
	switch c.StorageBackend {
	case "", "none", "disk":
	case "supabase":
		if c.SupabaseURL == "" {
			return errors.New("STORAGE_BACKEND=supabase needs SUPABASE_URL")
		}
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("STORAGE_BACKEND=s3 needs S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.SessionMaxAge <= 0 {
		return errors.New("SESSION_MAX_AGE must be positive")
	}
	return nil
}

// MaxUploadBytes bounds one admin form submission
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Config) NotificationsEnabled() bool {
	return c.ResendAPIKey != "" && c.NotifyFrom != "" && len(c.NotifyTo) > 0
}
