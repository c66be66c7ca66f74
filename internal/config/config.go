package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port            string `env:"PORT" envDefault:"3000"`
	SubmitRateLimit int    `env:"SUBMIT_RATE_LIMIT" envDefault:"30"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LOG_FORMAT" envDefault:"text"`

	// Database configuration
	DBType            string        `env:"DB_TYPE" envDefault:"mysql"` // mysql, postgres, sqlite, sqlite-pure, sqlserver
	DBHost            string        `env:"DB_HOST" envDefault:"localhost"`
	DBPort            string        `env:"DB_PORT" envDefault:"3306"`
	DBDatabase        string        `env:"DB_DATABASE,required"`
	DBUser            string        `env:"DB_USER"`
	DBPassword        string        `env:"DB_PASSWORD"`
	DBConnectionLimit int           `env:"DB_CONNECTION_LIMIT" envDefault:"5"`
	CommitTimeout     time.Duration `env:"COMMIT_TIMEOUT" envDefault:"10s"`

	// Authorizer configuration
	AuthzURL      string   `env:"AUTHZ_URL,required"`
	AuthzClientID string   `env:"AUTHZ_CLIENT_ID,required"`
	SuperAdmins   []string `env:"SUPER_ADMINS" envSeparator:","`

	// Google Sheets export, disabled when empty
	GoogleCredentialsFile string        `env:"GOOGLE_CREDENTIALS_FILE"`
	SheetMirrorTimeout    time.Duration `env:"SHEET_MIRROR_TIMEOUT" envDefault:"30s"`

	// Stripe billing, disabled when the secret is empty
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePricePremium  string `env:"STRIPE_PRICE_PREMIUM"`
	StripePriceBusiness string `env:"STRIPE_PRICE_BUSINESS"`
}

// Load reads an optional .env file and then the process environment
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse builds a Config from the environment described by opts.
func Parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.DBType = strings.ToLower(cfg.DBType)
	switch cfg.DBType {
	case "mysql", "mariadb", "postgres", "postgresql", "sqlite", "sqlite-pure", "sqlserver", "mssql":
	default:
		return nil, fmt.Errorf("DB_TYPE %q is not supported", cfg.DBType)
	}
	if cfg.DBConnectionLimit < 1 {
		return nil, fmt.Errorf("DB_CONNECTION_LIMIT must be positive")
	}
	if cfg.CommitTimeout <= 0 {
		return nil, fmt.Errorf("COMMIT_TIMEOUT must be positive")
	}
	if cfg.SheetMirrorTimeout <= 0 {
		return nil, fmt.Errorf("SHEET_MIRROR_TIMEOUT must be positive")
	}

	admins := cfg.SuperAdmins[:0]
	for _, a := range cfg.SuperAdmins {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			admins = append(admins, a)
		}
	}
	cfg.SuperAdmins = admins

	return cfg, nil
}

// SheetsEnabled reports whether a Google service account is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleCredentialsFile != ""
}

// BillingEnabled reports whether Stripe webhooks can be verified.
func (c *Config) BillingEnabled() bool {
	return c.StripeWebhookSecret != ""
}
