package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Database
	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"bloodbank"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"data/bloodbank.db"`

	// JWT
	JWTSecret        string        `env:"JWT_SECRET,required"`
	JWTAccessExpiry  time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
	JWTRefreshExpiry time.Duration `env:"JWT_REFRESH_EXPIRY" envDefault:"168h"`

	// Accounts
	AllowAdminSignup   bool   `env:"ALLOW_ADMIN_SIGNUP" envDefault:"false"`
	SuperAdminEmail    string `env:"SUPERADMIN_EMAIL"`
	SuperAdminPassword string `env:"SUPERADMIN_PASSWORD"`

	// Donations
	DonationInterval time.Duration `env:"DONATION_INTERVAL" envDefault:"2160h"`

	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000,http://localhost:5173"`
	RedisURL    string `env:"REDIS_URL"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	SentryDSN   string `env:"SENTRY_DSN"`

	// Logging
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogRetentionDays int    `env:"LOG_RETENTION_DAYS" envDefault:"30"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
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
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: must be postgres or sqlite", c.DBDriver)
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes long, got %d", len(c.JWTSecret))
	}
	if (c.SuperAdminEmail == "") != (c.SuperAdminPassword == "") {
		return fmt.Errorf("SUPERADMIN_EMAIL and SUPERADMIN_PASSWORD must be set together")
	}
	if c.LogRetentionDays < 1 {
		return fmt.Errorf("LOG_RETENTION_DAYS must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000"
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) BootstrapEnabled() bool {
	return c.SuperAdminEmail != "" && c.SuperAdminPassword != ""
}
