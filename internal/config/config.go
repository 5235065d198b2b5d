package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Auth   AuthConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"` // seconds
}

// DBConfig holds database-related configuration.
// The default password is for local development only; set DB_PASSWORD and
// DB_SSLMODE ("require" or "verify-full") in production.
type DBConfig struct {
	Host       string `envconfig:"DB_HOST" default:"localhost"`
	Port       int    `envconfig:"DB_PORT" default:"5432"`
	User       string `envconfig:"DB_USER" default:"postgres"`
	Password   string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name       string `envconfig:"DB_NAME" default:"coupon_db"`
	SSLMode    string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns   int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns   int    `envconfig:"DB_MIN_CONNS" default:"5"`
	MaxRetries int    `envconfig:"DB_MAX_RETRIES" default:"5"`
	Migrate    bool   `envconfig:"DB_MIGRATE" default:"true"` // apply the embedded schema on startup
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s&pool_max_conns=%d&pool_min_conns=%d",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode, c.MaxConns, c.MinConns)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// AuthConfig names the header carrying the authenticated user's id.
// Authentication itself happens upstream of this service.
type AuthConfig struct {
	UserHeader string `envconfig:"AUTH_USER_HEADER" default:"X-User-ID"`
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}
