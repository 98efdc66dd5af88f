package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
)

// Database connection defaults used when DATABASE_URL is not set
const (
	DefaultPGHost     = "localhost"
	DefaultPGPort     = 5432
	DefaultPGUser     = "postgres"
	DefaultPGPassword = "postgres"
	DefaultPGDatabase = "postgres"
)

// DefaultEnvironment is used when NODE_ENV is not set
const DefaultEnvironment = "development"

// DatabaseConfig holds PostgreSQL connection settings.
// URL wins over the discrete fields when set.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// NewDatabaseConfig reads DATABASE_URL, falling back to PG_HOST, PG_PORT, PG_USER,
// PG_PASSWORD and PG_DATABASE with fixed defaults.
func NewDatabaseConfig() (*DatabaseConfig, error) {
	config := &DatabaseConfig{
		URL:      os.Getenv("DATABASE_URL"),
		Host:     getEnvOr("PG_HOST", DefaultPGHost),
		User:     getEnvOr("PG_USER", DefaultPGUser),
		Password: getEnvOr("PG_PASSWORD", DefaultPGPassword),
		Database: getEnvOr("PG_DATABASE", DefaultPGDatabase),
	}

	portStr := getEnvOr("PG_PORT", strconv.Itoa(DefaultPGPort))
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PG_PORT: %v", err)
	}
	config.Port = port

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *DatabaseConfig) normalize() error {
	if c.URL != "" {
		return nil
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PG_PORT out of range: %d", c.Port)
	}
	if c.Host == "" {
		return fmt.Errorf("PG_HOST cannot be empty")
	}
	return nil
}

// ConnectionString returns DATABASE_URL or a postgres URL built from the discrete settings.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	return u.String()
}

// Explicit reports whether DATABASE_URL was provided.
func (c *DatabaseConfig) Explicit() bool {
	return c.URL != ""
}

// EnvConfig holds service settings read from the environment.
type EnvConfig struct {
	Environment      string
	SiteURL          string
	OpenRouterAPIKey string
	GeminiAPIKey     string
	OpenAIAPIKey     string
	Database         *DatabaseConfig
}

// NewEnvConfig reads NODE_ENV (default: development), SITE_URL and the model API keys.
func NewEnvConfig() (*EnvConfig, error) {
	database, err := NewDatabaseConfig()
	if err != nil {
		return nil, err
	}

	return &EnvConfig{
		Environment:      getEnvOr("NODE_ENV", DefaultEnvironment),
		SiteURL:          os.Getenv("SITE_URL"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		Database:         database,
	}, nil
}

// IsProduction reports whether NODE_ENV is production.
func (c *EnvConfig) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
