package config

import (
	"fmt"
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"API_BASE_URL"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	API        APIConfig
	Storage    StorageConfig
	Locale     LocaleConfig
	StubServer StubServerConfig
}

// APIConfig describes how to reach the Remote Catalog Service.
type APIConfig struct {
	BaseURL        string        `envconfig:"API_BASE_URL" default:"http://localhost:5000/api"`
	RequestTimeout time.Duration `envconfig:"API_REQUEST_TIMEOUT" default:"10s"`
	PageSize       int           `envconfig:"CATALOG_PAGE_SIZE" default:"12"`
}

// StorageConfig selects where client-local preferences live.
type StorageConfig struct {
	Backend  string `envconfig:"STORAGE_BACKEND" default:"memory"` // memory, postgres, redis
	Profile  string `envconfig:"STORAGE_PROFILE" default:"default"`
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

// RedisConfig holds Redis connection details.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// LocaleConfig holds the fallback language used before a preference exists.
type LocaleConfig struct {
	DefaultLanguage string `envconfig:"DEFAULT_LANGUAGE" default:"en"`
}

// StubServerConfig configures the local reference catalog service.
type StubServerConfig struct {
	Port           string        `envconfig:"STUB_HTTP_PORT" default:"5000"`
	TimeoutRead    time.Duration `envconfig:"STUB_HTTP_TIMEOUT_READ" default:"15s"`
	TimeoutWrite   time.Duration `envconfig:"STUB_HTTP_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle    time.Duration `envconfig:"STUB_HTTP_TIMEOUT_IDLE" default:"60s"`
	JWTSecret      string        `envconfig:"STUB_JWT_SECRET" default:"dev-secret-change-me"`
	TokenTTL       time.Duration `envconfig:"STUB_TOKEN_TTL" default:"24h"`
	ResendCooldown time.Duration `envconfig:"STUB_RESEND_COOLDOWN" default:"60s"`
	Seed           bool          `envconfig:"STUB_SEED" default:"true"`
}

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND: %q (want memory, postgres or redis)", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && (c.Storage.Postgres.User == "" || c.Storage.Postgres.DBName == "") {
		return fmt.Errorf("STORAGE_BACKEND=postgres requires POSTGRES_USER and POSTGRES_DBNAME")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("invalid CATALOG_PAGE_SIZE: %d", c.API.PageSize)
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("invalid API_REQUEST_TIMEOUT: %s", c.API.RequestTimeout)
	}
	return nil
}
