package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration. Redis is optional; without it preferences are
	// kept in memory and sync is not rate limited.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	// APIClientSecret is exchanged for a bearer token at /auth/token.
	APIClientSecret string

	// Health store bridge. An empty URL selects the in-memory store.
	HealthStoreURL   string
	HealthStoreToken string
	SyncWindowDays   int
	SyncConcurrency  int

	// Entry photo storage. An empty bucket disables uploads.
	S3BucketName string
	AWSRegion    string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	// Load configuration based on environment
	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	applyDefaults(cfg)

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environment using ONLY GitHub Actions secrets
func loadCIConfig(cfg *Config) error {
	loadFromEnv(cfg, os.Getenv)

	// GitHub Actions secrets take precedence over the plain variables
	overrideFromEnv(&cfg.DBPassword, "TEST_DB_PASSWORD")
	overrideFromEnv(&cfg.JWTSecret, "TEST_JWT_SECRET")
	overrideFromEnv(&cfg.APIClientSecret, "TEST_API_CLIENT_SECRET")
	overrideFromEnv(&cfg.RedisPassword, "TEST_REDIS_PASSWORD")
	overrideFromEnv(&cfg.HealthStoreToken, "TEST_HEALTH_STORE_TOKEN")

	if cfg.DBDriver != DriverSQLite && cfg.DBPassword == "" {
		return fmt.Errorf("TEST_DB_PASSWORD environment variable is required in CI environment")
	}

	return nil
}

// loadDevConfig loads configuration for development environment. A .env file
// in the working directory is applied first; Docker secrets fill whatever the
// environment leaves empty.
func loadDevConfig(cfg *Config) error {
	if err := godotenv.Load(); err == nil {
		log.Printf("[Config] Loaded .env file")
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .env file: %w", err)
	}

	loadFromEnv(cfg, func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return readSecret(strings.ToLower(key))
	})
	return nil
}

// loadProdConfig loads configuration for production environment using ONLY Docker secrets
func loadProdConfig(cfg *Config) error {
	loadFromEnv(cfg, func(key string) string {
		return readSecret(strings.ToLower(key))
	})
	return nil
}

func loadFromEnv(cfg *Config, get func(string) string) {
	cfg.ServerPort = get("SERVER_PORT")
	cfg.ServerHost = get("SERVER_HOST")
	cfg.DBDriver = strings.ToLower(get("DB_DRIVER"))
	cfg.DBHost = get("DB_HOST")
	cfg.DBPort = get("DB_PORT")
	cfg.DBUser = get("DB_USER")
	cfg.DBPassword = get("DB_PASSWORD")
	cfg.DBName = get("DB_NAME")
	cfg.DBSSLMode = get("DB_SSL_MODE")
	cfg.SQLitePath = get("SQLITE_PATH")
	cfg.RedisHost = get("REDIS_HOST")
	cfg.RedisPort = get("REDIS_PORT")
	cfg.RedisPassword = get("REDIS_PASSWORD")
	cfg.RedisURL = get("REDIS_URL")
	cfg.RedisDB = 0 // This is a constant, not a secret
	cfg.JWTSecret = get("JWT_SECRET")
	cfg.APIClientSecret = get("API_CLIENT_SECRET")
	cfg.HealthStoreURL = get("HEALTH_STORE_URL")
	cfg.HealthStoreToken = get("HEALTH_STORE_TOKEN")
	cfg.SyncWindowDays = atoiOr(get("SYNC_WINDOW_DAYS"), 0)
	cfg.SyncConcurrency = atoiOr(get("SYNC_CONCURRENCY"), 0)
	cfg.S3BucketName = get("S3_BUCKET_NAME")
	cfg.AWSRegion = get("AWS_REGION")
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverPostgres
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = "disable"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "foodtracking.db"
	}
	if cfg.SyncWindowDays <= 0 {
		cfg.SyncWindowDays = 7
	}
	if cfg.SyncConcurrency <= 0 {
		cfg.SyncConcurrency = 4
	}
}

// RedisEnabled reports whether a Redis server was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
