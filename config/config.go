package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost  string   `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort  string   `env:"SERVER_PORT" envDefault:"8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Database configuration
	DBDriver    string `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST" envDefault:"localhost"`
	DBPort      string `env:"DB_PORT" envDefault:"5432"`
	DBUser      string `env:"DB_USER" envDefault:"postgres"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBName      string `env:"DB_NAME" envDefault:"foodgram"`
	DBSSLMode   string `env:"DB_SSL_MODE" envDefault:"disable"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"foodgram.db"`

	// Redis is optional; an empty URL disables rate limiting.
	RedisURL      string `env:"REDIS_URL"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// JWT configuration
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	PageSize    int `env:"PAGE_SIZE" envDefault:"6"`
	MaxPageSize int `env:"MAX_PAGE_SIZE" envDefault:"100"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Recipe images
	ImageStorage string `env:"IMAGE_STORAGE" envDefault:"local"`
	MediaRoot    string `env:"MEDIA_ROOT" envDefault:"media"`
	MediaURL     string `env:"MEDIA_URL" envDefault:"/media/"`
	S3           S3Settings

	RecipeCreateLimit int `env:"RECIPE_CREATE_LIMIT" envDefault:"20"`
	RecipeModifyLimit int `env:"RECIPE_MODIFY_LIMIT" envDefault:"30"`

	// TrueType font for the shopping list PDF. Empty uses the built-in Helvetica.
	PDFFontPath string `env:"PDF_FONT_PATH"`
}

// S3Settings configures the S3 (or MinIO) bucket holding recipe images.
type S3Settings struct {
	Bucket          string `env:"S3_BUCKET_NAME" envDefault:"foodgram-media"`
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	Endpoint        string `env:"S3_ENDPOINT"`
	AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	PublicURL       string `env:"S3_PUBLIC_URL"`
}

// LoadConfig reads .env (when present), the process environment and Docker secrets, in that order.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	applySecrets(cfg)

	if err := ValidateConfig(cfg, GetEnvironment()); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applySecrets overrides sensitive values with Docker secrets when they exist.
func applySecrets(cfg *Config) {
	secrets := map[string]*string{
		"db_password":          &cfg.DBPassword,
		"jwt_secret":           &cfg.JWTSecret,
		"redis_password":       &cfg.RedisPassword,
		"s3_secret_access_key": &cfg.S3.SecretAccessKey,
	}
	for name, dst := range secrets {
		if value := readSecret(name); value != "" {
			*dst = value
		}
	}
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

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}
