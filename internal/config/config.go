package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Minio  MinioConfig
	Auth   AuthConfig
	AI     AIConfig
	Jobs   JobsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// RedisConfig holds connection settings for the snapshot store and caches.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinioConfig holds object storage settings for proof images.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds token signing and login settings.
type AuthConfig struct {
	JWTSecret  string
	AccessCode string
}

// AIConfig holds settings for the text-generation provider. The key is
// optional; without it insight requests serve the fallback report.
type AIConfig struct {
	AnthropicKey string
}

// JobsConfig holds background scheduler settings.
type JobsConfig struct {
	Enabled         bool
	AlertInterval   time.Duration
	InsightInterval time.Duration
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Redis: RedisConfig{
			Addr:     getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		Minio: MinioConfig{
			Endpoint:  getenvWithDefault("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getenvWithDefault("MINIO_PROOF_BUCKET", "loan-proofs"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			AccessCode: os.Getenv("STORE_ACCESS_CODE"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		Jobs: JobsConfig{
			Enabled:         getenvWithDefault("JOBS_ENABLED", "true") == "true",
			AlertInterval:   getenvDuration("ALERT_INTERVAL", 30*time.Minute),
			InsightInterval: getenvDuration("INSIGHT_REFRESH_INTERVAL", 6*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}
	if c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR must be provided")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if c.Auth.AccessCode == "" {
		return errors.New("STORE_ACCESS_CODE must be provided")
	}

	switch {
	case c.Minio.Endpoint == "":
		return errors.New("MINIO_ENDPOINT must be provided")
	case c.Minio.AccessKey == "":
		return errors.New("MINIO_ACCESS_KEY must be provided")
	case c.Minio.SecretKey == "":
		return errors.New("MINIO_SECRET_KEY must be provided")
	case c.Minio.Bucket == "":
		return errors.New("MINIO_PROOF_BUCKET must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
