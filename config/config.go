package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Storage backends for recipe image attachments.
const (
	StorageDisk = "disk"
	StorageS3   = "s3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (rate limiting); optional outside production
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Image storage configuration
	StorageBackend string // "disk" or "s3"
	UploadDir      string // root directory for the disk backend
	S3Bucket       string
	AWSRegion      string
}

// LoadConfig builds a Config from environment variables, falling back to
// Docker secrets for sensitive values and to development defaults where a
// value is optional.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerHost: getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnvOrSecret("DB_USER", "db_user", "postgres"),
		DBPassword: getEnvOrSecret("DB_PASSWORD", "db_password", ""),
		DBName:     getEnv("DB_NAME", "recipeapi"),
		DBSSLMode:  getEnv("DB_SSL_MODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrSecret("REDIS_PASSWORD", "redis_password", ""),

		JWTSecret: getEnvOrSecret("JWT_SECRET", "jwt_secret", ""),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageDisk),
		UploadDir:      getEnv("UPLOAD_DIR", "vol/web"),
		S3Bucket:       getEnv("S3_BUCKET_NAME", ""),
		AWSRegion:      getEnv("AWS_REGION", ""),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", v, err)
		}
		cfg.RedisDB = n
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// RedisAddr returns the host:port address of the Redis server, or an empty
// string when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvOrSecret prefers an environment variable, then a Docker secret
// file, then the fallback.
func getEnvOrSecret(envKey, secretName, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
