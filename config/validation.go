package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is usable in the current
// environment. Development and test get permissive defaults; production
// must supply every sensitive value explicitly.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.StorageBackend != StorageDisk && cfg.StorageBackend != StorageS3 {
		errors = append(errors, fmt.Sprintf("STORAGE_BACKEND must be %q or %q, got %q", StorageDisk, StorageS3, cfg.StorageBackend))
	}
	if cfg.StorageBackend == StorageS3 && cfg.S3Bucket == "" {
		errors = append(errors, "S3_BUCKET_NAME is required when STORAGE_BACKEND is s3")
	}
	if cfg.StorageBackend == StorageDisk && cfg.UploadDir == "" {
		errors = append(errors, "UPLOAD_DIR is required when STORAGE_BACKEND is disk")
	}

	if IsProduction() {
		if cfg.JWTSecret == "" {
			errors = append(errors, "jwt_secret secret or JWT_SECRET is required in production")
		}
		if cfg.DBPassword == "" {
			errors = append(errors, "db_password secret or DB_PASSWORD is required in production")
		}
		if cfg.RedisHost == "" {
			errors = append(errors, "REDIS_HOST is required in production")
		}
	} else if cfg.JWTSecret == "" {
		// Tests and local development still need a signing key
		cfg.JWTSecret = "dev-secret"
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}

	return nil
}
