// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage providers.
const (
	ProviderLocal = "local"
	ProviderS3    = "s3"
	ProviderGCS   = "gcs"
	ProviderMinio = "minio"
)

// TodayLayout is the format of SWEEP_TODAY and the --today flag.
const TodayLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	// Backup location
	StorageProvider  string // "local", "s3", "gcs" or "minio"
	BackupDir        string
	BackupFilePrefix string // Empty sweeps every name
	SuffixMarker     string

	// S3 configuration
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3Region           string
	S3Endpoint         string // Optional custom endpoint
	S3Prefix           string

	// GCS configuration
	GCSBucket                string
	GoogleProjectID          string
	GoogleServiceAccountJSON string
	GCSPrefix                string

	// MinIO configuration
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
	MinioPrefix    string

	// Sweep options
	DryRun bool
	// TodayOverride pins the sweep date (YYYY-MM-DD); empty means wall clock.
	TodayOverride string

	// Logging and metrics
	LogLevel    string
	LogFormat   string
	MetricsPort int // 0 disables the HTTP server
	// MetricsLinger is how long metrics stay up after the sweep.
	MetricsLinger time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		StorageProvider:  getEnv("STORAGE_PROVIDER", ProviderLocal),
		BackupDir:        getEnv("BACKUP_DIR", "/backups"),
		BackupFilePrefix: os.Getenv("BACKUP_FILE_PREFIX"),
		SuffixMarker:     getEnv("BACKUP_SUFFIX", ".sql.gz"),

		// S3
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		S3Bucket:           os.Getenv("S3_BUCKET"),
		S3Region:           os.Getenv("S3_REGION"),
		S3Endpoint:         os.Getenv("S3_ENDPOINT"),
		S3Prefix:           os.Getenv("S3_PREFIX"),

		// GCS
		GCSBucket:                os.Getenv("GCS_BUCKET"),
		GoogleProjectID:          os.Getenv("GOOGLE_PROJECT_ID"),
		GoogleServiceAccountJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GCSPrefix:                os.Getenv("GCS_PREFIX"),

		// MinIO
		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    os.Getenv("MINIO_BUCKET"),
		MinioRegion:    os.Getenv("MINIO_REGION"),
		MinioPrefix:    os.Getenv("MINIO_PREFIX"),

		TodayOverride: os.Getenv("SWEEP_TODAY"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	cfg.MinioUseSSL = getEnvBool("MINIO_USE_SSL", true)
	cfg.DryRun = getEnvBool("DRY_RUN", false)
	cfg.MetricsPort = getEnvInt("METRICS_PORT", 0)
	cfg.MetricsLinger = time.Duration(getEnvInt("METRICS_LINGER_SECONDS", 30)) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.StorageProvider {
	case ProviderLocal:
		if c.BackupDir == "" {
			return fmt.Errorf("BACKUP_DIR is required for local storage")
		}
	case ProviderS3:
		if err := c.validateS3(); err != nil {
			return err
		}
	case ProviderGCS:
		if err := c.validateGCS(); err != nil {
			return err
		}
	case ProviderMinio:
		if err := c.validateMinio(); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("STORAGE_PROVIDER is required")
	default:
		return fmt.Errorf("invalid STORAGE_PROVIDER: %s (must be 'local', 's3', 'gcs' or 'minio')", c.StorageProvider)
	}

	if c.SuffixMarker == "" {
		return fmt.Errorf("BACKUP_SUFFIX must not be empty")
	}

	if c.TodayOverride != "" {
		if _, err := time.Parse(TodayLayout, c.TodayOverride); err != nil {
			return fmt.Errorf("SWEEP_TODAY must be YYYY-MM-DD: %w", err)
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s (must be 'text' or 'json')", c.LogFormat)
	}

	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT must be between 0 and 65535")
	}

	if c.MetricsLinger < 0 {
		return fmt.Errorf("METRICS_LINGER_SECONDS must not be negative")
	}

	return nil
}

func (c *Config) validateS3() error {
	if c.AWSAccessKeyID == "" {
		return fmt.Errorf("AWS_ACCESS_KEY_ID is required for S3 storage")
	}
	if c.AWSSecretAccessKey == "" {
		return fmt.Errorf("AWS_SECRET_ACCESS_KEY is required for S3 storage")
	}
	if c.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required for S3 storage")
	}
	if c.S3Region == "" && c.S3Endpoint == "" {
		return fmt.Errorf("S3_REGION is required for S3 storage (unless S3_ENDPOINT is set)")
	}
	return nil
}

func (c *Config) validateGCS() error {
	if c.GCSBucket == "" {
		return fmt.Errorf("GCS_BUCKET is required for GCS storage")
	}
	if c.GoogleProjectID == "" {
		return fmt.Errorf("GOOGLE_PROJECT_ID is required for GCS storage")
	}
	if c.GoogleServiceAccountJSON == "" {
		return fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_JSON is required for GCS storage")
	}
	return nil
}

func (c *Config) validateMinio() error {
	if c.MinioEndpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required for MinIO storage")
	}
	if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for MinIO storage")
	}
	if c.MinioBucket == "" {
		return fmt.Errorf("MINIO_BUCKET is required for MinIO storage")
	}
	return nil
}

// Location returns a human-readable description of where backups live.
func (c *Config) Location() string {
	switch c.StorageProvider {
	case ProviderS3:
		return "s3://" + strings.TrimSuffix(c.S3Bucket+"/"+c.S3Prefix, "/")
	case ProviderGCS:
		return "gs://" + strings.TrimSuffix(c.GCSBucket+"/"+c.GCSPrefix, "/")
	case ProviderMinio:
		return c.MinioEndpoint + "/" + strings.TrimSuffix(c.MinioBucket+"/"+c.MinioPrefix, "/")
	default:
		return c.BackupDir
	}
}

// Now returns the instant the sweep treats as "now".
// With TodayOverride set it is the end of that day in now's location, so
// every backup stamped on that date counts as already written.
func (c *Config) Now(now time.Time) time.Time {
	if c.TodayOverride == "" {
		return now
	}
	day, err := time.ParseInLocation(TodayLayout, c.TodayOverride, now.Location())
	if err != nil {
		return now
	}
	return day.AddDate(0, 0, 1).Add(-time.Second)
}

// getEnv gets a string from environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer from environment variable with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean from environment variable with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
