// Package config handles application configuration and environment loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the deployment configuration shared by the Lambda functions,
// the CLI and the invoke server.
type Config struct {
	// DDLBucket is the default bucket extracted documents are written to.
	DDLBucket string
	// DDLStoreScheme selects the backend for new documents: s3, gs or az.
	DDLStoreScheme string

	AWSRegion string

	// Static S3-compatible credentials are optional; nil means the default
	// AWS credential chain (the Lambda execution role).
	S3Endpoint *string
	S3KeyID    *string
	S3Secret   *string

	GCSCredentialsFile string // optional; empty uses application default credentials
	AzureAccount       string
	AzureKey           string

	WarehouseDialect string // redshift (default), postgres or duckdb
	WarehouseSSLMode string // default "require"
	DuckDBDir        string // directory holding {database}.duckdb files

	LogLevel       string  // debug, info, warn, error (default "info")
	ListenAddr     string  // invoke server address (default ":8080")
	RateLimitRPS   float64 // sustained requests per second (default 10)
	RateLimitBurst int     // burst capacity (default 20)
	ScheduleFile   string  // optional YAML file of scheduled extractions

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// HasStaticS3Credentials reports whether both static S3 keys are set.
func (c *Config) HasStaticS3Credentials() bool {
	return c.S3KeyID != nil && c.S3Secret != nil
}

// HasAzure reports whether an Azure storage account is configured.
func (c *Config) HasAzure() bool {
	return c.AzureAccount != "" && c.AzureKey != ""
}

// LoadFromEnv loads configuration from environment variables. Nothing is
// required at load time; DDL_BUCKET is checked when an extractor is built.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DDLBucket:          os.Getenv("DDL_BUCKET"),
		DDLStoreScheme:     strings.ToLower(os.Getenv("DDL_STORE_SCHEME")),
		AWSRegion:          os.Getenv("AWS_REGION"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		AzureAccount:       os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureKey:           os.Getenv("AZURE_STORAGE_KEY"),
		WarehouseDialect:   strings.ToLower(os.Getenv("WAREHOUSE_DIALECT")),
		WarehouseSSLMode:   os.Getenv("WAREHOUSE_SSLMODE"),
		DuckDBDir:          os.Getenv("DUCKDB_DIR"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		ListenAddr:         os.Getenv("LISTEN_ADDR"),
		ScheduleFile:       os.Getenv("SCHEDULE_FILE"),
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("RATE_LIMIT_RPS %q is not a non-negative number, using default", v))
		} else {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("RATE_LIMIT_BURST %q is not a non-negative integer, using default", v))
		} else {
			cfg.RateLimitBurst = n
		}
	}

	// S3-compatible overrides are optional, only set if present.
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.S3Endpoint = &v
	}
	if v := os.Getenv("S3_KEY_ID"); v != "" {
		cfg.S3KeyID = &v
	}
	if v := os.Getenv("S3_SECRET"); v != "" {
		cfg.S3Secret = &v
	}
	if (cfg.S3KeyID == nil) != (cfg.S3Secret == nil) {
		return nil, fmt.Errorf("both S3_KEY_ID and S3_SECRET must be set together")
	}
	if (cfg.AzureAccount == "") != (cfg.AzureKey == "") {
		return nil, fmt.Errorf("both AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set together")
	}

	// Defaults
	if cfg.DDLStoreScheme == "" {
		cfg.DDLStoreScheme = "s3"
	}
	switch cfg.DDLStoreScheme {
	case "s3", "gs":
	case "az":
		if !cfg.HasAzure() {
			return nil, fmt.Errorf("DDL_STORE_SCHEME=az requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
		}
	default:
		return nil, fmt.Errorf("unsupported DDL_STORE_SCHEME %q (want s3, gs or az)", cfg.DDLStoreScheme)
	}
	if cfg.WarehouseDialect == "" {
		cfg.WarehouseDialect = "redshift"
	}
	switch cfg.WarehouseDialect {
	case "redshift", "postgres", "duckdb":
	default:
		return nil, fmt.Errorf("unsupported WAREHOUSE_DIALECT %q (want redshift, postgres or duckdb)", cfg.WarehouseDialect)
	}
	if cfg.WarehouseSSLMode == "" {
		cfg.WarehouseSSLMode = "require"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 10
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = 20
	}
	if cfg.DDLBucket == "" {
		cfg.Warnings = append(cfg.Warnings, "DDL_BUCKET not set, extraction is disabled")
	}
	if cfg.S3Endpoint != nil && !cfg.HasStaticS3Credentials() {
		cfg.Warnings = append(cfg.Warnings, "S3_ENDPOINT set without S3_KEY_ID/S3_SECRET, using the default AWS credential chain")
	}

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from a .env file. Variables already in
// the environment take precedence and a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
