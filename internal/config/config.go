package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Catalog sources.
const (
	CatalogSourceAPI  = "api"
	CatalogSourceFile = "file"
	CatalogSourceS3   = "s3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Upstream UpstreamConfig
	Catalog  CatalogConfig
	Watcher  WatcherConfig
	Draft    DraftConfig
	S3       S3Config
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// UpstreamConfig holds the dashboard REST API connection settings.
type UpstreamConfig struct {
	BaseURL              string
	Token                string
	TimeoutSeconds       int
	SubmitTimeoutSeconds int
}

// CatalogConfig selects where the product catalog snapshot comes from.
type CatalogConfig struct {
	Source         string // "api", "file" or "s3"
	File           string
	RefreshSeconds int // 0 loads once
}

// WatcherConfig holds the live order watcher settings.
type WatcherConfig struct {
	Enabled            bool
	IntervalSeconds    int
	PollTimeoutSeconds int
	AdminRole          string
}

// DraftConfig holds order draft settings.
type DraftConfig struct {
	TTLMinutes int
}

// S3Config holds AWS S3 configuration for the catalog snapshot.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Key     string // Object key of the gzipped catalog snapshot
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "supplydesk"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 2),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Upstream: UpstreamConfig{
			BaseURL:              getEnv("UPSTREAM_BASE_URL", ""),
			Token:                getEnv("UPSTREAM_TOKEN", ""),
			TimeoutSeconds:       getEnvAsInt("UPSTREAM_TIMEOUT_SECONDS", 10),
			SubmitTimeoutSeconds: getEnvAsInt("UPSTREAM_SUBMIT_TIMEOUT_SECONDS", 30),
		},
		Catalog: CatalogConfig{
			Source:         getEnv("CATALOG_SOURCE", CatalogSourceAPI),
			File:           getEnv("CATALOG_FILE", "data/catalog.jsonl.gz"),
			RefreshSeconds: getEnvAsInt("CATALOG_REFRESH_SECONDS", 600),
		},
		Watcher: WatcherConfig{
			Enabled:            getEnvAsBool("WATCH_ENABLED", true),
			IntervalSeconds:    getEnvAsInt("WATCH_INTERVAL_SECONDS", 5),
			PollTimeoutSeconds: getEnvAsInt("WATCH_POLL_TIMEOUT_SECONDS", 10),
			AdminRole:          getEnv("WATCH_ADMIN_ROLE", "Admin"),
		},
		Draft: DraftConfig{
			TTLMinutes: getEnvAsInt("DRAFT_TTL_MINUTES", 720),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Bucket:  getEnv("S3_BUCKET", ""),
			Region:  getEnv("S3_REGION", "us-east-1"),
			Key:     getEnv("S3_KEY", "catalog/catalog.jsonl.gz"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if err := c.Upstream.validate(); err != nil {
		return err
	}

	if c.Watcher.Enabled {
		if c.Watcher.IntervalSeconds < 1 {
			return fmt.Errorf("watch interval must be at least 1 second")
		}
		if c.Watcher.AdminRole == "" {
			return fmt.Errorf("watch admin role is required when the watcher is enabled")
		}
	}

	if c.Draft.TTLMinutes < 1 {
		return fmt.Errorf("draft TTL must be at least 1 minute")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
		if c.S3.Key == "" {
			return fmt.Errorf("S3 key is required when S3 is enabled")
		}
	}

	if c.Catalog.RefreshSeconds < 0 {
		return fmt.Errorf("catalog refresh interval cannot be negative")
	}

	switch c.Catalog.Source {
	case CatalogSourceAPI:
	case CatalogSourceFile:
		if c.Catalog.File == "" {
			return fmt.Errorf("catalog file is required when the catalog source is file")
		}
	case CatalogSourceS3:
		if !c.S3.Enabled {
			return fmt.Errorf("S3 must be enabled when the catalog source is s3")
		}
	default:
		return fmt.Errorf("invalid catalog source: %s (must be api, file, or s3)", c.Catalog.Source)
	}

	return nil
}

func (c *UpstreamConfig) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("upstream base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid upstream base URL: %s", c.BaseURL)
	}

	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("upstream timeout must be at least 1 second")
	}

	if c.SubmitTimeoutSeconds < 1 {
		return fmt.Errorf("upstream submit timeout must be at least 1 second")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Timeout returns the per-request timeout.
func (c *UpstreamConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SubmitTimeout returns the deadline for an order create or update.
func (c *UpstreamConfig) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// RefreshInterval returns how often the catalog is reloaded; 0 disables reloads.
func (c *CatalogConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshSeconds) * time.Second
}

// Interval returns the poll interval.
func (c *WatcherConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// PollTimeout returns the deadline of a single poll.
func (c *WatcherConfig) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

// TTL returns how long an untouched draft is kept.
func (c *DraftConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
