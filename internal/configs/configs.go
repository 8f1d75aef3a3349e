/*
Package configs is responsible for loading and parsing the application's configuration settings.

It configures the server by reading operating system environment variables: the running
environment, port, CORS allowed origins, the identity token secret, the contact store
(Postgres or in-memory), the optional S3 bucket for profile photos, and the timeout of
remote calls made by live forms.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// EnvDevelopment is the default environment.
	EnvDevelopment = "development"

	// DriverPostgres stores users and contacts in Postgres.
	DriverPostgres = "postgres"

	// DriverMemory keeps users and contacts in process memory.
	DriverMemory = "memory"

	// DefaultFormSubmitTimeout bounds a live form's remote call when FORM_SUBMIT_TIMEOUT is unset.
	DefaultFormSubmitTimeout = 20 * time.Second
)

// AppConfig contains all configuration parameters required for the application to run.
// All configuration values are loaded from environment variables.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string

	// Database Settings
	DBDriver    string
	DatabaseDSN string

	// S3 Storage Settings. Either all of them are set or photo uploads are disabled.
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicBaseURL   string

	// Live form settings
	FormSubmitTimeout time.Duration
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// PhotosEnabled reports whether an S3 bucket is configured for profile photos.
func (c *AppConfig) PhotosEnabled() bool {
	return c.S3BucketName != ""
}

// LoadConfig reads and parses the application configuration from environment variables.
// It provides default values for each configuration item and performs necessary type conversions and validation.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = EnvDevelopment
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		cfg.JWTSecret = "your_default_insecure_secret_key_change_me"
	}

	// --- Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")
	cfg.DBDriver = strings.ToLower(os.Getenv("DB_DRIVER"))
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverPostgres
		if cfg.DatabaseDSN == "" && cfg.IsDevelopment() {
			cfg.DBDriver = DriverMemory
		}
	}

	switch cfg.DBDriver {
	case DriverMemory:
	case DriverPostgres:
		if cfg.DatabaseDSN == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the %s driver", DriverPostgres)
		}
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want %q or %q", cfg.DBDriver, DriverPostgres, DriverMemory)
	}

	// --- S3 Storage Settings ---
	s3Vars := []struct {
		name string
		dst  *string
	}{
		{"S3_BUCKET_NAME", &cfg.S3BucketName},
		{"S3_ENDPOINT", &cfg.S3Endpoint},
		{"S3_ACCESS_KEY_ID", &cfg.S3AccessKeyID},
		{"S3_SECRET_ACCESS_KEY", &cfg.S3SecretAccessKey},
		{"S3_PUBLIC_BASE_URL", &cfg.S3PublicBaseURL},
	}

	var missing []string
	for _, v := range s3Vars {
		*v.dst = os.Getenv(v.name)
		if *v.dst == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 && len(missing) < len(s3Vars) {
		return nil, fmt.Errorf("incomplete S3 storage settings, missing %s", strings.Join(missing, ", "))
	}

	// --- Live form settings ---
	cfg.FormSubmitTimeout = DefaultFormSubmitTimeout
	if raw := os.Getenv("FORM_SUBMIT_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FORM_SUBMIT_TIMEOUT environment variable: %w", err)
		}
		if timeout < 0 {
			return nil, fmt.Errorf("FORM_SUBMIT_TIMEOUT must not be negative, got %s", timeout)
		}
		cfg.FormSubmitTimeout = timeout
	}

	return cfg, nil
}
