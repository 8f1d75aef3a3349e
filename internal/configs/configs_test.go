package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVars = []string{
	"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "DB_DRIVER", "DATABASE_URL",
	"S3_BUCKET_NAME", "S3_ENDPOINT", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_PUBLIC_BASE_URL",
	"FORM_SUBMIT_TIMEOUT",
}

// setEnv clears every variable LoadConfig reads, then applies env.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()

	for _, name := range allVars {
		t.Setenv(name, env[name])
	}
}

func TestLoadConfig_DevelopmentDefaults(t *testing.T) {
	setEnv(t, nil)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.False(t, cfg.PhotosEnabled())
	assert.Equal(t, DefaultFormSubmitTimeout, cfg.FormSubmitTimeout)
}

func TestLoadConfig_Production(t *testing.T) {
	setEnv(t, map[string]string{
		"ENVIRONMENT":          "production",
		"PORT":                 "9090",
		"ALLOWED_ORIGINS":      " https://phonebook.example.com, ,https://admin.example.com",
		"JWT_SECRET":           "s3cr3t",
		"DATABASE_URL":         "postgres://u:p@db:5432/phonebook",
		"S3_BUCKET_NAME":       "photos",
		"S3_ENDPOINT":          "https://s3.example.com",
		"S3_ACCESS_KEY_ID":     "AK",
		"S3_SECRET_ACCESS_KEY": "SK",
		"S3_PUBLIC_BASE_URL":   "https://cdn.example.com",
		"FORM_SUBMIT_TIMEOUT":  "5s",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://phonebook.example.com", "https://admin.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.True(t, cfg.PhotosEnabled())
	assert.Equal(t, "https://cdn.example.com", cfg.S3PublicBaseURL)
	assert.Equal(t, 5*time.Second, cfg.FormSubmitTimeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "eighty"}},
		{"privileged port", map[string]string{"PORT": "80"}},
		{"secret required outside development", map[string]string{"ENVIRONMENT": "production", "DATABASE_URL": "postgres://db"}},
		{"dsn required outside development", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "x"}},
		{"postgres needs dsn", map[string]string{"DB_DRIVER": "postgres"}},
		{"unknown driver", map[string]string{"DB_DRIVER": "sqlite"}},
		{"partial s3", map[string]string{"S3_BUCKET_NAME": "photos"}},
		{"bad timeout", map[string]string{"FORM_SUBMIT_TIMEOUT": "soon"}},
		{"negative timeout", map[string]string{"FORM_SUBMIT_TIMEOUT": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MemoryDriverInProduction(t *testing.T) {
	setEnv(t, map[string]string{
		"ENVIRONMENT": "staging",
		"JWT_SECRET":  "x",
		"DB_DRIVER":   "MEMORY",
	})

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
}
