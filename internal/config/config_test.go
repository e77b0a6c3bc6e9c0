package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "9999",
		ShutdownTimeout:    15 * time.Second,
		DatabasePath:       "training.db",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetime:    5 * time.Minute,
		BusyTimeout:        5 * time.Second,
		LogLevel:           "INFO",
		MaxUploadMB:        20,
		ImportRateLimitMin: 30,
		TrendingDays:       14,
	}
}

func TestConfigLogLevelValidation(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		wantError bool
	}{
		{"Valid DEBUG", "DEBUG", false},
		{"Valid INFO", "INFO", false},
		{"Valid WARN", "WARN", false},
		{"Valid ERROR", "ERROR", false},
		{"Valid lowercase debug", "debug", false},
		{"Invalid value", "INVALID", true},
		{"Empty string", "", false},
		{"Mixed case", "DeBuG", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.logLevel

			err := cfg.Validate()
			assert.Equal(t, tt.wantError, err != nil, "Validate() error = %v", err)
		})
	}
}

// TestConfigValidation проверяет границы параметров
func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad port", func(c *Config) { c.Port = "http" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"no database", func(c *Config) { c.DatabasePath = "" }},
		{"idle above open", func(c *Config) { c.MaxIdleConns = 20 }},
		{"zero upload", func(c *Config) { c.MaxUploadMB = 0 }},
		{"negative rate", func(c *Config) { c.ImportRateLimitMin = -1 }},
		{"zero trending", func(c *Config) { c.TrendingDays = 0 }},
		{"missing tables", func(c *Config) { c.TablesPath = filepath.Join(t.TempDir(), "missing.yaml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// TestLoadConfigFromEnv проверяет чтение переменных окружения
func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("TRAINING_DATABASE_PATH", "qc.db")
	t.Setenv("IMPORT_MAX_UPLOAD_MB", "5")
	t.Setenv("SUGGESTION_TRENDING_DAYS", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://qc.example.com, https://admin.example.com")
	t.Setenv("DB_CONN_MAX_LIFETIME", "not-a-duration")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "qc.db", cfg.DatabasePath)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 7*24*time.Hour, cfg.TrendingWindow())
	assert.Equal(t, []string{"https://qc.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestConfigDefaultsAreValid(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.LogLevel)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}
