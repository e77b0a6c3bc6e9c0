package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Port            string        `json:"port"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	CORSOrigins     []string      `json:"cors_origins"`

	// База данных обучения
	DatabasePath    string        `json:"database_path"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	BusyTimeout     time.Duration `json:"busy_timeout"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Справочники (стоп-слова, категории, форматы). Пустой путь означает встроенные.
	TablesPath string `json:"tables_path"`

	// Импорт
	MaxUploadMB        int `json:"max_upload_mb"`
	ImportRateLimitMin int `json:"import_rate_limit_per_min"`

	// Рекомендации
	TrendingDays int `json:"trending_days"`
}

// LoadConfig загружает конфигурацию из переменных окружения и проверяет её
func LoadConfig() (*Config, error) {
	config := &Config{
		Port:            getEnv("SERVER_PORT", "9999"),
		ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DatabasePath:    getEnv("TRAINING_DATABASE_PATH", "training.db"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		BusyTimeout:     getEnvDuration("DB_BUSY_TIMEOUT", 5*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),

		TablesPath: getEnv("TRAINING_TABLES_PATH", ""),

		MaxUploadMB:        getEnvInt("IMPORT_MAX_UPLOAD_MB", 20),
		ImportRateLimitMin: getEnvInt("IMPORT_RATE_LIMIT_PER_MIN", 30),

		TrendingDays: getEnvInt("SUGGESTION_TRENDING_DAYS", 14),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// MaxUploadBytes предельный размер загружаемого файла в байтах
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// TrendingWindow окно трендовых категорий
func (c *Config) TrendingWindow() time.Duration {
	return time.Duration(c.TrendingDays) * 24 * time.Hour
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList получает список через запятую
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
