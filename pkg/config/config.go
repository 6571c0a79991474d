package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	Report        ReportConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
	MaxUploadMB        int
}

type StoreConfig struct {
	Type string // memory, file or sqlite
	Path string
}

type ReportConfig struct {
	HeaderScanRows    int
	ShowUndated       bool
	RetentionMonths   int // 0 disables the retention job
	RetentionSchedule string
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	LogLevel       slog.Level
}

// Load reads configuration from environment variables, after loading a
// .env file from the working directory when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 40),
			AllowedOrigins:     getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			MaxUploadMB:        getEnvAsInt("MAX_UPLOAD_MB", 20),
		},
		Store: StoreConfig{
			Type: getEnv("STORE_TYPE", "file"),
			Path: getEnv("STORE_PATH", "./data"),
		},
		Report: ReportConfig{
			HeaderScanRows:    getEnvAsInt("HEADER_SCAN_ROWS", 20),
			ShowUndated:       getEnvAsBool("REPORT_SHOW_UNDATED", false),
			RetentionMonths:   getEnvAsInt("REPORT_RETENTION_MONTHS", 0),
			RetentionSchedule: getEnv("REPORT_RETENTION_SCHEDULE", "0 3 * * *"),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
			LogLevel:       getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d: must be between 1 and 65535", c.Server.Port)
	}
	switch c.Store.Type {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid STORE_TYPE %q: must be memory, file or sqlite", c.Store.Type)
	}
	if c.Report.HeaderScanRows < 1 {
		return fmt.Errorf("invalid HEADER_SCAN_ROWS %d: must be positive", c.Report.HeaderScanRows)
	}
	if c.Report.RetentionMonths < 0 {
		return fmt.Errorf("invalid REPORT_RETENTION_MONTHS %d: must not be negative", c.Report.RetentionMonths)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("invalid MAX_UPLOAD_MB %d: must be positive", c.Server.MaxUploadMB)
	}
	return nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MaxUploadBytes returns the upload size limit in bytes
func (c *ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err == nil {
		return level
	}
	return defaultValue
}
