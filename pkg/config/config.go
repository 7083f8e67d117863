package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Spool         SpoolConfig
	Engine        EngineConfig
	Observability ObservabilityConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	RateLimitPerSecond int
	RateLimitBurst     int
	AllowedOrigins     []string
	MaxUploadBytes     int64
}

type SpoolConfig struct {
	Path   string
	MaxAge time.Duration
}

type EngineConfig struct {
	// DefaultCurrency is the ISO code stamped on emitted rows, e.g. "ZAR".
	DefaultCurrency string
	// DateFormat is the default output date pattern, YYYY/MM/DD tokens.
	DateFormat string
	// KeepRejectedWarnings retains warnings from adapters whose rows the
	// chain discarded.
	KeepRejectedWarnings bool
}

type ObservabilityConfig struct {
	MetricsEnabled bool
}

// Load reads configuration from a .env file when present, then from
// environment variables. Real environment variables win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:               getEnv("SERVER_HOST", "localhost"),
			Port:               getEnvAsInt("SERVER_PORT", 8080),
			RateLimitPerSecond: getEnvAsInt("SERVER_RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:     getEnvAsInt("SERVER_RATE_LIMIT_BURST", 20),
			AllowedOrigins:     getEnvAsSlice("SERVER_ALLOWED_ORIGINS", []string{"*"}),
			MaxUploadBytes:     int64(getEnvAsInt("SERVER_MAX_UPLOAD_MB", 20)) << 20,
		},
		Spool: SpoolConfig{
			Path:   getEnv("SPOOL_PATH", "./spool"),
			MaxAge: getEnvAsDuration("SPOOL_MAX_AGE", time.Hour),
		},
		Engine: EngineConfig{
			DefaultCurrency:      getEnv("ENGINE_DEFAULT_CURRENCY", "ZAR"),
			DateFormat:           getEnv("ENGINE_DATE_FORMAT", "YYYY-MM-DD"),
			KeepRejectedWarnings: getEnvAsBool("ENGINE_KEEP_REJECTED_WARNINGS", true),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	if money.GetCurrency(cfg.Engine.DefaultCurrency) == nil {
		return nil, fmt.Errorf("ENGINE_DEFAULT_CURRENCY %q is not a known ISO currency code", cfg.Engine.DefaultCurrency)
	}

	return cfg, nil
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
