package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	Port    string
	GinMode string

	DatabaseDriver string
	DatabasePath   string
	DatabaseURL    string
	LogQueries     bool

	PexelsAPIKey       string
	PexelsBaseURL      string
	ImageSearchTimeout time.Duration

	// Response Cache
	CacheEnabled bool
	CacheTTL     time.Duration

	MetricsPort  string
	OTLPEndpoint string
	LokiURL      string

	CORSAllowedOrigins []string

	// TUI
	APIURL string

	Environment string
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:               "8080",
		DatabaseDriver:     DriverSQLite,
		DatabasePath:       "todos.db",
		PexelsBaseURL:      "https://api.pexels.com",
		ImageSearchTimeout: 10 * time.Second,
		CacheEnabled:       true,
		CacheTTL:           3 * time.Second,
		MetricsPort:        "9091",
		CORSAllowedOrigins: []string{"*"},
		APIURL:             "http://localhost:8080",
		Environment:        "development",
	}
}

// Load overlays the process environment on the defaults. Malformed values
// keep the default and are logged.
func Load() *AppConfig {
	return LoadFrom(os.LookupEnv)
}

func LoadFrom(lookup func(string) (string, bool)) *AppConfig {
	cfg := GetDefaultConfig()

	env := envReader{lookup: lookup}

	cfg.Port = env.String("PORT", cfg.Port)
	cfg.GinMode = env.String("GIN_MODE", cfg.GinMode)

	cfg.DatabaseDriver = strings.ToLower(env.String("DATABASE_DRIVER", cfg.DatabaseDriver))
	cfg.DatabasePath = env.String("DATABASE_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = env.String("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogQueries = env.Bool("DB_LOG_QUERIES", cfg.LogQueries)

	cfg.PexelsAPIKey = env.String("PEXELS_API_KEY", cfg.PexelsAPIKey)
	cfg.PexelsBaseURL = env.String("PEXELS_BASE_URL", cfg.PexelsBaseURL)
	cfg.ImageSearchTimeout = env.Duration("IMAGE_SEARCH_TIMEOUT", cfg.ImageSearchTimeout)

	cfg.CacheEnabled = env.Bool("CACHE_ENABLED", cfg.CacheEnabled)
	cfg.CacheTTL = env.Duration("CACHE_TTL", cfg.CacheTTL)

	cfg.MetricsPort = env.String("METRICS_PORT", cfg.MetricsPort)
	cfg.OTLPEndpoint = env.String("OTLP_ENDPOINT", cfg.OTLPEndpoint)
	cfg.LokiURL = env.String("LOKI_URL", cfg.LokiURL)

	if origins := env.String("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		cfg.CORSAllowedOrigins = splitList(origins)
	}

	cfg.APIURL = strings.TrimRight(env.String("TODO_API_URL", cfg.APIURL), "/")

	if cfg.GinMode == "release" {
		cfg.Environment = "production"
	}

	return cfg
}

func (c *AppConfig) UsePostgres() bool {
	return c.DatabaseDriver == DriverPostgres
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) String(key, fallback string) string {
	if value, ok := e.lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return fallback
}

func (e envReader) Bool(key string, fallback bool) bool {
	raw := e.String(key, "")
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("Invalid boolean in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}

	return value
}

func (e envReader) Duration(key string, fallback time.Duration) time.Duration {
	raw := e.String(key, "")
	if raw == "" {
		return fallback
	}

	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		slog.Warn("Invalid duration in environment, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}

	return value
}

func splitList(raw string) []string {
	var out []string

	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
