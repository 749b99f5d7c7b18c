package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the API server.
type Config struct {
	AppPort     string
	DatabaseURL string
	LogLevel    string
	LogJSON     bool

	AuthSecret    string
	AllowedOrigin string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	APIRateLimit  int
	APIRateWindow time.Duration

	TelegramToken  string
	ReportInterval time.Duration
	ReportTime     string
}

// Load reads configuration from the environment, after merging an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppPort:        getEnv("APP_PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", "taskflow.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogJSON:        parseBool(os.Getenv("LOG_JSON")),
		AuthSecret:     strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		AllowedOrigin:  strings.TrimSpace(os.Getenv("ALLOWED_ORIGIN")),
		RedisAddr:      strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        parseCount(os.Getenv("REDIS_DB"), 0),
		APIRateLimit:   parseCount(os.Getenv("API_RATE_LIMIT"), 120),
		APIRateWindow:  time.Duration(parseCount(os.Getenv("API_RATE_WINDOW_SECONDS"), 60)) * time.Second,
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		ReportInterval: parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
		ReportTime:     strings.TrimSpace(os.Getenv("REPORT_TIME")),
	}

	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 24 * time.Hour
	}

	if _, err := strconv.Atoi(cfg.AppPort); err != nil {
		return cfg, fmt.Errorf("APP_PORT must be numeric, got %q", cfg.AppPort)
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.AppPort
}

// AuthEnabled reports whether API requests must carry a bearer token.
func (c Config) AuthEnabled() bool {
	return c.AuthSecret != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && v
}

func parseCount(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
