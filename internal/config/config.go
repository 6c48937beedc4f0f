package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	App struct {
		ENV string
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Matching struct {
		MaxMatches int
	}

	Gemini struct {
		APIKey  string
		Model   string
		Timeout time.Duration
	}

	Intake struct {
		SessionTTL time.Duration
	}

	Metrics struct {
		Addr string
	}
}

func New() *Config {
	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matching_pipeline")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", "production")

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "roomlink")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// Matching
	cfg.Matching.MaxMatches = getEnvInt("MATCHING_MAX_MATCHES", 3)

	// Gemini (optional: empty API key disables AI explanations)
	cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	cfg.Gemini.Model = getEnvDefault("GEMINI_MODEL", "gemini-2.5-flash")
	cfg.Gemini.Timeout = getEnvDuration("GEMINI_TIMEOUT", 2*time.Second)

	// Intake sessions
	cfg.Intake.SessionTTL = getEnvDuration("INTAKE_SESSION_TTL", 30*time.Minute)

	// Metrics
	cfg.Metrics.Addr = getEnvDefault("METRICS_ADDR", "127.0.0.1:9090")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
