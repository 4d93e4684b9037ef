package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	// Analysis assistant. Leaving the key empty disables the assist
	// endpoint; the coordinator works without it.
	AnalysisAPIURL string `env:"ANALYSIS_API_URL" default:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"`
	AnalysisAPIKey string `env:"ANALYSIS_API_KEY"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	AuditLogCapacity int `env:"AUDIT_LOG_CAPACITY" default:"512"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if cfg.AuditLogCapacity <= 0 {
		return fmt.Errorf("AUDIT_LOG_CAPACITY must be positive, got %d", cfg.AuditLogCapacity)
	}

	return nil
}
