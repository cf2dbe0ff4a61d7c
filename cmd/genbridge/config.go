package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is read from the environment.
type Config struct {
	APIKey       string        `env:"GENBRIDGE_API_KEY"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	Model        string        `env:"GENBRIDGE_MODEL"`
	Profile      string        `env:"GENBRIDGE_PROFILE" envDefault:"default"`
	ProfileDir   string        `env:"GENBRIDGE_PROFILE_DIR" validate:"omitempty,dir"`
	ProfileURL   string        `env:"GENBRIDGE_PROFILE_URL" validate:"omitempty,url"`
	ProfileToken string        `env:"GENBRIDGE_PROFILE_TOKEN"`
	ProfileTTL   time.Duration `env:"GENBRIDGE_PROFILE_TTL" envDefault:"5m"`
	Env          string        `env:"GENBRIDGE_ENV"`
	Vertex       bool          `env:"GENBRIDGE_VERTEX"`
	Trace        bool          `env:"GENBRIDGE_TRACE"`
	LogLevel     string        `env:"LOG_LEVEL" envDefault:"warn" validate:"oneof=debug info warn error"`
	LogFormat    string        `env:"LOG_FORMAT" envDefault:"text" validate:"oneof=text json"`
}

// loadConfig parses environ (nil means the process environment) and validates the result.
func loadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = cfg.GeminiAPIKey
	}
	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if cfg.APIKey == "" {
		return Config{}, errors.New("config: GENBRIDGE_API_KEY or GEMINI_API_KEY must be set")
	}
	if cfg.ProfileDir != "" && cfg.ProfileURL != "" {
		return Config{}, errors.New("config: GENBRIDGE_PROFILE_DIR and GENBRIDGE_PROFILE_URL are mutually exclusive")
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
