// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port      string `env:"LEMONQWEST_PORT" envDefault:"8080"`
	DBPath    string `env:"LEMONQWEST_DB_PATH" envDefault:"lemonqwest.db"`
	LogLevel  string `env:"LEMONQWEST_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LEMONQWEST_LOG_FORMAT" envDefault:"text"`

	// PIN login attempts per IP within LoginRateWindow.
	LoginRateLimit  int           `env:"LEMONQWEST_LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LEMONQWEST_LOGIN_RATE_WINDOW" envDefault:"1m"`

	ShutdownTimeout time.Duration `env:"LEMONQWEST_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
