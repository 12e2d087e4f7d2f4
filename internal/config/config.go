// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/talgya/timeloop/internal/clock"
)

// Config is the process configuration. Every key is prefixed TIMELOOP_.
type Config struct {
	DBPath   string     `env:"TIMELOOP_DB_PATH" envDefault:"data/timeloop.db"`
	APIPort  int        `env:"TIMELOOP_API_PORT" envDefault:"8080"`
	AdminKey string     `env:"TIMELOOP_ADMIN_KEY"`
	LogLevel slog.Level `env:"TIMELOOP_LOG_LEVEL" envDefault:"INFO"`

	// CORSOrigins are allowed in addition to local dev servers.
	CORSOrigins []string `env:"TIMELOOP_CORS_ORIGINS" envSeparator:","`
	AdminRate   int      `env:"TIMELOOP_ADMIN_RATE" envDefault:"60"` // admin requests per minute per client

	TotalDuration    float64       `env:"TIMELOOP_TOTAL_DURATION" envDefault:"120"`
	TimeScale        float64       `env:"TIMELOOP_TIME_SCALE" envDefault:"1"`
	RewindSpeed      float64       `env:"TIMELOOP_REWIND_SPEED" envDefault:"20"`
	FastForwardSpeed float64       `env:"TIMELOOP_FAST_FORWARD_SPEED" envDefault:"20"`
	ResetDelay       time.Duration `env:"TIMELOOP_RESET_DELAY" envDefault:"1s"`
	StopDelay        time.Duration `env:"TIMELOOP_STOP_DELAY" envDefault:"5s"`

	TickRate  int   `env:"TIMELOOP_TICK_RATE" envDefault:"60"`
	Seed      int64 `env:"TIMELOOP_SEED" envDefault:"0"`
	StarCount int   `env:"TIMELOOP_STAR_COUNT" envDefault:"24"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects settings the simulation cannot run with.
func (c Config) Validate() error {
	switch {
	case c.TotalDuration <= 0:
		return fmt.Errorf("total duration must be positive, got %v", c.TotalDuration)
	case c.RewindSpeed <= 0 || c.FastForwardSpeed <= 0:
		return fmt.Errorf("seek speeds must be positive")
	case c.TickRate <= 0:
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	case c.AdminRate <= 0:
		return fmt.Errorf("admin rate must be positive, got %d", c.AdminRate)
	case c.StarCount < 0:
		return fmt.Errorf("star count must not be negative, got %d", c.StarCount)
	}
	return nil
}

// Clock returns the clock parameters.
func (c Config) Clock() clock.Config {
	return clock.Config{
		TotalDuration:    c.TotalDuration,
		TimeScale:        c.TimeScale,
		RewindSpeed:      c.RewindSpeed,
		FastForwardSpeed: c.FastForwardSpeed,
		ResetDelay:       c.ResetDelay,
		StopDelay:        c.StopDelay,
	}
}

// TickInterval returns the real time between engine steps.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}
