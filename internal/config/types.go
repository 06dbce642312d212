// Package config loads epistle runtime settings from YAML or JSON files and
// EPISTLE_* environment variables.
package config

import (
	"fmt"
	"log/slog"
)

// LogLevel names a logging threshold.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Config is the complete runtime configuration.
type Config struct {
	// Stdlib installs the std.com server before the program runs.
	Stdlib bool `yaml:"stdlib" json:"stdlib"`
	// MaxTicks aborts runaway mail loops. Zero means unlimited.
	MaxTicks int           `yaml:"max_ticks" json:"max_ticks"`
	Log      LogConfig     `yaml:"log" json:"log"`
	Journal  JournalConfig `yaml:"journal" json:"journal"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  LogLevel `yaml:"level" json:"level"`
	Format string   `yaml:"format" json:"format"` // text or json
}

// JournalConfig names where deliveries are recorded. Empty means off.
type JournalConfig struct {
	SQLite string `yaml:"sqlite" json:"sqlite"`
	EMLDir string `yaml:"eml_dir" json:"eml_dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Stdlib: true,
		Log: LogConfig{
			Level:  LogLevelWarn,
			Format: "text",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if _, err := c.Log.Level.slog(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	if c.MaxTicks < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMaxTicks, c.MaxTicks)
	}
	return nil
}

// SlogLevel returns the slog level for the configured threshold.
func (c *Config) SlogLevel() slog.Level {
	l, _ := c.Log.Level.slog()
	return l
}

func (l LogLevel) slog() (slog.Level, error) {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug, nil
	case LogLevelInfo:
		return slog.LevelInfo, nil
	case LogLevelWarn, "":
		return slog.LevelWarn, nil
	case LogLevelError:
		return slog.LevelError, nil
	}
	return slog.LevelWarn, fmt.Errorf("%w: %q", ErrInvalidLogLevel, string(l))
}
