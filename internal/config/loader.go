package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EPISTLE"

// SearchPaths returns the directories FindConfig looks in, in order.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".epistle"))
	}
	return paths
}

// FindConfig returns the first epistle.yaml, epistle.yml or epistle.json in
// the search paths.
func FindConfig(paths []string) (string, error) {
	names := []string{"epistle.yaml", "epistle.yml", "epistle.json"}
	for _, dir := range paths {
		for _, name := range names {
			full := filepath.Join(dir, name)
			if _, err := os.Stat(full); err == nil {
				return full, nil
			}
		}
	}
	return "", ErrConfigFileNotFound
}

// Load reads filename over the defaults, applies environment overrides and
// validates the result. An empty filename loads defaults and environment
// only.
func Load(filename string) (*Config, error) {
	config := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := parse(data, filepath.Ext(filename), config); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", filename, err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// AutoLoad loads the first config file found in SearchPaths, or the
// defaults if there is none.
func AutoLoad() (*Config, error) {
	path, err := FindConfig(SearchPaths())
	if err == ErrConfigFileNotFound {
		return Load("")
	}
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// parse decodes data onto config, so absent keys keep their values.
func parse(data []byte, ext string, config *Config) error {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return nil
}

// loadFromEnv applies EPISTLE_* overrides.
func loadFromEnv(config *Config) error {
	if val := os.Getenv(EnvPrefix + "_STDLIB"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: %s_STDLIB=%q", ErrEnvironmentVarError, EnvPrefix, val)
		}
		config.Stdlib = b
	}
	if val := os.Getenv(EnvPrefix + "_MAX_TICKS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: %s_MAX_TICKS=%q", ErrEnvironmentVarError, EnvPrefix, val)
		}
		config.MaxTicks = n
	}
	if val := os.Getenv(EnvPrefix + "_LOG_LEVEL"); val != "" {
		config.Log.Level = LogLevel(strings.ToLower(val))
	}
	if val := os.Getenv(EnvPrefix + "_LOG_FORMAT"); val != "" {
		config.Log.Format = strings.ToLower(val)
	}
	if val := os.Getenv(EnvPrefix + "_JOURNAL_SQLITE"); val != "" {
		config.Journal.SQLite = val
	}
	if val := os.Getenv(EnvPrefix + "_JOURNAL_EML_DIR"); val != "" {
		config.Journal.EMLDir = val
	}
	return nil
}
