// Package config holds the crunch configuration: where the cereal dataset
// comes from, where snapshots are cached, and how much the tool logs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSourceURL is the public cereal dataset the tool was built around.
const DefaultSourceURL = "https://docs.dagster.io/assets/cereal.csv"

// Config holds all crunch configuration.
type Config struct {
	// Source configures where datasets are fetched from.
	Source SourceConfig `yaml:"source"`

	// Cache configures the local snapshot cache.
	Cache CacheConfig `yaml:"cache"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig configures the dataset source.
type SourceConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// CacheConfig configures the sqlite snapshot cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			URL:     DefaultSourceURL,
			Timeout: "30s",
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    filepath.Join(".crunch", "cache.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CRUNCH_SOURCE_URL"); url != "" {
		c.Source.URL = url
	}
	if path := os.Getenv("CRUNCH_CACHE_PATH"); path != "" {
		c.Cache.Path = path
	}
	if level := os.Getenv("CRUNCH_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// SourceTimeout parses the configured fetch timeout.
func (c *Config) SourceTimeout() (time.Duration, error) {
	if c.Source.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Source.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid source timeout %q: %w", c.Source.Timeout, err)
	}
	return d, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Source.URL == "" {
		return fmt.Errorf("source URL not configured (set source.url or CRUNCH_SOURCE_URL)")
	}
	if _, err := c.SourceTimeout(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return fmt.Errorf("cache enabled but cache.path is empty")
	}
	return nil
}
