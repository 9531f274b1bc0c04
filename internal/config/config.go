// Package config loads wantbot configuration from an optional YAML file,
// applies WANTBOT_* environment overrides on top, and can watch the file
// for runtime changes to the tunables that support hot reload.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all wantbot configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Pacer   PacerConfig   `yaml:"pacer"`
	Render  RenderConfig  `yaml:"render"`
	Logging LoggingConfig `yaml:"logging"`
}

// CatalogConfig configures the external catalog client.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout is a duration string ("10s").
	Timeout string `yaml:"timeout"`
}

// PacerConfig configures outbound call spacing.
type PacerConfig struct {
	// Spacing is a duration string ("100ms") for the minimum delay
	// between successive catalog calls.
	Spacing string `yaml:"spacing"`
}

// RenderConfig configures summary rendering.
type RenderConfig struct {
	// Locale is a BCP 47 tag used for collation ("en", "de").
	Locale string `yaml:"locale"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	Enabled    bool            `yaml:"enabled"`
	Dir        string          `yaml:"dir"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			BaseURL: "https://api.scryfall.com",
			Timeout: "10s",
		},
		Pacer:  PacerConfig{Spacing: "100ms"},
		Render: RenderConfig{Locale: "en"},
		Logging: LoggingConfig{
			Enabled: false,
			Dir:     "logs",
			Level:   "info",
		},
	}
}

// Load reads the config file at path (missing file means defaults) and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets environment variables override file values, the usual
// deployment escape hatch.
func applyEnv(cfg *Config) {
	if v := os.Getenv("WANTBOT_CATALOG_BASE_URL"); v != "" {
		cfg.Catalog.BaseURL = v
	}
	if v := os.Getenv("WANTBOT_CATALOG_TIMEOUT"); v != "" {
		cfg.Catalog.Timeout = v
	}
	if v := os.Getenv("WANTBOT_PACER_SPACING"); v != "" {
		cfg.Pacer.Spacing = v
	}
	if v := os.Getenv("WANTBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WANTBOT_LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv("WANTBOT_RENDER_LOCALE"); v != "" {
		cfg.Render.Locale = v
	}
}

// TimeoutDuration parses the catalog timeout, falling back to the default
// on a bad value.
func (c CatalogConfig) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.Timeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(Default().Catalog.Timeout)
	return d
}

// SpacingDuration parses the pacer spacing, falling back to the default on
// a bad value.
func (c PacerConfig) SpacingDuration() time.Duration {
	if d, err := time.ParseDuration(c.Spacing); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(Default().Pacer.Spacing)
	return d
}
