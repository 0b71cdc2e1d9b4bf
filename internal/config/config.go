// Package config loads pipeline settings from defaults, an optional YAML
// file, and GUARDIAN_* environment variables, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jcastillo-osint/guardian-pipeline/internal/llm"
)

// Config holds all application configuration.
type Config struct {
	LLM     llm.Config    `mapstructure:"llm"`
	Geocode GeocodeConfig `mapstructure:"geocode"`
	Store   StoreConfig   `mapstructure:"store"`
	Output  OutputConfig  `mapstructure:"output"`
	Workers int           `mapstructure:"workers"`
}

// GeocodeConfig controls the coordinate fill stage.
type GeocodeConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	CachePath string `mapstructure:"cache_path"`
	CacheOnly bool   `mapstructure:"cache_only"`
}

// StoreConfig selects the audit store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// OutputConfig names the batch output files.
type OutputConfig struct {
	JSONLPath string `mapstructure:"jsonl_path"`
	CSVPath   string `mapstructure:"csv_path"`
}

// Load reads configuration. path names an explicit YAML file; when empty,
// guardian.yaml in the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := llm.DefaultConfig()
	v.SetDefault("llm.backend", defaults.Backend)
	v.SetDefault("llm.model", defaults.Model)
	v.SetDefault("llm.base_url", defaults.BaseURL)
	v.SetDefault("llm.temperature", defaults.Temperature)
	v.SetDefault("geocode.enabled", true)
	v.SetDefault("geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("geocode.cache_path", "geocode_cache.json")
	v.SetDefault("geocode.cache_only", false)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "guardian_audit.db")
	v.SetDefault("output.jsonl_path", "guardian_cases.jsonl")
	v.SetDefault("output.csv_path", "guardian_cases.csv")
	v.SetDefault("workers", 4)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("guardian")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, cfg.Validate()
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.LLM.Backend == llm.BackendOpenAI && c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key is required for the %s backend", llm.BackendOpenAI)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.Store.Driver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}
