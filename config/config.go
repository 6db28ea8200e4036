// Package config loads server configuration from a YAML file with
// environment-variable overrides for deployment settings.
package config

import (
	"fmt"
	"os"

	"github.com/meikuraledutech/featuregraph"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Listen      string                    `yaml:"listen"`
	DatabaseURL string                    `yaml:"database_url"`
	BackendURL  string                    `yaml:"backend_url"`
	Layout      featuregraph.LayoutConfig `yaml:"layout"`

	// ConfiguredSources lists the source IDs whose backing systems are set
	// up. Empty means every source is configured.
	ConfiguredSources []string `yaml:"configured_sources"`
}

// SourceConfigured returns the predicate fed to the tree projection and
// select-all. Nil when every source is configured.
func (c Config) SourceConfigured() func(featuregraph.Source) bool {
	if len(c.ConfiguredSources) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(c.ConfiguredSources))
	for _, id := range c.ConfiguredSources {
		set[id] = struct{}{}
	}
	return func(s featuregraph.Source) bool {
		_, ok := set[s.ID]
		return ok
	}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:     ":3000",
		BackendURL: "http://localhost:8000",
		Layout:     featuregraph.DefaultLayoutConfig,
	}
}

// Load reads a YAML config file and applies env overrides. An empty path
// yields the defaults plus overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("featuregraph: read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("featuregraph: parse config: %w", err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Listen = v
	}

	if cfg.Layout.LevelSpacing == 0 {
		cfg.Layout = featuregraph.DefaultLayoutConfig
	}

	return cfg, nil
}
