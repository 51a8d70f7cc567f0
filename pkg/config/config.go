package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceConfig struct {
	Root string `yaml:"root" json:"root"` // checkout the model paths are relative to
	Git  string `yaml:"git" json:"git"`   // git binary
}

type TypesConfig struct {
	Root     string            `yaml:"root" json:"root"`         // where serializers are searched
	Discover *bool             `yaml:"discover" json:"discover"` // nil means true
	Mappings map[string]string `yaml:"mappings" json:"mappings"` // applied after discovery
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

type AppConfig struct {
	Source SourceConfig `yaml:"source" json:"source"`
	Types  TypesConfig  `yaml:"types" json:"types"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// Default returns the configuration used without a config file.
func Default() AppConfig {
	return AppConfig{
		Source: SourceConfig{Root: ".", Git: "git"},
		Types:  TypesConfig{Root: "."},
		Log:    LogConfig{Level: "info"},
	}
}

// LoadFile loads YAML config from path over the defaults.
func LoadFile(path string) (AppConfig, error) {
	cfg := Default()
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// DiscoverTypes reports whether serializers should be searched for.
func (c AppConfig) DiscoverTypes() bool {
	return c.Types.Discover == nil || *c.Types.Discover
}

// Validate rejects mappings with empty names.
func (c AppConfig) Validate() error {
	for from, to := range c.Types.Mappings {
		if strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return fmt.Errorf("types.mappings: empty type in %q: %q", from, to)
		}
	}
	return nil
}
