// Package config loads the server's runtime settings from a YAML file,
// following the same shape a deployment's config map would hand it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level server configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `yaml:"addr"`
	// MaxDocSize caps a document's length in code points; 0 means
	// unbounded.
	MaxDocSize int `yaml:"maxDocSize"`
	// Docs preloads named documents with initial content at startup.
	Docs map[string]string `yaml:"docs"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{Addr: ":8080", MaxDocSize: 0}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
