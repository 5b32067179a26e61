// Package config holds server configuration and its YAML file loader.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds configuration for the GoDP server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel  string `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `yaml:"log_format"` // Log format: text, json
	DBPath    string `yaml:"db_path"`    // Task-history database path (":memory:" for testing, "" to disable)
	Workers   int    `yaml:"workers"`    // Worker pool size (default: available parallelism)
	PluginDir string `yaml:"plugin_dir"` // Directory scanned for algorithm plugin scripts
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Workers:   runtime.NumCPU(),
	}
}

// LoadFile reads a YAML config file over the given base config. Fields absent
// from the file keep their base values.
func LoadFile(path string, base ServerConfig) (ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return cfg, nil
}
