package main

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the optional file configuration. Command-line flags override
// file values, which override the defaults.
type Config struct {
	// Workers is the archive scan concurrency.
	Workers int `yaml:"workers"`
	// Clusters restricts archive scans to the named clusters. Empty means
	// every cluster in the archive.
	Clusters []string `yaml:"clusters"`
}

func defaultConfig() *Config {
	return &Config{
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Load merges the YAML file at path into the configuration.
func (c *Config) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	if c.Workers < 1 {
		return fmt.Errorf("config %s: workers must be positive, got %d", path, c.Workers)
	}

	return nil
}
