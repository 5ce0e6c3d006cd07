package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Output formats accepted in the output key.
const (
	OutputText     = "text"
	OutputDetailed = "detailed"
	OutputJSON     = "json"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "dupes.yaml"

type Config struct {
	Exclude        []string `yaml:"exclude"`
	FollowSymlinks bool     `yaml:"follow_symlinks"`
	Workers        int      `yaml:"workers"`
	MinSize        int64    `yaml:"min_size"`
	Output         string   `yaml:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		Exclude: []string{
			".git/",
			".svn/",
			".hg/",
			"node_modules/",
			"__pycache__/",
			"*.tmp",
			"*.swp",
			".DS_Store",
			"Thumbs.db",
		},
		Workers: runtime.NumCPU(),
		Output:  OutputText,
	}
}

// LoadConfig reads a YAML config. A missing file yields DefaultConfig; keys
// absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values the scanner cannot use.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.MinSize < 0 {
		return fmt.Errorf("min_size must not be negative, got %d", c.MinSize)
	}
	switch c.Output {
	case OutputText, OutputDetailed, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	return nil
}
