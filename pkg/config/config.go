// Package config provides configuration loading and management for plateindex.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up when none is given
const DefaultPath = "plateindex.yaml"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Index builder parameters
	Index struct {
		// DataDir is the root directory holding the instrument's image files (data_dir)
		DataDir string `yaml:"dataDir"`

		// OutputFile is where the image index is written as CSV (output_file)
		OutputFile string `yaml:"outputFile"`

		// Extension is the case-sensitive file extension of image files
		Extension string `yaml:"extension"`

		// Strict aborts the run on the first malformed file name
		Strict bool `yaml:"strict"`
	} `yaml:"index"`

	// Contrast stretch parameters
	Stretch struct {
		// Percentile is the upper bound percentile used as the stretch maximum
		Percentile float64 `yaml:"percentile"`

		// PreviewFormat is the file format of written previews
		PreviewFormat string `yaml:"previewFormat"`
	} `yaml:"stretch"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// LogFormat is "text" or "json"
		LogFormat string `yaml:"logFormat"`

		// MetricsFile, when set, receives a prometheus textfile after each index run
		MetricsFile string `yaml:"metricsFile"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Index.DataDir = "MFGTMP_220411120001"
	cfg.Index.OutputFile = "images_df.csv"
	cfg.Index.Extension = ".TIF"
	cfg.Index.Strict = false

	cfg.Stretch.Percentile = 99.9999
	cfg.Stretch.PreviewFormat = "png"

	cfg.Output.Verbose = false
	cfg.Output.LogFormat = "text"

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.Index.DataDir == "" {
		return errors.New("index.dataDir must not be empty")
	}
	if c.Index.OutputFile == "" {
		return errors.New("index.outputFile must not be empty")
	}
	if !strings.HasPrefix(c.Index.Extension, ".") || len(c.Index.Extension) < 2 {
		return fmt.Errorf("index.extension %q must start with a dot", c.Index.Extension)
	}
	if c.Stretch.Percentile <= 0 || c.Stretch.Percentile > 100 {
		return fmt.Errorf("stretch.percentile %v must be in (0, 100]", c.Stretch.Percentile)
	}
	switch strings.ToLower(c.Stretch.PreviewFormat) {
	case "png", "jpg", "jpeg", "tif", "tiff", "bmp":
	default:
		return fmt.Errorf("unsupported stretch.previewFormat %q", c.Stretch.PreviewFormat)
	}
	switch strings.ToLower(c.Output.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown output.logFormat %q", c.Output.LogFormat)
	}
	return nil
}
