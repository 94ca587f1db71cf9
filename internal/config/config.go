// =============================================================================
// gomarc - Configuration Module
// =============================================================================
//
// This module loads and validates the application configuration for batch
// conversion runs. Configuration is a single YAML file:
//
//   input_dir: ./input
//   output_dir: ./output
//   archive_dir: ./archive
//   from: marc
//   to: csv
//   html_entities: true
//   log_level: info
//   log_format: text
//   continue_on_error: true
//
// Single-file conversions driven entirely by CLI flags do not need a
// configuration file.
//
// =============================================================================

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InputFormats lists the formats batch runs can read.
var InputFormats = []string{"marc", "csv"}

// OutputFormats lists the formats batch runs can write.
var OutputFormats = []string{"marc", "csv", "json", "text", "xml", "xlsx"}

// Config holds the batch conversion configuration.
type Config struct {
	// InputDir is the directory scanned for source files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory converted files are written to.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir is the directory successfully converted source files are
	// moved to. Default: "./archive"
	ArchiveDir string `yaml:"archive_dir"`

	// From is the input format: "marc" or "csv".
	// Default: "marc"
	From string `yaml:"from"`

	// To is the output format: "marc", "csv", "json", "text", "xml", or
	// "xlsx". Default: "csv"
	To string `yaml:"to"`

	// HTMLEntities enables the HTML entity transcoding pass before
	// serialization. Default: false
	HTMLEntities bool `yaml:"html_entities"`

	// InsertionOrder makes CSV/XLSX headers use first-seen column order
	// instead of sorted order. Default: false
	InsertionOrder bool `yaml:"insertion_order"`

	// LogLevel controls logging verbosity: "debug", "info", "warn",
	// "error". Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects log output: "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format"`

	// ContinueOnError keeps a batch run going when one file fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`
}

// Load reads, defaults, and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in defaults for unset options.
func ApplyDefaults(cfg *Config) {
	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.ArchiveDir == "" {
		cfg.ArchiveDir = "./archive"
	}
	if cfg.From == "" {
		cfg.From = "marc"
	}
	if cfg.To == "" {
		cfg.To = "csv"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.ContinueOnError == nil {
		t := true
		cfg.ContinueOnError = &t
	}
}

// Validate checks format names and creates missing directories.
func Validate(cfg *Config) error {
	if !contains(InputFormats, cfg.From) {
		return fmt.Errorf("unknown input format %q (valid: %v)", cfg.From, InputFormats)
	}
	if !contains(OutputFormats, cfg.To) {
		return fmt.Errorf("unknown output format %q (valid: %v)", cfg.To, OutputFormats)
	}

	for _, dir := range []string{cfg.InputDir, cfg.OutputDir, cfg.ArchiveDir} {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
