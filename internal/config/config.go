package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects the result store backend
type StoreConfig struct {
	// Backend is "memory" or "sqlite"; both live only as long as the process
	Backend string `yaml:"backend"`
}

// ReportConfig controls the session report export
type ReportConfig struct {
	// Format is "markdown" or "html"
	Format string `yaml:"format"`

	// Path is where the report is written after a run (empty = no export)
	Path string `yaml:"path"`
}

// Config represents mchat configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs will be written
	LogDir string `yaml:"log_dir"`

	// Instrument is the path to an instrument file (empty = built-in items)
	Instrument string `yaml:"instrument"`

	// PositiveThreshold is the follow-up fail count at which a screen is positive
	PositiveThreshold int `yaml:"positive_threshold"`

	// Store selects the result store
	Store StoreConfig `yaml:"store"`

	// Report controls the report export
	Report ReportConfig `yaml:"report"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:          "info",
		LogDir:            ".mchat/logs",
		Instrument:        "",
		PositiveThreshold: 2,
		Store: StoreConfig{
			Backend: "memory",
		},
		Report: ReportConfig{
			Format: "markdown",
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if fileCfg.LogLevel != "" {
		cfg.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.LogDir != "" {
		cfg.LogDir = fileCfg.LogDir
	}
	if fileCfg.Instrument != "" {
		cfg.Instrument = fileCfg.Instrument
	}
	if fileCfg.Store.Backend != "" {
		cfg.Store.Backend = fileCfg.Store.Backend
	}
	if fileCfg.Report.Format != "" {
		cfg.Report.Format = fileCfg.Report.Format
	}
	if fileCfg.Report.Path != "" {
		cfg.Report.Path = fileCfg.Report.Path
	}

	// positive_threshold is taken whenever present, so an explicit 0 reaches Validate
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["positive_threshold"]; exists {
			cfg.PositiveThreshold = fileCfg.PositiveThreshold
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .mchat/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(filepath.Join(dir, ".mchat", "config.yaml"))
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel, logDir, instrument, storeBackend, reportPath, reportFormat *string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if instrument != nil {
		c.Instrument = *instrument
	}
	if storeBackend != nil {
		c.Store.Backend = *storeBackend
	}
	if reportPath != nil {
		c.Report.Path = *reportPath
	}
	if reportFormat != nil {
		c.Report.Format = *reportFormat
	}
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.PositiveThreshold < 1 {
		return fmt.Errorf("positive_threshold must be >= 1, got %d", c.PositiveThreshold)
	}

	switch c.Store.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid store.backend %q, must be one of: memory, sqlite", c.Store.Backend)
	}

	switch c.Report.Format {
	case "markdown", "html":
	default:
		return fmt.Errorf("invalid report.format %q, must be one of: markdown, html", c.Report.Format)
	}

	return nil
}
