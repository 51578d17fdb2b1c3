// Package config handles tmftool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all tool settings.
type Config struct {
	Loader  LoaderConfig  `yaml:"loader" toml:"loader"`
	Writer  WriterConfig  `yaml:"writer" toml:"writer"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// LoaderConfig controls how packages are read and flattened.
type LoaderConfig struct {
	Concurrency int `yaml:"concurrency" toml:"concurrency"` // 0 uses every CPU

	// StrictExtensions refuses models that require extensions this tool
	// does not implement.
	StrictExtensions bool `yaml:"strict_extensions" toml:"strict_extensions"`
}

// WriterConfig controls how packages are written.
type WriterConfig struct {
	CompressionLevel int `yaml:"compression_level" toml:"compression_level"` // -2..9, 0 stores
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	LogFile    string `yaml:"log_file" toml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			Concurrency:      0,
			StrictExtensions: false,
		},
		Writer: WriterConfig{
			CompressionLevel: 6,
		},
		Logging: LoggingConfig{
			Level:      "warn",
			LogFile:    "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Loader.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("loader.concurrency must not be negative, got %d", c.Loader.Concurrency))
	}
	if l := c.Writer.CompressionLevel; l < -2 || l > 9 {
		errs = append(errs, fmt.Errorf("writer.compression_level must be between -2 and 9, got %d", l))
	}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return errors.Join(errs...)
}
