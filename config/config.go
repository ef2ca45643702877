// Package config — .statdesc.yaml configuration file support.
//
// The config file only drives the CLI; the library packages take
// their options explicitly.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/exiletools/statdesc/descfile"
	"github.com/exiletools/statdesc/langmeta"
)

// FileName is the config file looked up in the working directory.
const FileName = ".statdesc.yaml"

// Config is the top-level .statdesc.yaml structure.
type Config struct {
	// DefaultLanguage is the language used when --lang is not given.
	DefaultLanguage string `yaml:"default_language,omitempty"`
	// ReverseTolerance is the rounding tolerance for reverse
	// translation, in units of displayed precision.
	ReverseTolerance *float64 `yaml:"reverse_tolerance,omitempty"`
	// CustomFile is a description file merged into every loaded file.
	CustomFile string `yaml:"custom_file,omitempty"`
	// HardcodedFile is a description file loaded into the hardcoded
	// namespace at startup.
	HardcodedFile string `yaml:"hardcoded_file,omitempty"`
}

// Tolerance returns the configured reverse tolerance, defaulting to 1.
func (c *Config) Tolerance() float64 {
	if c.ReverseTolerance == nil {
		return 1
	}
	return *c.ReverseTolerance
}

// Load reads .statdesc.yaml from dir. A missing file yields the
// defaults; a malformed one is an error.
func Load(dir string) (*Config, error) {
	cfg := &Config{DefaultLanguage: descfile.DefaultLanguage}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = descfile.DefaultLanguage
	}
	if !langmeta.Known(cfg.DefaultLanguage) {
		return nil, fmt.Errorf("%s: unknown default_language %q", path, cfg.DefaultLanguage)
	}
	if cfg.ReverseTolerance != nil && *cfg.ReverseTolerance < 0 {
		return nil, fmt.Errorf("%s: reverse_tolerance must not be negative", path)
	}
	return cfg, nil
}
