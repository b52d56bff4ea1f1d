// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads generator settings from an optional YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	flowerrors "github.com/tombee/flowgen/pkg/errors"
)

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// DefaultFileName is the config file picked up from the working directory
// when no path is given explicitly.
const DefaultFileName = ".flowgen.yaml"

// Config represents the complete generator configuration.
type Config struct {
	// OutputDir is where generated workflow files are written.
	// Environment: FLOWGEN_OUTPUT_DIR
	// Default: .github/workflows
	OutputDir string `yaml:"output_dir"`

	// Extension is appended to each workflow name to form its file name.
	// Environment: FLOWGEN_EXTENSION
	// Default: .yml
	Extension string `yaml:"extension"`

	// Command is the regeneration command printed in each file's banner.
	// Environment: FLOWGEN_COMMAND
	// Default: go run ./cmd/flowgen
	Command string `yaml:"command"`

	// Lint checks the syntax of every rendered expression before writing.
	// Environment: FLOWGEN_LINT
	// Default: true
	Lint *bool `yaml:"lint,omitempty"`

	// Indent is the YAML indentation width.
	// Environment: FLOWGEN_INDENT
	// Default: 2
	Indent int `yaml:"indent"`

	// Cleanup removes generated files whose workflow is no longer registered.
	Cleanup bool `yaml:"cleanup"`

	// Only restricts generation to workflows matching these glob patterns.
	Only []string `yaml:"only,omitempty"`

	Log LogConfig `yaml:"log"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	// Default: info
	Level string `yaml:"level"`

	// Format sets the output format (json, text).
	// Default: text
	Format string `yaml:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	lint := true
	return &Config{
		OutputDir: ".github/workflows",
		Extension: ".yml",
		Command:   "go run ./cmd/flowgen",
		Lint:      &lint,
		Indent:    2,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LintEnabled reports whether expressions are linted.
func (c *Config) LintEnabled() bool {
	return c.Lint == nil || *c.Lint
}

// ResolvePath returns the config file to load. An explicit path always wins;
// otherwise DefaultFileName is used when it exists in the working directory.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	return ""
}

// Load loads configuration from an optional YAML file and the environment.
// Environment variables take precedence over file-based configuration.
// If configPath is empty, only defaults and environment variables are used.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &flowerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	// A file that sets only some keys leaves the others zeroed.
	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, &flowerrors.ConfigError{
			Key:    "environment",
			Reason: "invalid environment override",
			Cause:  err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, &flowerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills in zero values with defaults.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.OutputDir == "" {
		c.OutputDir = defaults.OutputDir
	}
	if c.Extension == "" {
		c.Extension = defaults.Extension
	}
	if c.Command == "" {
		c.Command = defaults.Command
	}
	if c.Lint == nil {
		c.Lint = defaults.Lint
	}
	if c.Indent == 0 {
		c.Indent = defaults.Indent
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// loadFromEnv applies environment variable overrides.
func (c *Config) loadFromEnv() error {
	if val := os.Getenv("FLOWGEN_OUTPUT_DIR"); val != "" {
		c.OutputDir = val
	}
	if val := os.Getenv("FLOWGEN_EXTENSION"); val != "" {
		c.Extension = val
	}
	if val := os.Getenv("FLOWGEN_COMMAND"); val != "" {
		c.Command = val
	}
	if val := os.Getenv("FLOWGEN_LINT"); val != "" {
		lint, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("FLOWGEN_LINT: %w", err)
		}
		c.Lint = &lint
	}
	if val := os.Getenv("FLOWGEN_INDENT"); val != "" {
		indent, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("FLOWGEN_INDENT: %w", err)
		}
		c.Indent = indent
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, "output_dir must not be empty")
	}
	if c.Extension != ".yml" && c.Extension != ".yaml" {
		errs = append(errs, fmt.Sprintf("extension must be one of [.yml, .yaml], got %q", c.Extension))
	}
	if strings.TrimSpace(c.Command) == "" {
		errs = append(errs, "command must not be empty")
	}
	if c.Indent < 2 || c.Indent > 8 {
		errs = append(errs, fmt.Sprintf("indent must be between 2 and 8, got %d", c.Indent))
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of [trace, debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}
