// Package config loads the optional YAML defaults file for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-nb2html/internal/fileutil"
	"github.com/alnah/go-nb2html/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config value")
)

// MaxKernelNameLength caps the kernelspec name field.
const MaxKernelNameLength = 100

// Config holds file-based defaults for notebook conversion.
// CLI flags always win over config values.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	Output  OutputConfig  `yaml:"output"`
	Convert ConvertConfig `yaml:"convert"`
	Execute ExecuteConfig `yaml:"execute"`
	Assets  AssetsConfig  `yaml:"assets"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
	Recursive  bool   `yaml:"recursive"`  // Descend into subdirectories in batch mode
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = next to source)
}

// ConvertConfig defines rendering options.
// EmbedImages and IncludeInput are pointers so "unset" (default true) is
// distinguishable from an explicit false.
type ConvertConfig struct {
	Template     string `yaml:"template"`     // "classic", "lab", "reveal" (empty = classic)
	EmbedImages  *bool  `yaml:"embedImages"`  // nil = true
	IncludeInput *bool  `yaml:"includeInput"` // nil = true
}

// ExecuteConfig defines kernel execution options.
type ExecuteConfig struct {
	Enabled        bool   `yaml:"enabled"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"` // 0 = default (600)
	Kernel         string `yaml:"kernel"`         // kernelspec name (empty = python3)
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// Validate checks config values.
// Called automatically by LoadConfig, but available for consumers who
// construct Config manually.
func (c *Config) Validate() error {
	switch c.Convert.Template {
	case "", "classic", "lab", "reveal":
		// valid
	default:
		return fmt.Errorf("%w: convert.template %q (must be classic, lab, or reveal)", ErrConfigInvalid, c.Convert.Template)
	}

	if c.Execute.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: execute.timeoutSeconds must be >= 0, got %d", ErrConfigInvalid, c.Execute.TimeoutSeconds)
	}
	if len(c.Execute.Kernel) > MaxKernelNameLength {
		return fmt.Errorf("%w: execute.kernel exceeds %d chars", ErrConfigInvalid, MaxKernelNameLength)
	}

	return nil
}

// DefaultConfig returns a neutral configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-nb2html/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-nb2html", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
