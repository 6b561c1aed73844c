package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/licensemap/pkg/pathutil"
)

const (
	// DefaultConfigDir is the default directory for licensemap config.
	DefaultConfigDir = ".licensemap"

	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Loader handles loading and merging configuration.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			filepath.Join(DefaultConfigDir, DefaultConfigFile),
			".licensemap.yaml",
		},
	}
}

// NewLoaderWithPaths creates a loader with custom config paths.
func NewLoaderWithPaths(paths []string) *Loader {
	return &Loader{
		configPaths: paths,
	}
}

// Load loads configuration from the first available config file.
// Returns default config if no file is found.
func (l *Loader) Load() (*Config, error) {
	if path, ok := l.find(); ok {
		return l.LoadFromFile(path)
	}
	return DefaultConfig(), nil
}

// LoadFromFile loads configuration from a specific file.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	cleanPath, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	return l.LoadFromBytes(data)
}

// LoadFromBytes loads configuration from YAML bytes on top of the defaults.
func (l *Loader) LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ConfigErrors{Errors: errs}
	}

	return cfg, nil
}

// LoadWithOverrides loads config and applies CLI overrides. A non-empty
// path is loaded instead of the search paths.
func (l *Loader) LoadWithOverrides(path string, overrides *CLIOverrides) (*Config, error) {
	var (
		cfg *Config
		err error
	)
	if path != "" {
		cfg, err = l.LoadFromFile(path)
	} else {
		cfg, err = l.Load()
	}
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
		if errs := cfg.Validate(); len(errs) > 0 {
			return nil, &ConfigErrors{Errors: errs}
		}
	}
	return cfg, nil
}

// CLIOverrides represents command-line configuration overrides.
type CLIOverrides struct {
	// Output settings
	Format     *string
	Verbosity  *string
	NoColor    *bool
	OutputPath *string

	// Inputs
	Repositories    []string
	LocalRepository *string
	Overrides       *string
	MissingPath     *string
	WriteMissing    *bool

	// Registry
	RegistryKind *string
	RegistryURL  *string

	Workers *int
}

// applyOverrides applies CLI overrides to a config.
func applyOverrides(cfg *Config, o *CLIOverrides) {
	if o.Format != nil {
		cfg.Output.Format = *o.Format
	}
	if o.Verbosity != nil {
		cfg.Output.Verbosity = *o.Verbosity
	}
	if o.NoColor != nil {
		cfg.Output.Color = !*o.NoColor
	}
	if o.OutputPath != nil {
		cfg.Output.Path = *o.OutputPath
	}

	// Flag repositories come after configured ones so they win collisions.
	cfg.Repositories = append(cfg.Repositories, o.Repositories...)
	if o.LocalRepository != nil {
		cfg.LocalRepository = *o.LocalRepository
	}
	if o.Overrides != nil {
		cfg.Overrides = *o.Overrides
	}
	if o.MissingPath != nil {
		cfg.Missing.Path = *o.MissingPath
	}
	if o.WriteMissing != nil {
		cfg.Missing.Write = *o.WriteMissing
	}

	if o.RegistryKind != nil {
		cfg.Registry.Kind = *o.RegistryKind
	}
	if o.RegistryURL != nil {
		cfg.Registry.URL = *o.RegistryURL
	}
	if o.Workers != nil {
		cfg.Workers = *o.Workers
	}
}

// SaveToFile saves configuration to a file.
func SaveToFile(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// FindConfigFile finds the first available config file.
func FindConfigFile() (string, bool) {
	return NewLoader().find()
}

func (l *Loader) find() (string, bool) {
	for _, path := range l.configPaths {
		if fileExists(path) {
			return path, true
		}
	}
	return "", false
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ConfigErrors wraps multiple configuration errors.
type ConfigErrors struct {
	Errors []error
}

func (e *ConfigErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no configuration errors"
	}
	if len(e.Errors) == 1 {
		return "configuration error: " + e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d configuration errors:", len(e.Errors))
	for _, err := range e.Errors {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Unwrap returns the underlying errors.
func (e *ConfigErrors) Unwrap() []error {
	return e.Errors
}
