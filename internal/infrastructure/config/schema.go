package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
)

// Registry kinds.
const (
	RegistryHTTP    = "http"
	RegistryDepsDev = "depsdev"
	RegistryNone    = "none"
)

// Unknown dependency strategies.
const (
	UnknownWarn = "warn"
	UnknownFail = "fail"
)

// Config represents the complete licensemap configuration.
type Config struct {
	Version string `yaml:"version" json:"version"`

	// Repositories are user license repositories, searched after the
	// bundled one. Later entries win on name collisions.
	Repositories []string `yaml:"repositories" json:"repositories"`

	// Bundled controls whether the bundled repository is loaded.
	Bundled bool `yaml:"bundled" json:"bundled"`

	// LocalRepository is the Maven local repository. Empty means ~/.m2/repository.
	LocalRepository string `yaml:"local_repository" json:"local_repository"`

	Registry  RegistryConfig  `yaml:"registry" json:"registry"`
	Detection DetectionConfig `yaml:"detection" json:"detection"`

	// Overrides is a path or URL of an override file.
	Overrides string        `yaml:"overrides" json:"overrides"`
	Missing   MissingConfig `yaml:"missing" json:"missing"`

	// Merges are "main|alias1|alias2" strings applied after resolution.
	Merges []string `yaml:"merges" json:"merges"`
	// MergesURL names a file or URL holding one merge string per line.
	MergesURL string `yaml:"merges_url" json:"merges_url"`

	Modules ModulesConfig `yaml:"modules" json:"modules"`
	Scopes  ScopesConfig  `yaml:"scopes" json:"scopes"`

	UnknownDependencies  string   `yaml:"unknown_dependencies" json:"unknown_dependencies"` // warn, fail
	ExpectedDependencies []string `yaml:"expected_dependencies" json:"expected_dependencies"`

	Output  OutputConfig `yaml:"output" json:"output"`
	MCP     MCPConfig    `yaml:"mcp" json:"mcp"`
	Workers int          `yaml:"workers" json:"workers"`
}

// RegistryConfig selects and tunes the external license registry.
type RegistryConfig struct {
	Kind      string        `yaml:"kind" json:"kind"` // http, depsdev, none
	URL       string        `yaml:"url" json:"url"`   // template or gRPC address
	Proxy     string        `yaml:"proxy" json:"proxy"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Rate      float64       `yaml:"rate" json:"rate"` // requests per second, 0 = unlimited
	Burst     int           `yaml:"burst" json:"burst"`
	CacheSize int           `yaml:"cache_size" json:"cache_size"`
	Breaker   BreakerConfig `yaml:"breaker" json:"breaker"`
}

// BreakerConfig configures the registry circuit breaker.
type BreakerConfig struct {
	Failures uint32        `yaml:"failures" json:"failures"` // 0 disables the breaker
	CoolDown time.Duration `yaml:"cool_down" json:"cool_down"`
}

// DetectionConfig tunes license text detection in info files.
type DetectionConfig struct {
	Threshold float64 `yaml:"threshold" json:"threshold"` // percent of text matched
	MaxSize   int64   `yaml:"max_file_size" json:"max_file_size"`
}

// MissingConfig configures the missing file.
type MissingConfig struct {
	Path  string `yaml:"path" json:"path"`
	Write bool   `yaml:"write" json:"write"`
}

// ModulesConfig selects the modules that contribute dependencies, by artifactId.
type ModulesConfig struct {
	Include []string `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude" json:"exclude"`
}

// ScopesConfig lists dependencies skipped before resolution.
type ScopesConfig struct {
	Excluded       []string `yaml:"excluded" json:"excluded"`
	ExcludedGroups []string `yaml:"excluded_groups" json:"excluded_groups"`
}

// OutputConfig defines output settings.
type OutputConfig struct {
	Format    string `yaml:"format" json:"format"`       // console, json, thirdparty
	Verbosity string `yaml:"verbosity" json:"verbosity"` // quiet, normal, verbose, debug
	Color     bool   `yaml:"color" json:"color"`
	Path      string `yaml:"path" json:"path"` // empty means stdout
}

// MCPConfig limits the size of MCP tool responses.
type MCPConfig struct {
	MaxDependencies  int    `yaml:"max_dependencies" json:"max_dependencies"`   // 0 = unlimited
	TruncateStrategy string `yaml:"truncate_strategy" json:"truncate_strategy"` // unknown-first, coordinate
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version:      "1",
		Repositories: []string{},
		Bundled:      true,
		Registry: RegistryConfig{
			Kind:      RegistryNone,
			Timeout:   30 * time.Second,
			UserAgent: "licensemap",
			Burst:     1,
			CacheSize: 4096,
			Breaker: BreakerConfig{
				Failures: 5,
				CoolDown: 30 * time.Second,
			},
		},
		Detection: DetectionConfig{
			Threshold: 75,
			MaxSize:   1 << 20,
		},
		Merges: []string{},
		Scopes: ScopesConfig{
			Excluded: []string{"system"},
		},
		UnknownDependencies: UnknownWarn,
		Output: OutputConfig{
			Format:    "console",
			Verbosity: "normal",
			Color:     true,
		},
		MCP: MCPConfig{
			MaxDependencies:  200,
			TruncateStrategy: "unknown-first",
		},
		Workers: 8,
	}
}

// GetOutputFormat returns the output format as a ports.OutputFormat.
func (c *Config) GetOutputFormat() ports.OutputFormat {
	switch c.Output.Format {
	case "json":
		return ports.OutputFormatJSON
	case "thirdparty":
		return ports.OutputFormatThirdParty
	default:
		return ports.OutputFormatConsole
	}
}

// GetVerbosity returns the verbosity as a ports.Verbosity.
func (c *Config) GetVerbosity() ports.Verbosity {
	switch c.Output.Verbosity {
	case "quiet":
		return ports.VerbosityQuiet
	case "verbose":
		return ports.VerbosityVerbose
	case "debug":
		return ports.VerbosityDebug
	default:
		return ports.VerbosityNormal
	}
}

// ToOutputConfig converts the output section to ports.OutputConfig.
func (c *Config) ToOutputConfig() ports.OutputConfig {
	return ports.OutputConfig{
		Format:    c.GetOutputFormat(),
		Verbosity: c.GetVerbosity(),
		Color:     c.Output.Color,
		Path:      c.Output.Path,
	}
}

// GetMCPConfig returns the MCP section with defaults filled in.
func (c *Config) GetMCPConfig() MCPConfig {
	m := c.MCP
	if m.TruncateStrategy == "" {
		m.TruncateStrategy = "unknown-first"
	}
	return m
}

// ParsedMerges splits each merge string into its main key and aliases.
// Blank parts are dropped.
func (c *Config) ParsedMerges() [][]string {
	return ParseMerges(c.Merges)
}

// ParseMerges splits "main|alias" strings. Entries with fewer than two
// keys are dropped.
func ParseMerges(merges []string) [][]string {
	var out [][]string
	for _, m := range merges {
		var parts []string
		for _, p := range strings.Split(m, "|") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 1 {
			out = append(out, parts)
		}
	}
	return out
}

// FailOnUnknownDependencies reports whether unmatched expected
// dependencies abort the run.
func (c *Config) FailOnUnknownDependencies() bool {
	return c.UnknownDependencies == UnknownFail
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() []error {
	var errs []error

	if c.Version == "" {
		errs = append(errs, &ValidationError{Field: "version", Message: "version is required"})
	}

	for i, r := range c.Repositories {
		if strings.TrimSpace(r) == "" {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("repositories[%d]", i),
				Message: "must not be empty",
			})
		}
	}
	if !c.Bundled && len(c.Repositories) == 0 {
		errs = append(errs, &ValidationError{
			Field:   "repositories",
			Message: "at least one repository is required when the bundled repository is disabled",
		})
	}

	errs = append(errs, c.Registry.validate()...)

	if c.Detection.Threshold < 0 || c.Detection.Threshold > 100 {
		errs = append(errs, &ValidationError{
			Field:   "detection.threshold",
			Message: "must be between 0 and 100",
		})
	}
	if c.Detection.MaxSize < 0 {
		errs = append(errs, &ValidationError{
			Field:   "detection.max_file_size",
			Message: "must be non-negative",
		})
	}

	if c.Missing.Write && c.Missing.Path == "" {
		errs = append(errs, &ValidationError{
			Field:   "missing.path",
			Message: "is required when missing.write is set",
		})
	}

	for i, m := range c.Merges {
		if len(strings.Split(m, "|")) < 2 {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("merges[%d]", i),
				Message: "must have the form main|alias[|alias...]",
			})
		}
	}

	validStrategies := map[string]bool{UnknownWarn: true, UnknownFail: true, "": true}
	if !validStrategies[c.UnknownDependencies] {
		errs = append(errs, &ValidationError{
			Field:   "unknown_dependencies",
			Message: "must be one of: warn, fail",
		})
	}

	validFormats := map[string]bool{"console": true, "json": true, "thirdparty": true}
	if c.Output.Format != "" && !validFormats[c.Output.Format] {
		errs = append(errs, &ValidationError{
			Field:   "output.format",
			Message: "must be one of: console, json, thirdparty",
		})
	}

	validVerbosity := map[string]bool{"quiet": true, "normal": true, "verbose": true, "debug": true}
	if c.Output.Verbosity != "" && !validVerbosity[c.Output.Verbosity] {
		errs = append(errs, &ValidationError{
			Field:   "output.verbosity",
			Message: "must be one of: quiet, normal, verbose, debug",
		})
	}

	validTruncate := map[string]bool{"": true, "unknown-first": true, "coordinate": true}
	if !validTruncate[c.MCP.TruncateStrategy] {
		errs = append(errs, &ValidationError{
			Field:   "mcp.truncate_strategy",
			Message: "must be one of: unknown-first, coordinate",
		})
	}
	if c.MCP.MaxDependencies < 0 {
		errs = append(errs, &ValidationError{
			Field:   "mcp.max_dependencies",
			Message: "must be non-negative",
		})
	}

	if c.Workers < 0 {
		errs = append(errs, &ValidationError{
			Field:   "workers",
			Message: "must be non-negative",
		})
	}

	return errs
}

func (r RegistryConfig) validate() []error {
	var errs []error

	switch r.Kind {
	case "", RegistryNone, RegistryDepsDev:
	case RegistryHTTP:
		if r.URL == "" {
			errs = append(errs, &ValidationError{
				Field:   "registry.url",
				Message: "is required for the http registry",
			})
		}
	default:
		errs = append(errs, &ValidationError{
			Field:   "registry.kind",
			Message: "must be one of: http, depsdev, none",
		})
	}

	if r.Timeout < 0 {
		errs = append(errs, &ValidationError{Field: "registry.timeout", Message: "must be non-negative"})
	}
	if r.Rate < 0 {
		errs = append(errs, &ValidationError{Field: "registry.rate", Message: "must be non-negative"})
	}
	if r.Rate > 0 && r.Burst < 1 {
		errs = append(errs, &ValidationError{Field: "registry.burst", Message: "must be at least 1 when rate is set"})
	}
	if r.CacheSize < 0 {
		errs = append(errs, &ValidationError{Field: "registry.cache_size", Message: "must be non-negative"})
	}
	return errs
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
