package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/config"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/writers"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/internal/log/zaplog"
	"github.com/felixgeelhaar/licensemap/pkg/exitcode"
	"github.com/felixgeelhaar/licensemap/pkg/redact"
)

// Version information set at build time
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

// Global flags
var (
	cfgFile    string
	verbosity  string
	noColor    bool
	jsonOutput bool
)

// rootCmd is the base command for licensemap
var rootCmd = &cobra.Command{
	Use:   "licensemap",
	Short: "licensemap - License resolution for Maven projects",
	Long: `licensemap resolves the license of every dependency of a Maven
project or SBOM and groups the dependencies by canonical license.

Licenses come from override files, declared POM metadata, LICENSE and
NOTICE files inside the artifacts, and an optional external registry.

Examples:
  licensemap resolve                       # Resolve ./pom.xml
  licensemap resolve --sbom bom.json       # Resolve an SBOM
  licensemap resolve --format thirdparty   # THIRD-PARTY listing
  licensemap licenses --detail             # Show the license store
  licensemap spdx Apache-2.0               # Show an SPDX entry`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Configure colors
		if noColor {
			color.NoColor = true
		}
		return nil
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "licensemap %s\n", version)
		fmt.Fprintf(out, "  Commit:  %s\n", commit)
		fmt.Fprintf(out, "  Built:   %s\n", buildDate)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: .licensemap/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&verbosity, "verbosity", "v", "normal", "verbosity level (quiet, normal, verbose, debug)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	rootCmd.AddCommand(versionCmd)
}

// exitError ends a command with a specific exit code. A nil err exits
// silently.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return exitcode.Description(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// Execute runs the root command
func Execute() int {
	return execute(rootCmd, os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return exitcode.Success
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, redact.Default.RedactString(ee.err.Error()))
		}
		return ee.code
	}
	fmt.Fprintln(stderr, redact.Default.RedactString(err.Error()))
	return exitcode.Error
}

// loadConfig loads the configuration and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.NewLoader().LoadWithOverrides(cfgFile, cliOverrides(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// cliOverrides collects the flags explicitly set on cmd.
func cliOverrides(cmd *cobra.Command) *config.CLIOverrides {
	o := &config.CLIOverrides{}
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("verbosity") {
		o.Verbosity = &verbosity
	}
	if noColor {
		o.NoColor = &noColor
	}
	if jsonOutput {
		f := "json"
		o.Format = &f
	}
	if changed("format") {
		o.Format = &formatFlag
	}
	if changed("output") {
		o.OutputPath = &outputFlag
	}

	if changed("repository") {
		o.Repositories = repositories
	}
	if changed("local-repository") {
		o.LocalRepository = &localRepository
	}
	if changed("overrides") {
		o.Overrides = &overridesPath
	}
	if changed("missing") {
		o.MissingPath = &missingPath
	}
	if changed("write-missing") {
		o.WriteMissing = &writeMissing
	}
	if changed("registry") {
		o.RegistryKind = &registryKind
	}
	if changed("registry-url") {
		o.RegistryURL = &registryURL
	}
	if changed("workers") {
		o.Workers = &workers
	}
	return o
}

// newLogger creates the diagnostic logger. Diagnostics go to stderr and
// follow the output verbosity.
func newLogger(cfg *config.Config, stderr io.Writer) *zaplog.Logger {
	level := log.LevelWarn
	switch cfg.GetVerbosity() {
	case ports.VerbosityQuiet:
		level = log.LevelError
	case ports.VerbosityVerbose:
		level = log.LevelInfo
	case ports.VerbosityDebug:
		level = log.LevelDebug
	}
	return zaplog.New(level,
		zaplog.WithOutput(stderr),
		zaplog.WithJSON(cfg.GetOutputFormat() == ports.OutputFormatJSON),
	)
}

// createWriter creates the appropriate writer based on config
func createWriter(cmd *cobra.Command, cfg *config.Config) (ports.ReportWriter, error) {
	factory := writers.NewFactory(writers.WithStreams(cmd.OutOrStdout(), cmd.ErrOrStderr()))

	outputConfig := cfg.ToOutputConfig()
	outputConfig.Color = outputConfig.Color && !noColor

	return factory.Create(outputConfig)
}

// signalContext returns a context cancelled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
	return ctx, cancel
}

func closeWriter(w ports.ReportWriter) {
	if c, ok := w.(io.Closer); ok {
		_ = c.Close()
	}
}
