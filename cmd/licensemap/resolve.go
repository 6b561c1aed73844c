package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/licensemap/internal/application/usecases"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/bootstrap"
	"github.com/felixgeelhaar/licensemap/pkg/exitcode"
)

// resolve flags
var (
	pomPath         string
	sbomPath        string
	overridesPath   string
	missingPath     string
	writeMissing    bool
	failOnUnknown   bool
	formatFlag      string
	outputFlag      string
	repositories    []string
	localRepository string
	registryKind    string
	registryURL     string
	workers         int
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Resolve the licenses of every dependency",
	Long: `Resolve enumerates the dependencies of a Maven project or an SBOM,
resolves the license of each one and prints the dependencies grouped by
license.

The optional path names the project POM or its directory. It defaults to
the current directory.

Examples:
  licensemap resolve
  licensemap resolve ./service --overrides overrides.properties
  licensemap resolve --sbom bom.json --format json --output licenses.json
  licensemap resolve --fail-on-unknown`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	f := resolveCmd.Flags()
	f.StringVar(&pomPath, "pom", "", "project POM file or directory")
	f.StringVar(&sbomPath, "sbom", "", "CycloneDX or SPDX SBOM to resolve instead of a POM")
	f.StringVar(&overridesPath, "overrides", "", "overrides file or URL")
	f.StringVar(&missingPath, "missing", "", "missing-licenses file")
	f.BoolVar(&writeMissing, "write-missing", false, "write unresolved dependencies to the missing file")
	f.BoolVar(&failOnUnknown, "fail-on-unknown", false, "exit with code 1 when a license stays unknown")
	f.StringVarP(&formatFlag, "format", "f", "console", "output format (console, json, thirdparty)")
	f.StringVarP(&outputFlag, "output", "o", "", "write the report to a file")
	f.StringSliceVar(&repositories, "repository", nil, "additional license repositories")
	f.StringVar(&localRepository, "local-repository", "", "local Maven repository")
	f.StringVar(&registryKind, "registry", "", "external registry (none, http, depsdev)")
	f.StringVar(&registryURL, "registry-url", "", "external registry URL or template")
	f.IntVar(&workers, "workers", 0, "number of parallel resolution workers")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	defer func() { _ = logger.Sync(ctx) }()

	writer, err := createWriter(cmd, cfg)
	if err != nil {
		return fmt.Errorf("failed to create writer: %w", err)
	}
	defer closeWriter(writer)

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	target := bootstrap.Target{POM: pomPath, SBOM: sbomPath}
	if target.POM == "" {
		target.POM = "."
		if len(args) > 0 {
			target.POM = args[0]
		}
	}

	uc, err := rt.UseCase(ctx, target, writer)
	if err != nil {
		return err
	}

	out, err := uc.Execute(ctx, rt.Input())
	unknownDeps := errors.Is(err, usecases.ErrUnknownDependency)
	if err != nil && !unknownDeps {
		return fmt.Errorf("resolution failed: %w", err)
	}

	if writeErr := writer.WriteReport(out.Report); writeErr != nil {
		return fmt.Errorf("failed to write report: %w", writeErr)
	}
	if unknownDeps {
		_ = writer.WriteError(err)
	}
	if flushErr := writer.Flush(); flushErr != nil {
		return fmt.Errorf("failed to flush output: %w", flushErr)
	}

	if unknownDeps {
		return &exitError{code: exitcode.UnknownLicenses}
	}
	if code := exitcode.FromResult(out.Report.HasUnknown(), failOnUnknown); code != exitcode.Success {
		return &exitError{code: code}
	}
	return nil
}
