package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/licensemap/internal/domain/license"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/bootstrap"
)

var licensesDetail bool

var licensesCmd = &cobra.Command{
	Use:   "licenses",
	Short: "List the licenses known to the license store",
	Long: `Licenses lists every license of the configured license repositories.

With --detail the header text of each license is printed as well.

Examples:
  licensemap licenses
  licensemap licenses --detail
  licensemap licenses --repository https://example.org/licenses --json`,
	Args: cobra.NoArgs,
	RunE: runLicenses,
}

func init() {
	licensesCmd.Flags().BoolVar(&licensesDetail, "detail", false, "print the header of each license")
	licensesCmd.Flags().StringSliceVar(&repositories, "repository", nil, "additional license repositories")

	rootCmd.AddCommand(licensesCmd)
}

type licenseEntry struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SPDX        string   `json:"spdx,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	Header      string   `json:"header,omitempty"`
}

func runLicenses(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	defer func() { _ = logger.Sync(ctx) }()

	rt, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	var entries []licenseEntry
	for _, l := range rt.Store.Licenses() {
		e := toLicenseEntry(l)
		if licensesDetail {
			header, err := rt.Store.HeaderContent(ctx, l.Name())
			if err != nil {
				return err
			}
			e.Header = header
		}
		entries = append(entries, e)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	printLicenses(cmd.OutOrStdout(), entries)
	return nil
}

func toLicenseEntry(l license.License) licenseEntry {
	return licenseEntry{
		Name:        l.Name(),
		Description: l.Description(),
		SPDX:        l.SPDXID(),
		Aliases:     l.Aliases(),
	}
}

func printLicenses(out io.Writer, entries []licenseEntry) {
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(out, "%s (%d)\n\n", bold("Available licenses"), len(entries))
	width := 0
	for _, e := range entries {
		if len(e.Name) > width {
			width = len(e.Name)
		}
	}
	for _, e := range entries {
		line := fmt.Sprintf("  * %-*s : %s", width, e.Name, e.Description)
		if e.SPDX != "" {
			line += " " + dim("["+e.SPDX+"]")
		}
		fmt.Fprintln(out, line)
		if e.Header != "" {
			for _, h := range strings.Split(strings.TrimRight(e.Header, "\n"), "\n") {
				fmt.Fprintf(out, "      %s\n", h)
			}
			fmt.Fprintln(out)
		}
	}
}
