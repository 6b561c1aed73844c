package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/licensemap/internal/infrastructure/spdx"
)

var spdxCmd = &cobra.Command{
	Use:   "spdx [id]",
	Short: "Show the embedded SPDX license list",
	Long: `Spdx prints the version of the embedded SPDX license list, or the
entry of one license identifier.

Examples:
  licensemap spdx
  licensemap spdx Apache-2.0
  licensemap spdx MIT --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSPDX,
}

func init() {
	rootCmd.AddCommand(spdxCmd)
}

type spdxSummary struct {
	Version     string `json:"version"`
	ReleaseDate string `json:"release_date"`
	Count       int    `json:"count"`
}

func runSPDX(cmd *cobra.Command, args []string) error {
	return showSPDX(cmd.OutOrStdout(), spdx.Latest(), args, jsonOutput)
}

func showSPDX(out io.Writer, list *spdx.LicenseList, args []string, asJSON bool) error {
	var v any
	if len(args) == 0 {
		v = spdxSummary{
			Version:     list.LicenseListVersion(),
			ReleaseDate: list.ReleaseDate(),
			Count:       list.Len(),
		}
	} else {
		info, ok := list.Get(args[0])
		if !ok {
			return fmt.Errorf("unknown spdx license id: %s", args[0])
		}
		v = info
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	bold := color.New(color.Bold).SprintFunc()
	switch x := v.(type) {
	case spdxSummary:
		fmt.Fprintf(out, "%s %s\n", bold("SPDX license list"), x.Version)
		fmt.Fprintf(out, "  Released: %s\n", x.ReleaseDate)
		fmt.Fprintf(out, "  Licenses: %d\n", x.Count)
	case spdx.LicenseInfo:
		if !x.HasDetails() {
			fmt.Fprintf(out, "%s\n", bold(x.LicenseID))
			fmt.Fprintf(out, "  Deprecated:   %t\n", x.IsDeprecatedLicenseID)
			fmt.Fprintf(out, "  Details:      %s\n", x.DetailsURL)
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", bold(x.LicenseID), x.Name)
		fmt.Fprintf(out, "  OSI approved: %t\n", x.IsOsiApproved)
		fmt.Fprintf(out, "  FSF libre:    %t\n", x.IsFsfLibre)
		fmt.Fprintf(out, "  Deprecated:   %t\n", x.IsDeprecatedLicenseID)
		if len(x.SeeAlso) > 0 {
			fmt.Fprintf(out, "  See also:     %s\n", strings.Join(x.SeeAlso, "\n                "))
		}
	}
	return nil
}
