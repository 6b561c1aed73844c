package repository

import (
	"embed"
	"io/fs"

	"github.com/felixgeelhaar/licensemap/internal/infrastructure/transport"
)

//go:embed bundled
var bundledFiles embed.FS

// BundledBase is the base location of the license repository shipped
// with licensemap.
const BundledBase = transport.BundledScheme + "licenses"

// BundledFS returns the embedded filesystem served under the bundled scheme.
func BundledFS() fs.FS {
	sub, err := fs.Sub(bundledFiles, "bundled")
	if err != nil {
		panic(err)
	}
	return sub
}

// DefaultLicenseNames are the licenses of the bundled repository.
var DefaultLicenseNames = []string{
	"agpl_v3",
	"apache_v2",
	"cddl_v1",
	"fdl_v1_3",
	"gpl_v1",
	"gpl_v2",
	"gpl_v3",
	"lgpl_v2_1",
	"lgpl_v3",
	"mit",
}
