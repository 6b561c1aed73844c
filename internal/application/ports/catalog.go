package ports

import "github.com/felixgeelhaar/licensemap/internal/domain/license"

// LicenseIndex is the read-only view of the license store used during
// resolution.
type LicenseIndex interface {
	// Lookup resolves a name, alias or SPDX id to a canonical license.
	Lookup(name string) (license.License, bool)

	// LookupURL resolves the URL of a published license text.
	LookupURL(u string) (license.License, bool)
}

// LicenseCatalog is the SPDX identifier catalog.
type LicenseCatalog interface {
	// Has reports whether id is an exact SPDX identifier.
	Has(id string) bool

	// IDs returns every identifier in the catalog.
	IDs() []string

	// IDForURL returns the identifier of the license published at u.
	IDForURL(u string) (string, bool)

	// Canonicalize returns the canonical form of a valid SPDX expression.
	Canonicalize(expr string) (string, error)
}
