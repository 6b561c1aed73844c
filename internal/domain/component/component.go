// Package component holds the declared/observed license payload returned
// by external dependency-analysis registries.
package component

import "strings"

// orSeparator joins alternative licenses within one entry.
const orSeparator = " or "

// IgnoredLicenses are registry placeholders that carry no license information.
var IgnoredLicenses = []string{
	"Not-Declared",
	"Not Declared",
	"UNSPECIFIED",
	"No-Sources",
	"No Sources",
}

// LicenseEntry is one license reported by a registry.
type LicenseEntry struct {
	LicenseID   string `json:"licenseId"`
	LicenseName string `json:"licenseName"`
}

// Info is the registry's license data for one component. Unknown fields
// in the payload are ignored.
type Info struct {
	DeclaredLicenses []LicenseEntry `json:"declaredLicenses"`
	ObservedLicenses []LicenseEntry `json:"observedLicenses"`
}

// IsEmpty reports whether the payload carries no entries.
func (i *Info) IsEmpty() bool {
	return i == nil || (len(i.DeclaredLicenses) == 0 && len(i.ObservedLicenses) == 0)
}

// LicenseNames returns the union of declared and observed license names
// in first-seen order, with alternatives split and placeholders dropped.
func (i *Info) LicenseNames() []string {
	if i == nil {
		return []string{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	add := func(entries []LicenseEntry) {
		for _, e := range entries {
			raw := e.LicenseID
			if strings.TrimSpace(raw) == "" {
				raw = e.LicenseName
			}
			for _, name := range ParseLicense(raw) {
				if _, ok := seen[name]; ok {
					continue
				}
				seen[name] = struct{}{}
				out = append(out, name)
			}
		}
	}
	add(i.DeclaredLicenses)
	add(i.ObservedLicenses)
	return out
}

// ParseLicense splits s on " or " and returns the trimmed alternatives,
// dropping blanks and placeholder values.
func ParseLicense(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, orSeparator) {
		item = strings.TrimSpace(item)
		if item == "" || isIgnored(item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func isIgnored(s string) bool {
	for _, ignored := range IgnoredLicenses {
		if s == ignored {
			return true
		}
	}
	return false
}
