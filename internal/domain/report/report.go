// Package report holds the result of one license resolution run.
package report

import (
	"time"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/domain/licensemap"
)

// Source names where an artifact's licenses came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceMissing  Source = "missing"
	SourceDeclared Source = "declared"
	SourceInfoFile Source = "infofile"
	SourceExternal Source = "external"
	SourceNone     Source = "none"
)

// Resolution records how one artifact was resolved.
type Resolution struct {
	Artifact artifact.Artifact
	Source   Source
	Raw      []string // names as found
	Keys     []string // canonical keys inserted into the map
	Matchers []string // matcher that produced each key
}

// Report is the aggregated outcome for a project.
type Report struct {
	Project     artifact.Coordinate
	Modules     []artifact.Coordinate
	Licenses    *licensemap.LicenseMap
	Resolutions map[string]Resolution
	Extended    map[string]*infofile.ExtendedInfo
	GeneratedAt time.Time
}

// New creates an empty report for project.
func New(project artifact.Coordinate) *Report {
	return &Report{
		Project:     project,
		Licenses:    licensemap.New(),
		Resolutions: make(map[string]Resolution),
		Extended:    make(map[string]*infofile.ExtendedInfo),
		GeneratedAt: time.Now().UTC(),
	}
}

// Unknown returns the artifacts without a resolved license.
func (r *Report) Unknown() []artifact.Artifact {
	return r.Licenses.UnknownDependencies()
}

// HasUnknown reports whether any artifact is unresolved.
func (r *Report) HasUnknown() bool {
	return len(r.Unknown()) > 0
}

// Summary counts artifacts and keys.
type Summary struct {
	Artifacts int `json:"artifacts"`
	Licenses  int `json:"licenses"`
	Unknown   int `json:"unknown"`
}

// Summary returns the report totals. The unknown sentinel is not
// counted as a license.
func (r *Report) Summary() Summary {
	s := Summary{
		Artifacts: len(r.Licenses.Artifacts()),
		Unknown:   len(r.Unknown()),
	}
	for _, k := range r.Licenses.Keys() {
		if k != licensemap.UnknownLicense {
			s.Licenses++
		}
	}
	return s
}
