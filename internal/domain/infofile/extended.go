package infofile

import "github.com/felixgeelhaar/licensemap/internal/domain/artifact"

// Organization is the project's owning organization.
type Organization struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Developer is one project developer.
type Developer struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Organization string `json:"organization,omitempty"`
	URL          string `json:"url,omitempty"`
}

// SCM is the project's source control location.
type SCM struct {
	URL        string `json:"url,omitempty"`
	Connection string `json:"connection,omitempty"`
	Tag        string `json:"tag,omitempty"`
}

// ExtendedInfo aggregates everything known about one artifact beyond
// its declared licenses. One resolution pass owns each instance.
type ExtendedInfo struct {
	Artifact             artifact.Artifact
	Name                 string
	InfoFiles            []*InfoFile
	ImplementationVendor string
	BundleVendor         string
	BundleLicense        string
	InceptionYear        string
	Organization         Organization
	Developers           []Developer
	SCM                  SCM
	URL                  string
}

// NewExtendedInfo creates an ExtendedInfo seeded from the artifact.
func NewExtendedInfo(a artifact.Artifact) *ExtendedInfo {
	return &ExtendedInfo{Artifact: a, Name: a.Name, URL: a.URL}
}

// AddInfoFile appends f unless a file with the same fingerprint is
// already present.
func (e *ExtendedInfo) AddInfoFile(f *InfoFile) bool {
	for _, existing := range e.InfoFiles {
		if existing.NormalizedContent() == f.NormalizedContent() {
			return false
		}
	}
	e.InfoFiles = append(e.InfoFiles, f)
	return true
}

// FilesOfType returns the info files with the given type.
func (e *ExtendedInfo) FilesOfType(t Type) []*InfoFile {
	var out []*InfoFile
	for _, f := range e.InfoFiles {
		if f.Type() == t {
			out = append(out, f)
		}
	}
	return out
}

// CopyrightLines returns the distinct copyright lines across all files.
func (e *ExtendedInfo) CopyrightLines() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range e.InfoFiles {
		for _, l := range f.CopyrightLines() {
			if _, ok := seen[l]; ok {
				continue
			}
			seen[l] = struct{}{}
			out = append(out, l)
		}
	}
	return out
}
