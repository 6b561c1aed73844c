// Package artifact holds the dependency model consumed by license resolution.
package artifact

import "strings"

// Dependency scopes with special handling.
const (
	ScopeCompile = "compile"
	ScopeTest    = "test"
	ScopeSystem  = "system"
)

// DeclaredLicense is a license as stated in project metadata.
type DeclaredLicense struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Artifact is one resolved dependency. The enumerator owns it; the
// resolution pipeline treats it as read-only.
type Artifact struct {
	Coordinate
	Name     string            // project display name, may be empty
	URL      string            // project home page
	Scope    string
	Licenses []DeclaredLicense // licenses from project metadata
	Location string            // archive or directory holding the artifact contents
}

// New creates an artifact for the coordinate.
func New(c Coordinate) Artifact {
	return Artifact{Coordinate: c}
}

// ID returns the identity used for set membership.
func (a Artifact) ID() string {
	return a.FullID()
}

// DisplayName returns the project name, or the artifactId when unnamed.
func (a Artifact) DisplayName() string {
	if n := strings.TrimSpace(a.Name); n != "" {
		return n
	}
	return a.ArtifactID
}

// Label formats the artifact for text reports: "Name (g:a:v - url)".
func (a Artifact) Label() string {
	var sb strings.Builder
	sb.WriteString(a.DisplayName())
	sb.WriteString(" (")
	sb.WriteString(a.Coordinate.String())
	sb.WriteString(" - ")
	if a.URL != "" {
		sb.WriteString(a.URL)
	} else {
		sb.WriteString("no url defined")
	}
	sb.WriteString(")")
	return sb.String()
}

// IsSystemScoped reports whether the artifact is system scoped.
func (a Artifact) IsSystemScoped() bool {
	return a.Scope == ScopeSystem
}

// Module is a project module with its resolved dependencies.
type Module struct {
	Artifact
	Dependencies []Artifact
}

// Less orders artifacts by coordinate string, then full id.
func Less(a, b Artifact) bool {
	as, bs := a.Coordinate.String(), b.Coordinate.String()
	if as != bs {
		return as < bs
	}
	return a.ID() < b.ID()
}

// LessByName orders artifacts by display name ignoring case, then by
// coordinate so equal names never collapse.
func LessByName(a, b Artifact) bool {
	an, bn := strings.ToLower(a.DisplayName()), strings.ToLower(b.DisplayName())
	if an != bn {
		return an < bn
	}
	return Less(a, b)
}
