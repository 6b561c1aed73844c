package enumerator

import (
	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

type spdxDocument struct {
	SPDXID            string             `json:"SPDXID"`
	SPDXVersion       string             `json:"spdxVersion"`
	Name              string             `json:"name"`
	DocumentDescribes []string           `json:"documentDescribes,omitempty"`
	Packages          []spdxPackage      `json:"packages,omitempty"`
	Relationships     []spdxRelationship `json:"relationships,omitempty"`
}

type spdxPackage struct {
	SPDXID           string            `json:"SPDXID"`
	Name             string            `json:"name"`
	VersionInfo      string            `json:"versionInfo,omitempty"`
	Homepage         string            `json:"homepage,omitempty"`
	LicenseConcluded string            `json:"licenseConcluded,omitempty"`
	LicenseDeclared  string            `json:"licenseDeclared,omitempty"`
	ExternalRefs     []spdxExternalRef `json:"externalRefs,omitempty"`
}

type spdxExternalRef struct {
	ReferenceCategory string `json:"referenceCategory"`
	ReferenceType     string `json:"referenceType"`
	ReferenceLocator  string `json:"referenceLocator"`
}

type spdxRelationship struct {
	SPDXElementID      string `json:"spdxElementId"`
	RelationshipType   string `json:"relationshipType"`
	RelatedSPDXElement string `json:"relatedSpdxElement"`
}

func (p spdxPackage) purl() string {
	for _, ref := range p.ExternalRefs {
		if ref.ReferenceType == "purl" {
			return ref.ReferenceLocator
		}
	}
	return ""
}

// rootIDs returns the packages the document describes.
func (d *spdxDocument) rootIDs() map[string]bool {
	out := map[string]bool{}
	for _, id := range d.DocumentDescribes {
		out[id] = true
	}
	for _, r := range d.Relationships {
		if r.SPDXElementID == "SPDXRef-DOCUMENT" && r.RelationshipType == "DESCRIBES" {
			out[r.RelatedSPDXElement] = true
		}
	}
	return out
}

func (d *spdxDocument) project() *ports.Project {
	roots := d.rootIDs()
	project := &ports.Project{}
	var module artifact.Module

	for _, pkg := range d.Packages {
		c, err := artifact.FromPURL(pkg.purl())
		if err != nil {
			continue
		}
		a := artifact.New(c)
		a.Name = pkg.Name
		a.URL = informative(pkg.Homepage)
		a.Scope = artifact.ScopeCompile

		// Declared first, then concluded.
		lic := informative(pkg.LicenseDeclared)
		if lic == "" {
			lic = informative(pkg.LicenseConcluded)
		}
		if lic != "" {
			a.Licenses = []artifact.DeclaredLicense{{Name: lic}}
		}

		if roots[pkg.SPDXID] && project.Root.IsZero() {
			project.Root = a
			continue
		}
		module.Dependencies = append(module.Dependencies, a)
	}

	if project.Root.IsZero() {
		project.Root = artifact.New(artifact.NewCoordinate("", d.Name, ""))
	}
	module.Artifact = project.Root
	project.Modules = []artifact.Module{module}
	return project
}
