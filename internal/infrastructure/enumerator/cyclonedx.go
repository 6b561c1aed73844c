package enumerator

import (
	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

type cycloneDXBOM struct {
	BOMFormat   string               `json:"bomFormat"`
	SpecVersion string               `json:"specVersion"`
	Metadata    cycloneDXMetadata    `json:"metadata"`
	Components  []cycloneDXComponent `json:"components"`
}

type cycloneDXMetadata struct {
	Component *cycloneDXComponent `json:"component,omitempty"`
}

type cycloneDXComponent struct {
	Type         string               `json:"type"`
	Name         string               `json:"name"`
	Group        string               `json:"group,omitempty"`
	Version      string               `json:"version"`
	Scope        string               `json:"scope,omitempty"`
	Licenses     []cycloneDXLicense   `json:"licenses,omitempty"`
	PURL         string               `json:"purl,omitempty"`
	ExternalRefs []cycloneDXReference `json:"externalReferences,omitempty"`
	Components   []cycloneDXComponent `json:"components,omitempty"`
}

type cycloneDXLicense struct {
	License struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
		URL  string `json:"url,omitempty"`
	} `json:"license"`
	Expression string `json:"expression,omitempty"`
}

type cycloneDXReference struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func (c cycloneDXComponent) artifact() (artifact.Artifact, bool) {
	coord, err := artifact.FromPURL(c.PURL)
	if err != nil {
		return artifact.Artifact{}, false
	}
	a := artifact.New(coord)
	a.Name = c.Name
	a.Scope = artifact.ScopeCompile
	if c.Scope == "excluded" {
		a.Scope = artifact.ScopeTest
	}
	for _, ref := range c.ExternalRefs {
		if ref.Type == "website" {
			a.URL = ref.URL
			break
		}
	}
	for _, l := range c.Licenses {
		switch {
		case l.Expression != "":
			a.Licenses = append(a.Licenses, artifact.DeclaredLicense{Name: l.Expression})
		case l.License.ID != "":
			a.Licenses = append(a.Licenses, artifact.DeclaredLicense{Name: l.License.ID, URL: l.License.URL})
		default:
			a.Licenses = append(a.Licenses, artifact.DeclaredLicense{Name: l.License.Name, URL: l.License.URL})
		}
	}
	return a, true
}

func (b *cycloneDXBOM) project() *ports.Project {
	project := &ports.Project{}
	if mc := b.Metadata.Component; mc != nil {
		if a, ok := mc.artifact(); ok {
			project.Root = a
		} else {
			project.Root = artifact.New(artifact.NewCoordinate(mc.Group, mc.Name, mc.Version))
		}
	}

	module := artifact.Module{Artifact: project.Root}
	var walk func([]cycloneDXComponent)
	walk = func(cs []cycloneDXComponent) {
		for _, c := range cs {
			if a, ok := c.artifact(); ok {
				module.Dependencies = append(module.Dependencies, a)
			}
			walk(c.Components)
		}
	}
	walk(b.Components)

	project.Modules = []artifact.Module{module}
	return project
}
