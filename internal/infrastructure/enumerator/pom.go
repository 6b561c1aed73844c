// Package enumerator lists a project's modules and dependencies from a
// Maven POM tree or an SBOM document.
package enumerator

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deps.dev/util/maven"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/pkg/pathutil"
)

// ErrPOMNotFound is returned when a POM is not in the local repository.
var ErrPOMNotFound = errors.New("pom not found")

// pomExtras carries POM elements the maven model does not expose.
type pomExtras struct {
	Modules       []string `xml:"modules>module"`
	InceptionYear string   `xml:"inceptionYear"`
	Organization  struct {
		Name string `xml:"name"`
		URL  string `xml:"url"`
	} `xml:"organization"`
	Licenses []struct {
		Name string `xml:"name"`
		URL  string `xml:"url"`
	} `xml:"licenses>license"`
	Developers []struct {
		ID           string `xml:"id"`
		Name         string `xml:"name"`
		Email        string `xml:"email"`
		Organization string `xml:"organization"`
		URL          string `xml:"url"`
	} `xml:"developers>developer"`
	SCM struct {
		Connection string `xml:"connection"`
	} `xml:"scm"`
}

// pom is a parsed and interpolated project file.
type pom struct {
	path    string
	project maven.Project
	extras  pomExtras
}

func readPOM(path string) (*pom, error) {
	clean, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid pom path: %w", err)
	}
	data, err := os.ReadFile(clean) // #nosec G304 - path is validated above
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPOMNotFound, clean)
		}
		return nil, fmt.Errorf("failed to read pom: %w", err)
	}
	return parsePOM(clean, data)
}

func parsePOM(path string, data []byte) (*pom, error) {
	p := &pom{path: path}
	if err := xml.Unmarshal(data, &p.project); err != nil {
		return nil, fmt.Errorf("failed to parse pom %s: %w", path, err)
	}
	if err := xml.Unmarshal(data, &p.extras); err != nil {
		return nil, fmt.Errorf("failed to parse pom %s: %w", path, err)
	}
	return p, nil
}

// coordinate returns the project's coordinate after parent inheritance.
func (p *pom) coordinate() artifact.Coordinate {
	c := artifact.NewCoordinate(string(p.project.GroupID), string(p.project.ArtifactID), string(p.project.Version))
	c.Type = string(p.project.Packaging)
	if c.Type == "" {
		c.Type = "jar"
	}
	return c
}

// artifact converts the project to an artifact with its declared licenses.
func (p *pom) artifact() artifact.Artifact {
	a := artifact.New(p.coordinate())
	a.Name = string(p.project.Name)
	a.URL = string(p.project.URL)
	a.Licenses = p.licenses()
	return a
}

// licenses pairs the interpolated names with the urls of the same entries.
func (p *pom) licenses() []artifact.DeclaredLicense {
	var out []artifact.DeclaredLicense
	if len(p.extras.Licenses) > 0 {
		interpolated := len(p.project.Licenses) == len(p.extras.Licenses)
		for i, l := range p.extras.Licenses {
			name := strings.TrimSpace(l.Name)
			if interpolated {
				name = string(p.project.Licenses[i].Name)
			}
			out = append(out, artifact.DeclaredLicense{Name: name, URL: strings.TrimSpace(l.URL)})
		}
		return out
	}
	for _, l := range p.project.Licenses {
		out = append(out, artifact.DeclaredLicense{Name: string(l.Name)})
	}
	return out
}

// inherit merges parent into p. Parent licenses are taken only when the
// child declares none.
func (p *pom) inherit(parent *pom) {
	p.project.MergeParent(parent.project)
	if len(p.extras.Licenses) == 0 {
		p.extras.Licenses = parent.extras.Licenses
	}
	if p.extras.Organization.Name == "" {
		p.extras.Organization = parent.extras.Organization
	}
	if p.extras.InceptionYear == "" {
		p.extras.InceptionYear = parent.extras.InceptionYear
	}
	if len(p.extras.Developers) == 0 {
		p.extras.Developers = parent.extras.Developers
	}
}

// managedVersion returns the version of g:a from dependency management.
func (p *pom) managedVersion(groupID, artifactID string) string {
	for _, d := range p.project.DependencyManagement.Dependencies {
		if string(d.GroupID) == groupID && string(d.ArtifactID) == artifactID {
			return string(d.Version)
		}
	}
	return ""
}

// LocalRepository resolves files in a Maven local repository layout.
type LocalRepository struct {
	root string
}

// NewLocalRepository creates a resolver rooted at dir. An empty dir
// means ~/.m2/repository.
func NewLocalRepository(dir string) *LocalRepository {
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".m2", "repository")
		}
	}
	return &LocalRepository{root: dir}
}

// Root returns the repository directory.
func (r *LocalRepository) Root() string { return r.root }

// Path returns the file for the coordinate with the given extension.
func (r *LocalRepository) Path(c artifact.Coordinate, ext string) string {
	name := c.ArtifactID + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	parts := append([]string{r.root}, strings.Split(c.GroupID, ".")...)
	parts = append(parts, c.ArtifactID, c.Version, name+"."+ext)
	return filepath.Join(parts...)
}

// POM reads the POM of c, following parents found in the repository.
func (r *LocalRepository) POM(c artifact.Coordinate) (*pom, error) {
	pc := c
	pc.Classifier = ""
	return r.loadWithParents(r.Path(pc, "pom"), 0)
}

// Archive returns the artifact file, or "" when it is not present.
func (r *LocalRepository) Archive(c artifact.Coordinate) string {
	ext := c.Type
	switch ext {
	case "", "bundle", "maven-plugin":
		ext = "jar"
	case "pom":
		return ""
	}
	p := r.Path(c, ext)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

const maxParentDepth = 16

func (r *LocalRepository) loadWithParents(path string, depth int) (*pom, error) {
	p, err := readPOM(path)
	if err != nil {
		return nil, err
	}
	if err := r.resolveParent(p, depth); err != nil {
		return nil, err
	}
	if err := p.project.Interpolate(); err != nil {
		return nil, fmt.Errorf("failed to interpolate %s: %w", path, err)
	}
	return p, nil
}

func (r *LocalRepository) resolveParent(p *pom, depth int) error {
	parent := p.project.Parent
	if parent.ArtifactID == "" || depth >= maxParentDepth {
		return nil
	}
	pc := artifact.NewCoordinate(string(parent.GroupID), string(parent.ArtifactID), string(parent.Version))

	var pp *pom
	var err error
	rel := string(parent.RelativePath)
	if rel == "" {
		rel = "../pom.xml"
	}
	candidate := filepath.Join(filepath.Dir(p.path), rel)
	if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
		candidate = filepath.Join(candidate, "pom.xml")
	}
	if local, readErr := readPOM(candidate); readErr == nil && local.coordinateMatches(pc) {
		pp = local
		err = r.resolveParent(pp, depth+1)
	}
	if pp == nil {
		pp, err = readPOM(r.Path(pc, "pom"))
		if err == nil {
			err = r.resolveParent(pp, depth+1)
		}
	}
	if err != nil {
		if errors.Is(err, ErrPOMNotFound) {
			return nil
		}
		return err
	}
	p.inherit(pp)
	return nil
}

func (p *pom) coordinateMatches(c artifact.Coordinate) bool {
	return string(p.project.ArtifactID) == c.ArtifactID &&
		(string(p.project.GroupID) == c.GroupID || string(p.project.Parent.GroupID) == c.GroupID)
}
