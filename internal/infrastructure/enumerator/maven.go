package enumerator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"deps.dev/util/maven"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// MavenEnumerator walks a reactor POM and its modules. Dependencies are
// the direct dependencies of each module; their metadata and archives
// come from the local repository.
type MavenEnumerator struct {
	pomPath string
	repo    *LocalRepository
	logger  log.Logger
}

var (
	_ ports.DependencyEnumerator = (*MavenEnumerator)(nil)
	_ ports.MetadataSource       = (*MavenEnumerator)(nil)
)

// MavenOption configures a MavenEnumerator.
type MavenOption func(*MavenEnumerator)

// WithLocalRepository sets the Maven local repository directory.
func WithLocalRepository(dir string) MavenOption {
	return func(e *MavenEnumerator) {
		e.repo = NewLocalRepository(dir)
	}
}

// WithMavenLogger sets the logger.
func WithMavenLogger(l log.Logger) MavenOption {
	return func(e *MavenEnumerator) {
		e.logger = log.OrNop(l)
	}
}

// NewMavenEnumerator creates an enumerator for the POM at path. A
// directory means its pom.xml.
func NewMavenEnumerator(path string, opts ...MavenOption) *MavenEnumerator {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, "pom.xml")
	}
	e := &MavenEnumerator{
		pomPath: path,
		repo:    NewLocalRepository(""),
		logger:  log.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enumerate implements ports.DependencyEnumerator.
func (e *MavenEnumerator) Enumerate(ctx context.Context) (*ports.Project, error) {
	root, err := e.repo.loadWithParents(e.pomPath, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	project := &ports.Project{Root: root.artifact()}
	seen := map[string]bool{}
	if err := e.collect(ctx, root, project, seen); err != nil {
		return nil, err
	}
	return project, nil
}

func (e *MavenEnumerator) collect(ctx context.Context, p *pom, project *ports.Project, seen map[string]bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if seen[p.path] {
		return nil
	}
	seen[p.path] = true

	module := artifact.Module{Artifact: p.artifact()}
	module.Location = filepath.Dir(p.path)
	for _, d := range p.project.Dependencies {
		module.Dependencies = append(module.Dependencies, e.dependency(ctx, p, d))
	}
	project.Modules = append(project.Modules, module)

	for _, m := range p.extras.Modules {
		path := filepath.Join(filepath.Dir(p.path), m)
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, "pom.xml")
		}
		child, err := e.repo.loadWithParents(path, 0)
		if err != nil {
			return fmt.Errorf("failed to load module %s: %w", m, err)
		}
		if err := e.collect(ctx, child, project, seen); err != nil {
			return err
		}
	}
	return nil
}

func (e *MavenEnumerator) dependency(ctx context.Context, owner *pom, d maven.Dependency) artifact.Artifact {
	version := string(d.Version)
	if version == "" {
		version = owner.managedVersion(string(d.GroupID), string(d.ArtifactID))
	}
	c := artifact.NewCoordinate(string(d.GroupID), string(d.ArtifactID), version)
	c.Type = string(d.Type)
	c.Classifier = string(d.Classifier)

	a := artifact.New(c)
	a.Scope = string(d.Scope)
	if a.Scope == "" {
		a.Scope = artifact.ScopeCompile
	}

	dp, err := e.repo.POM(c)
	if err != nil {
		log.Debug(ctx, e.logger, "dependency pom unavailable", log.String("artifact", c.String()), log.Err(err))
	} else {
		a.Name = string(dp.project.Name)
		a.URL = string(dp.project.URL)
		a.Licenses = dp.licenses()
	}
	a.Location = e.repo.Archive(c)
	return a
}

// Describe implements ports.MetadataSource from the artifact's POM.
func (e *MavenEnumerator) Describe(_ context.Context, ext *infofile.ExtendedInfo) error {
	p, err := e.repo.POM(ext.Artifact.Coordinate)
	if err != nil {
		return err
	}
	describe(p, ext)
	return nil
}

func describe(p *pom, ext *infofile.ExtendedInfo) {
	if n := string(p.project.Name); n != "" {
		ext.Name = n
	}
	if u := string(p.project.URL); u != "" {
		ext.URL = u
	}
	ext.InceptionYear = p.extras.InceptionYear
	ext.Organization = infofile.Organization{Name: p.extras.Organization.Name, URL: p.extras.Organization.URL}
	ext.SCM = infofile.SCM{
		URL:        string(p.project.SCM.URL),
		Tag:        string(p.project.SCM.Tag),
		Connection: p.extras.SCM.Connection,
	}
	ext.Developers = ext.Developers[:0]
	for _, d := range p.extras.Developers {
		ext.Developers = append(ext.Developers, infofile.Developer{
			ID:           d.ID,
			Name:         d.Name,
			Email:        d.Email,
			Organization: d.Organization,
			URL:          d.URL,
		})
	}
}
