package ports

import (
	"context"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
)

// Project is the enumerated module tree. The root module comes first.
type Project struct {
	Root    artifact.Artifact
	Modules []artifact.Module
}

// DependencyEnumerator lists a project's modules and their resolved
// dependencies. Results are read-only input to resolution.
type DependencyEnumerator interface {
	// Enumerate returns the project and its modules.
	Enumerate(ctx context.Context) (*Project, error)
}

// ContentFile is one candidate file inside an artifact.
type ContentFile struct {
	Name string
	Data []byte
}

// ArtifactContents reads info-file candidates and bundle metadata from
// an artifact's archive or directory.
type ArtifactContents interface {
	// Candidates returns the files whose names may hold license or notice text.
	Candidates(ctx context.Context, a artifact.Artifact) ([]ContentFile, error)

	// Manifest returns the archive manifest attributes, if any.
	Manifest(ctx context.Context, a artifact.Artifact) (map[string]string, error)
}

// MetadataSource supplies project metadata (organization, developers,
// scm) for an artifact, such as its POM.
type MetadataSource interface {
	// Describe fills e with what is known about its artifact.
	Describe(ctx context.Context, e *infofile.ExtendedInfo) error
}
