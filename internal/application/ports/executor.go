package ports

import (
	"context"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

// ArtifactFunc processes the artifact at index i of a batch.
type ArtifactFunc func(ctx context.Context, i int, a artifact.Artifact)

// ArtifactExecutor runs fn once per artifact, possibly concurrently.
// Each call owns its artifact; callers store results by index.
type ArtifactExecutor interface {
	Each(ctx context.Context, artifacts []artifact.Artifact, fn ArtifactFunc) error
}

// DependencySelector picks the dependencies that take part in
// resolution, deduplicated and in a stable order.
type DependencySelector interface {
	Select(project *Project) []artifact.Artifact
}
