package ports

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/component"
)

// ErrComponentNotFound is returned when the registry has no data for a coordinate.
var ErrComponentNotFound = errors.New("component not found")

// ComponentResolver fetches declared and observed license data for one
// artifact from an external registry.
type ComponentResolver interface {
	// Resolve returns the registry payload for the coordinate.
	Resolve(ctx context.Context, c artifact.Coordinate) (*component.Info, error)
}

// ComponentResolverFunc adapts a function to ComponentResolver.
type ComponentResolverFunc func(ctx context.Context, c artifact.Coordinate) (*component.Info, error)

// Resolve calls f.
func (f ComponentResolverFunc) Resolve(ctx context.Context, c artifact.Coordinate) (*component.Info, error) {
	return f(ctx, c)
}
