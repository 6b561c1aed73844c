// Package workspace runs per-artifact resolution concurrently and
// selects which project modules and dependencies take part.
package workspace

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

// DefaultWorkers is the concurrency used when none is configured.
const DefaultWorkers = 4

// ProgressFunc is called after each artifact completes.
type ProgressFunc func(a artifact.Artifact, completed, total int)

// ParallelResolver runs a function over artifacts on a bounded number of
// goroutines.
type ParallelResolver struct {
	maxWorkers int
	progress   ProgressFunc
}

var _ ports.ArtifactExecutor = (*ParallelResolver)(nil)

// ParallelResolverOption is a functional option for ParallelResolver.
type ParallelResolverOption func(*ParallelResolver)

// WithMaxWorkers sets the maximum number of concurrent workers.
func WithMaxWorkers(n int) ParallelResolverOption {
	return func(p *ParallelResolver) {
		if n > 0 {
			p.maxWorkers = n
		}
	}
}

// WithProgress sets a progress callback. Calls are serialized.
func WithProgress(fn ProgressFunc) ParallelResolverOption {
	return func(p *ParallelResolver) { p.progress = fn }
}

// NewParallelResolver creates a new parallel resolver.
func NewParallelResolver(opts ...ParallelResolverOption) *ParallelResolver {
	p := &ParallelResolver{
		maxWorkers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Workers returns the concurrency limit.
func (p *ParallelResolver) Workers() int { return p.maxWorkers }

// Each implements ports.ArtifactExecutor. Artifacts not yet started when
// ctx is cancelled are skipped and the context error is returned.
func (p *ParallelResolver) Each(ctx context.Context, artifacts []artifact.Artifact, fn ports.ArtifactFunc) error {
	if len(artifacts) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxWorkers)

	var (
		mu        sync.Mutex
		completed int
	)
	total := len(artifacts)

	for i, a := range artifacts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i, a)

			if p.progress != nil {
				mu.Lock()
				completed++
				p.progress(a, completed, total)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
