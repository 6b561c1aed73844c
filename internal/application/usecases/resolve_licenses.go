// Package usecases orchestrates license resolution runs.
package usecases

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/application/resolution"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/domain/override"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// ResolveLicensesInput contains the input for the ResolveLicenses use case.
type ResolveLicensesInput struct {
	// OverridesLocation is a path or URL of the override file.
	OverridesLocation string

	// MissingPath is the missing file. WriteMissing rewrites it.
	MissingPath  string
	WriteMissing bool

	// Merges are main key first, then the keys folded into it.
	Merges [][]string

	// ExpectedDependencies are ids that must match a dependency.
	ExpectedDependencies []string

	// FailOnUnknownDependencies selects the failing strategy for
	// unmatched expected dependencies.
	FailOnUnknownDependencies bool
}

// ResolveLicensesOutput contains the result of the ResolveLicenses use case.
type ResolveLicensesOutput struct {
	Report *report.Report

	// UnusedOverrides are override keys no dependency matched.
	UnusedOverrides []string

	// StaleMissing are keys dropped from the missing file.
	StaleMissing []string
}

// ResolveLicensesUseCase enumerates a project, resolves every
// dependency and aggregates the results into a license map.
type ResolveLicensesUseCase struct {
	enumerator ports.DependencyEnumerator
	resolver   *resolution.Resolver
	selector   ports.DependencySelector
	executor   ports.ArtifactExecutor
	overrides  ports.OverrideStore
	strategy   ports.UnknownDependencyStrategy
	writer     ports.ReportWriter
	logger     log.Logger
}

// Option configures the use case.
type Option func(*ResolveLicensesUseCase)

// WithSelector sets the dependency selector.
func WithSelector(s ports.DependencySelector) Option {
	return func(uc *ResolveLicensesUseCase) { uc.selector = s }
}

// WithExecutor sets the executor. Without one artifacts resolve sequentially.
func WithExecutor(e ports.ArtifactExecutor) Option {
	return func(uc *ResolveLicensesUseCase) { uc.executor = e }
}

// WithOverrideStore sets the store for override and missing files.
func WithOverrideStore(s ports.OverrideStore) Option {
	return func(uc *ResolveLicensesUseCase) { uc.overrides = s }
}

// WithUnknownDependencyStrategy replaces the strategy chosen from the input.
func WithUnknownDependencyStrategy(s ports.UnknownDependencyStrategy) Option {
	return func(uc *ResolveLicensesUseCase) { uc.strategy = s }
}

// WithProgressWriter sets where progress messages go.
func WithProgressWriter(w ports.ReportWriter) Option {
	return func(uc *ResolveLicensesUseCase) { uc.writer = w }
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(uc *ResolveLicensesUseCase) { uc.logger = log.OrNop(l) }
}

// NewResolveLicensesUseCase creates a new ResolveLicenses use case.
func NewResolveLicensesUseCase(enumerator ports.DependencyEnumerator, resolver *resolution.Resolver, opts ...Option) *ResolveLicensesUseCase {
	uc := &ResolveLicensesUseCase{
		enumerator: enumerator,
		resolver:   resolver,
		selector:   allDependencies{},
		executor:   sequential{},
		logger:     log.NewNop(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute runs the resolution. Configuration errors abort before any
// artifact is resolved. A failing unknown-dependency strategy returns
// the complete output together with its error.
func (uc *ResolveLicensesUseCase) Execute(ctx context.Context, input ResolveLicensesInput) (ResolveLicensesOutput, error) {
	var output ResolveLicensesOutput

	project, err := uc.enumerator.Enumerate(ctx)
	if err != nil {
		return output, fmt.Errorf("failed to enumerate dependencies: %w", err)
	}

	overrides, err := uc.loadTable(ctx, input.OverridesLocation)
	if err != nil {
		return output, fmt.Errorf("failed to load overrides: %w", err)
	}
	missing, err := uc.loadTable(ctx, input.MissingPath)
	if err != nil {
		return output, fmt.Errorf("failed to load missing file: %w", err)
	}

	artifacts := uc.selector.Select(project)
	uc.progress(fmt.Sprintf("Resolving %d dependencies...", len(artifacts)))

	rep := report.New(project.Root.Coordinate)
	for _, m := range project.Modules {
		rep.Modules = append(rep.Modules, m.Coordinate)
	}
	output.Report = rep

	if err := uc.resolveAll(ctx, uc.resolver.WithOverrides(overrides), artifacts, rep); err != nil {
		return output, err
	}

	uc.applyMerges(ctx, rep, input.Merges)
	output.UnusedOverrides = uc.unusedOverrides(ctx, overrides, artifacts)
	uc.applyMissing(ctx, rep, missing)

	if input.WriteMissing && input.MissingPath != "" {
		output.StaleMissing = uc.refreshMissing(ctx, rep, missing, artifacts)
		if err := uc.overrides.Save(input.MissingPath, missing); err != nil {
			return output, fmt.Errorf("failed to write missing file: %w", err)
		}
	}

	strategy := uc.strategy
	if strategy == nil {
		if input.FailOnUnknownDependencies {
			strategy = NewFailUnknownDependencies(ExpectedDependenciesOption, project.Root.Coordinate)
		} else {
			strategy = NewLogUnknownDependencies(uc.logger, ExpectedDependenciesOption, project.Root.Coordinate)
		}
	}
	if err := CheckExpectedDependencies(input.ExpectedDependencies, artifacts, strategy); err != nil {
		return output, err
	}

	summary := rep.Summary()
	log.Info(ctx, uc.logger, "license resolution complete",
		log.Int("artifacts", summary.Artifacts),
		log.Int("licenses", summary.Licenses),
		log.Int("unknown", summary.Unknown))
	return output, nil
}

func (uc *ResolveLicensesUseCase) loadTable(ctx context.Context, location string) (*override.Table, error) {
	if location == "" {
		return override.NewTable(""), nil
	}
	if uc.overrides == nil {
		return nil, fmt.Errorf("no override store configured for %s", location)
	}
	return uc.overrides.Load(ctx, location)
}

// resolveAll resolves artifacts through the executor and aggregates
// afterwards in artifact order, so the map does not depend on scheduling.
func (uc *ResolveLicensesUseCase) resolveAll(ctx context.Context, r *resolution.Resolver, artifacts []artifact.Artifact, rep *report.Report) error {
	results := make([]report.Resolution, len(artifacts))
	extended := make([]*infofile.ExtendedInfo, len(artifacts))
	done := make([]bool, len(artifacts))

	err := uc.executor.Each(ctx, artifacts, func(ctx context.Context, i int, a artifact.Artifact) {
		results[i], extended[i] = r.Resolve(ctx, a)
		done[i] = true
	})
	if err != nil {
		return fmt.Errorf("resolution interrupted: %w", err)
	}

	for i, a := range artifacts {
		if !done[i] {
			continue
		}
		rep.Licenses.AddLicenses(a, results[i].Keys)
		rep.Resolutions[a.ID()] = results[i]
		if extended[i] != nil {
			rep.Extended[a.ID()] = extended[i]
		}
	}
	return nil
}

func (uc *ResolveLicensesUseCase) applyMerges(ctx context.Context, rep *report.Report, merges [][]string) {
	for _, m := range merges {
		if len(m) < 2 {
			continue
		}
		main := uc.canonical(m[0])
		others := make([]string, 0, len(m)-1)
		for _, o := range m[1:] {
			others = append(others, uc.canonical(o))
		}
		// Raw spellings are merged too, for keys that reached the map uncanonicalized.
		others = append(others, m[1:]...)

		if merged := rep.Licenses.MergeLicenses(main, others...); len(merged) > 0 {
			log.Debug(ctx, uc.logger, "merged licenses", log.String("into", main), log.Any("merged", merged))
		}
	}
}

func (uc *ResolveLicensesUseCase) canonical(name string) string {
	if keys, _ := uc.resolver.Canonicalize([]string{name}); len(keys) > 0 {
		return keys[0]
	}
	return name
}

func (uc *ResolveLicensesUseCase) unusedOverrides(ctx context.Context, t *override.Table, artifacts []artifact.Artifact) []string {
	used := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		used[a.OverrideKey()] = true
	}

	var unused []string
	for _, key := range t.Keys() {
		if used[key] {
			continue
		}
		unused = append(unused, key)
		fields := []log.Field{log.String("key", key), log.String("source", t.Source())}
		if t.IsRemote() {
			log.Debug(ctx, uc.logger, "override does not match any dependency", fields...)
		} else {
			log.Warn(ctx, uc.logger, "override does not match any dependency", fields...)
		}
	}
	return unused
}

// applyMissing resolves still-unknown artifacts from filled-in entries.
func (uc *ResolveLicensesUseCase) applyMissing(ctx context.Context, rep *report.Report, missing *override.Table) {
	if missing.Len() == 0 {
		return
	}
	for _, a := range rep.Unknown() {
		names := missing.LicensesFor(a.Coordinate)
		if len(names) == 0 {
			continue
		}
		keys, matchers := uc.resolver.Canonicalize(names)
		if len(keys) == 0 {
			continue
		}
		rep.Licenses.RemoveArtifact(a)
		rep.Licenses.AddLicenses(a, keys)

		res := rep.Resolutions[a.ID()]
		res.Artifact = a
		res.Source = report.SourceMissing
		res.Raw = names
		res.Keys = keys
		res.Matchers = matchers
		rep.Resolutions[a.ID()] = res
		log.Debug(ctx, uc.logger, "resolved from missing file", log.String("artifact", a.ID()), log.Any("keys", keys))
	}
}

// refreshMissing drops entries for dependencies that left the project
// and adds an empty entry for each artifact still unknown.
func (uc *ResolveLicensesUseCase) refreshMissing(ctx context.Context, rep *report.Report, missing *override.Table, artifacts []artifact.Artifact) []string {
	present := make(map[string]bool, len(artifacts))
	for _, a := range artifacts {
		present[a.OverrideKey()] = true
	}

	var stale []string
	for _, key := range missing.Keys() {
		if present[key] {
			continue
		}
		log.Warn(ctx, uc.logger, "removing stale entry from missing file", log.String("key", key))
		missing.Remove(key)
		stale = append(stale, key)
	}

	for _, a := range rep.Unknown() {
		if key := a.OverrideKey(); !missing.Has(key) {
			missing.Set(key, "")
		}
	}
	return stale
}

func (uc *ResolveLicensesUseCase) progress(msg string) {
	if uc.writer != nil {
		_ = uc.writer.WriteProgress(msg)
	}
}

// allDependencies selects every module dependency once, in order.
type allDependencies struct{}

func (allDependencies) Select(project *ports.Project) []artifact.Artifact {
	seen := make(map[string]bool)
	var out []artifact.Artifact
	for _, m := range project.Modules {
		for _, d := range m.Dependencies {
			if !seen[d.ID()] {
				seen[d.ID()] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// sequential runs artifacts one at a time on the caller's goroutine.
type sequential struct{}

func (sequential) Each(ctx context.Context, artifacts []artifact.Artifact, fn ports.ArtifactFunc) error {
	for i, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(ctx, i, a)
	}
	return nil
}
