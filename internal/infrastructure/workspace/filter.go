package workspace

import (
	"path/filepath"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

// FilterOptions configures dependency selection.
type FilterOptions struct {
	// IncludeModules are artifactId patterns of modules to keep (if empty, keep all).
	IncludeModules []string

	// ExcludeModules are artifactId patterns of modules to drop. Exclusion wins.
	ExcludeModules []string

	// ExcludedScopes are dependency scopes to skip.
	ExcludedScopes []string

	// ExcludedGroups are groupId patterns to skip.
	ExcludedGroups []string
}

// DefaultFilterOptions skips system scoped dependencies.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		ExcludedScopes: []string{artifact.ScopeSystem},
	}
}

// ModuleFilter implements ports.DependencySelector.
type ModuleFilter struct {
	opts   FilterOptions
	scopes map[string]bool
}

var _ ports.DependencySelector = (*ModuleFilter)(nil)

// NewModuleFilter creates a filter.
func NewModuleFilter(opts FilterOptions) *ModuleFilter {
	scopes := make(map[string]bool, len(opts.ExcludedScopes))
	for _, s := range opts.ExcludedScopes {
		scopes[s] = true
	}
	return &ModuleFilter{opts: opts, scopes: scopes}
}

// Modules returns the modules selected by the include and exclude patterns.
func (f *ModuleFilter) Modules(project *ports.Project) []artifact.Module {
	var out []artifact.Module
	for _, m := range project.Modules {
		if f.shouldExclude(m.ArtifactID) || !f.shouldInclude(m.ArtifactID) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Select returns the dependencies of the selected modules, each once,
// in first-seen order. Reactor modules are not dependencies of their
// own project and are skipped.
func (f *ModuleFilter) Select(project *ports.Project) []artifact.Artifact {
	reactor := make(map[string]bool, len(project.Modules)+1)
	reactor[project.Root.Coordinate.OverrideKey()] = true
	for _, m := range project.Modules {
		reactor[m.Coordinate.OverrideKey()] = true
	}

	seen := make(map[string]bool)
	var out []artifact.Artifact
	for _, m := range f.Modules(project) {
		for _, d := range m.Dependencies {
			if seen[d.ID()] || reactor[d.Coordinate.OverrideKey()] || !f.Accepts(d) {
				continue
			}
			seen[d.ID()] = true
			out = append(out, d)
		}
	}
	return out
}

// Accepts reports whether a dependency passes the scope and group filters.
func (f *ModuleFilter) Accepts(a artifact.Artifact) bool {
	if f.scopes[a.Scope] {
		return false
	}
	return !matchAny(f.opts.ExcludedGroups, a.GroupID)
}

// shouldExclude checks if an artifactId matches any exclusion pattern.
func (f *ModuleFilter) shouldExclude(id string) bool {
	return matchAny(f.opts.ExcludeModules, id)
}

// shouldInclude checks if an artifactId matches inclusion patterns (if any).
func (f *ModuleFilter) shouldInclude(id string) bool {
	if len(f.opts.IncludeModules) == 0 {
		return true
	}
	return matchAny(f.opts.IncludeModules, id)
}

func matchAny(patterns []string, s string) bool {
	for _, pattern := range patterns {
		if pattern == s {
			return true
		}
		if matched, _ := filepath.Match(pattern, s); matched {
			return true
		}
	}
	return false
}
