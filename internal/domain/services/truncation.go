package services

import (
	"sort"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/licensemap"
)

// TruncateStrategy defines which dependencies are kept when output
// limits are exceeded.
type TruncateStrategy string

const (
	// StrategyUnknownFirst keeps dependencies without a license first,
	// then the rest by coordinate.
	StrategyUnknownFirst TruncateStrategy = "unknown-first"
	// StrategyCoordinate keeps dependencies in coordinate order.
	StrategyCoordinate TruncateStrategy = "coordinate"
)

// TruncationConfig holds truncation settings.
type TruncationConfig struct {
	MaxDependencies int
	Strategy        TruncateStrategy
}

// TruncationResult holds the kept dependencies and metadata.
type TruncationResult struct {
	Dependencies []licensemap.DependencyLicenses
	Truncated    bool
	TotalCount   int
	ShownCount   int
	Summary      TruncationSummary
}

// TruncationSummary provides counts by license key.
type TruncationSummary struct {
	// ByLicense contains total counts for each key.
	ByLicense map[string]int
	// HiddenByLicense contains counts of hidden dependencies by key.
	HiddenByLicense map[string]int
}

// TruncationService trims dependency lists so MCP responses stay within
// token limits while keeping the dependencies that need attention.
type TruncationService struct{}

// NewTruncationService creates a new truncation service.
func NewTruncationService() *TruncationService {
	return &TruncationService{}
}

// Truncate applies truncation to deps based on cfg.
// If MaxDependencies is 0 or negative, no truncation is applied.
func (s *TruncationService) Truncate(deps []licensemap.DependencyLicenses, cfg TruncationConfig) TruncationResult {
	total := len(deps)
	byLicense := countByLicense(deps)

	if cfg.MaxDependencies <= 0 || total <= cfg.MaxDependencies {
		return TruncationResult{
			Dependencies: deps,
			TotalCount:   total,
			ShownCount:   total,
			Summary: TruncationSummary{
				ByLicense:       byLicense,
				HiddenByLicense: map[string]int{},
			},
		}
	}

	kept := s.sortDependencies(deps, cfg.Strategy)[:cfg.MaxDependencies]
	shown := countByLicense(kept)

	hidden := make(map[string]int)
	for key, n := range byLicense {
		if h := n - shown[key]; h > 0 {
			hidden[key] = h
		}
	}

	return TruncationResult{
		Dependencies: kept,
		Truncated:    true,
		TotalCount:   total,
		ShownCount:   len(kept),
		Summary: TruncationSummary{
			ByLicense:       byLicense,
			HiddenByLicense: hidden,
		},
	}
}

// sortDependencies returns a sorted copy of deps.
func (s *TruncationService) sortDependencies(deps []licensemap.DependencyLicenses, strategy TruncateStrategy) []licensemap.DependencyLicenses {
	sorted := make([]licensemap.DependencyLicenses, len(deps))
	copy(sorted, deps)

	byCoordinate := func(i, j int) bool {
		return artifact.Less(sorted[i].Artifact, sorted[j].Artifact)
	}

	switch strategy {
	case StrategyCoordinate:
		sort.SliceStable(sorted, byCoordinate)
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			ui, uj := isUnknown(sorted[i]), isUnknown(sorted[j])
			if ui != uj {
				return ui
			}
			return byCoordinate(i, j)
		})
	}
	return sorted
}

func isUnknown(d licensemap.DependencyLicenses) bool {
	for _, k := range d.Licenses {
		if k == licensemap.UnknownLicense {
			return true
		}
	}
	return false
}

func countByLicense(deps []licensemap.DependencyLicenses) map[string]int {
	out := make(map[string]int)
	for _, d := range deps {
		for _, k := range d.Licenses {
			out[k]++
		}
	}
	return out
}
