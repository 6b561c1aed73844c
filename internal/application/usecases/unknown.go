package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// ExpectedDependenciesOption is the config option expected ids come from.
const ExpectedDependenciesOption = "expected_dependencies"

// ErrUnknownDependency is returned by FailUnknownDependencies.
var ErrUnknownDependency = errors.New("unknown dependency")

// UnknownDependencyMessage formats the report line for an unmatched id.
func UnknownDependencyMessage(id, option string, project artifact.Coordinate) string {
	return fmt.Sprintf("Dependency [%s] is mentioned in %s but isn't used in the project %s:%s",
		id, option, project.GroupID, project.ArtifactID)
}

// LogUnknownDependencies warns about each unmatched id and never fails.
type LogUnknownDependencies struct {
	logger  log.Logger
	option  string
	project artifact.Coordinate
}

// NewLogUnknownDependencies creates the warning strategy.
func NewLogUnknownDependencies(logger log.Logger, option string, project artifact.Coordinate) *LogUnknownDependencies {
	return &LogUnknownDependencies{logger: log.OrNop(logger), option: option, project: project}
}

// HandleUnknownDependency implements ports.UnknownDependencyStrategy.
func (s *LogUnknownDependencies) HandleUnknownDependency(id string) error {
	log.Warn(context.Background(), s.logger, UnknownDependencyMessage(id, s.option, s.project))
	return nil
}

// FailUnknownDependencies aborts on the first unmatched id.
type FailUnknownDependencies struct {
	option  string
	project artifact.Coordinate
}

// NewFailUnknownDependencies creates the failing strategy.
func NewFailUnknownDependencies(option string, project artifact.Coordinate) *FailUnknownDependencies {
	return &FailUnknownDependencies{option: option, project: project}
}

// HandleUnknownDependency implements ports.UnknownDependencyStrategy.
func (s *FailUnknownDependencies) HandleUnknownDependency(id string) error {
	return fmt.Errorf("%w: %s", ErrUnknownDependency, UnknownDependencyMessage(id, s.option, s.project))
}

var (
	_ ports.UnknownDependencyStrategy = (*LogUnknownDependencies)(nil)
	_ ports.UnknownDependencyStrategy = (*FailUnknownDependencies)(nil)
)

// CheckExpectedDependencies hands every id that matches none of the
// artifacts to the strategy. An id matches an artifact by
// groupId:artifactId, groupId:artifactId:version or override key.
func CheckExpectedDependencies(ids []string, artifacts []artifact.Artifact, strategy ports.UnknownDependencyStrategy) error {
	known := make(map[string]bool, 3*len(artifacts))
	for _, a := range artifacts {
		known[a.GA()] = true
		known[a.Coordinate.String()] = true
		known[a.OverrideKey()] = true
	}
	for _, id := range ids {
		if known[id] {
			continue
		}
		if err := strategy.HandleUnknownDependency(id); err != nil {
			return err
		}
	}
	return nil
}
