package resolution

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// ExternalLicenseResolver asks a registry for an artifact's declared and
// observed licenses. Failures never propagate; they yield no names.
type ExternalLicenseResolver struct {
	registry ports.ComponentResolver
	logger   log.Logger
}

// NewExternalLicenseResolver wraps a registry. A nil registry resolves nothing.
func NewExternalLicenseResolver(registry ports.ComponentResolver, logger log.Logger) *ExternalLicenseResolver {
	return &ExternalLicenseResolver{registry: registry, logger: log.OrNop(logger)}
}

// LicensesFor returns the deduplicated license names for c.
func (r *ExternalLicenseResolver) LicensesFor(ctx context.Context, c artifact.Coordinate) []string {
	if r.registry == nil {
		return []string{}
	}
	info, err := r.registry.Resolve(ctx, c)
	switch {
	case errors.Is(err, ports.ErrComponentNotFound):
		log.Info(ctx, r.logger, "no license data in registry", log.String("artifact", c.String()))
		return []string{}
	case err != nil:
		log.Warn(ctx, r.logger, "registry lookup failed", log.String("artifact", c.String()), log.Err(err))
		return []string{}
	}
	return info.LicenseNames()
}
