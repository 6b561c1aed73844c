package ports

import (
	"context"

	"github.com/felixgeelhaar/licensemap/internal/domain/override"
)

// OverrideStore loads and persists override tables.
type OverrideStore interface {
	// Load reads the table at location. A missing local file yields an
	// empty table.
	Load(ctx context.Context, location string) (*override.Table, error)

	// Save writes the table to a local path with keys in sorted order.
	Save(path string, t *override.Table) error
}
