// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/component"
)

// MockRegistry is a configurable ports.ComponentResolver keyed by
// "groupId:artifactId:version".
type MockRegistry struct {
	ResolveFunc func(ctx context.Context, c artifact.Coordinate) (*component.Info, error)

	mu    sync.Mutex
	infos map[string]*component.Info
	errs  map[string]error
	calls map[string]int
}

// NewMockRegistry creates a registry that knows no components.
func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		infos: make(map[string]*component.Info),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

// WithLicenses registers declared licenses for a coordinate.
func (m *MockRegistry) WithLicenses(coord string, ids ...string) *MockRegistry {
	info := &component.Info{}
	for _, id := range ids {
		info.DeclaredLicenses = append(info.DeclaredLicenses, component.LicenseEntry{LicenseID: id})
	}
	return m.WithInfo(coord, info)
}

// WithInfo registers a payload for a coordinate.
func (m *MockRegistry) WithInfo(coord string, info *component.Info) *MockRegistry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[coord] = info
	return m
}

// WithError makes lookups of coord fail with err.
func (m *MockRegistry) WithError(coord string, err error) *MockRegistry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[coord] = err
	return m
}

// Resolve implements ports.ComponentResolver. Unregistered coordinates
// return ports.ErrComponentNotFound.
func (m *MockRegistry) Resolve(ctx context.Context, c artifact.Coordinate) (*component.Info, error) {
	m.mu.Lock()
	m.calls[c.String()]++
	fn := m.ResolveFunc
	info, hasInfo := m.infos[c.String()]
	err, hasErr := m.errs[c.String()]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, c)
	}
	if hasErr {
		return nil, err
	}
	if !hasInfo {
		return nil, fmt.Errorf("%s: %w", c, ports.ErrComponentNotFound)
	}
	return info, nil
}

// Calls returns how often coord was resolved.
func (m *MockRegistry) Calls(coord string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[coord]
}
