package mocks

import (
	"context"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/domain/override"
)

// MockContents serves canned archive entries keyed by artifact id.
type MockContents struct {
	Files     map[string][]ports.ContentFile
	Manifests map[string]map[string]string
	Err       error
}

// NewMockContents creates empty contents.
func NewMockContents() *MockContents {
	return &MockContents{
		Files:     make(map[string][]ports.ContentFile),
		Manifests: make(map[string]map[string]string),
	}
}

// WithFile adds an entry to the artifact with the given id.
func (m *MockContents) WithFile(id, name, data string) *MockContents {
	m.Files[id] = append(m.Files[id], ports.ContentFile{Name: name, Data: []byte(data)})
	return m
}

// WithManifest sets one manifest attribute.
func (m *MockContents) WithManifest(id, key, value string) *MockContents {
	if m.Manifests[id] == nil {
		m.Manifests[id] = make(map[string]string)
	}
	m.Manifests[id][key] = value
	return m
}

func (m *MockContents) Candidates(_ context.Context, a artifact.Artifact) ([]ports.ContentFile, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Files[a.ID()], nil
}

func (m *MockContents) Manifest(_ context.Context, a artifact.Artifact) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Manifests[a.ID()], nil
}

// MockEnumerator returns a fixed project.
type MockEnumerator struct {
	Project *ports.Project
	Err     error
}

// Enumerate implements ports.DependencyEnumerator.
func (m *MockEnumerator) Enumerate(context.Context) (*ports.Project, error) {
	return m.Project, m.Err
}

// MockMetadata applies DescribeFunc, if set.
type MockMetadata struct {
	DescribeFunc func(e *infofile.ExtendedInfo) error
}

// Describe implements ports.MetadataSource.
func (m *MockMetadata) Describe(_ context.Context, e *infofile.ExtendedInfo) error {
	if m.DescribeFunc == nil {
		return nil
	}
	return m.DescribeFunc(e)
}

// MockOverrideStore keeps tables in memory.
type MockOverrideStore struct {
	Tables  map[string]*override.Table
	Saved   map[string]*override.Table
	LoadErr error
	SaveErr error
}

// NewMockOverrideStore creates an empty store.
func NewMockOverrideStore() *MockOverrideStore {
	return &MockOverrideStore{
		Tables: make(map[string]*override.Table),
		Saved:  make(map[string]*override.Table),
	}
}

// Load implements ports.OverrideStore. Unknown locations load empty.
func (m *MockOverrideStore) Load(_ context.Context, location string) (*override.Table, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if t, ok := m.Tables[location]; ok {
		return t, nil
	}
	return override.NewTable(location), nil
}

// Save implements ports.OverrideStore.
func (m *MockOverrideStore) Save(path string, t *override.Table) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saved[path] = t
	return nil
}
