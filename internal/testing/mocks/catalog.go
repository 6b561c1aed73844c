package mocks

import (
	"errors"
	"sort"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/domain/license"
)

// ErrInvalidExpression is returned by MockCatalog.Canonicalize for
// unregistered expressions.
var ErrInvalidExpression = errors.New("invalid expression")

// MockLicenseIndex is an in-memory ports.LicenseIndex.
type MockLicenseIndex struct {
	licenses []license.License
}

// NewMockLicenseIndex indexes the given licenses. Later entries win.
func NewMockLicenseIndex(licenses ...license.License) *MockLicenseIndex {
	return &MockLicenseIndex{licenses: licenses}
}

// Lookup implements ports.LicenseIndex.
func (m *MockLicenseIndex) Lookup(name string) (license.License, bool) {
	for i := len(m.licenses) - 1; i >= 0; i-- {
		if m.licenses[i].Matches(name) || m.licenses[i].Name() == license.NormalizeName(name) {
			return m.licenses[i], true
		}
	}
	return license.License{}, false
}

// LookupURL implements ports.LicenseIndex.
func (m *MockLicenseIndex) LookupURL(u string) (license.License, bool) {
	for i := len(m.licenses) - 1; i >= 0; i-- {
		if u != "" && m.licenses[i].LicenseURL() == u {
			return m.licenses[i], true
		}
	}
	return license.License{}, false
}

// MockCatalog is an in-memory ports.LicenseCatalog.
type MockCatalog struct {
	ids         map[string]struct{}
	urls        map[string]string
	expressions map[string]string
}

// NewMockCatalog creates a catalog with the given ids.
func NewMockCatalog(ids ...string) *MockCatalog {
	m := &MockCatalog{
		ids:         make(map[string]struct{}),
		urls:        make(map[string]string),
		expressions: make(map[string]string),
	}
	for _, id := range ids {
		m.ids[id] = struct{}{}
	}
	return m
}

// WithURL publishes id at u.
func (m *MockCatalog) WithURL(u, id string) *MockCatalog {
	m.urls[u] = id
	return m
}

// WithExpression registers the canonical form of expr.
func (m *MockCatalog) WithExpression(expr, canon string) *MockCatalog {
	m.expressions[expr] = canon
	return m
}

func (m *MockCatalog) Has(id string) bool {
	_, ok := m.ids[id]
	return ok
}

func (m *MockCatalog) IDs() []string {
	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (m *MockCatalog) IDForURL(u string) (string, bool) {
	id, ok := m.urls[u]
	return id, ok
}

func (m *MockCatalog) Canonicalize(expr string) (string, error) {
	if c, ok := m.expressions[strings.TrimSpace(expr)]; ok {
		return c, nil
	}
	return "", ErrInvalidExpression
}
