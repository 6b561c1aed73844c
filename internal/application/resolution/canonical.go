package resolution

import (
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
)

// Matcher names recorded in a Resolution.
const (
	MatcherRepository = "repository"
	MatcherSPDX       = "spdx"
	MatcherExpression = "spdx-expression"
	MatcherRaw        = "raw"
)

// KeyMatcher maps a free-text license name to a canonical key.
type KeyMatcher interface {
	Name() string
	Match(name string) (string, bool)
}

// RepositoryMatcher resolves names, aliases and SPDX ids against the
// license store. User repositories take precedence over the bundled one.
type RepositoryMatcher struct {
	index ports.LicenseIndex
}

// NewRepositoryMatcher creates a matcher over index.
func NewRepositoryMatcher(index ports.LicenseIndex) *RepositoryMatcher {
	return &RepositoryMatcher{index: index}
}

func (m *RepositoryMatcher) Name() string { return MatcherRepository }

func (m *RepositoryMatcher) Match(name string) (string, bool) {
	l, ok := m.index.Lookup(name)
	if !ok {
		return "", false
	}
	return l.Key(), true
}

// SPDXMatcher accepts exact SPDX identifiers.
type SPDXMatcher struct {
	catalog ports.LicenseCatalog
}

// NewSPDXMatcher creates a matcher over catalog.
func NewSPDXMatcher(catalog ports.LicenseCatalog) *SPDXMatcher {
	return &SPDXMatcher{catalog: catalog}
}

func (m *SPDXMatcher) Name() string { return MatcherSPDX }

func (m *SPDXMatcher) Match(name string) (string, bool) {
	id := strings.TrimSpace(name)
	if !m.catalog.Has(id) {
		return "", false
	}
	return id, true
}

// SPDXExpressionMatcher accepts valid SPDX expressions and returns their
// canonical form.
type SPDXExpressionMatcher struct {
	catalog ports.LicenseCatalog
}

// NewSPDXExpressionMatcher creates a matcher over catalog.
func NewSPDXExpressionMatcher(catalog ports.LicenseCatalog) *SPDXExpressionMatcher {
	return &SPDXExpressionMatcher{catalog: catalog}
}

func (m *SPDXExpressionMatcher) Name() string { return MatcherExpression }

func (m *SPDXExpressionMatcher) Match(name string) (string, bool) {
	canon, err := m.catalog.Canonicalize(name)
	if err != nil || canon == "" {
		return "", false
	}
	return canon, true
}

// RawMatcher keeps the trimmed name as its own key.
type RawMatcher struct{}

func (RawMatcher) Name() string { return MatcherRaw }

func (RawMatcher) Match(name string) (string, bool) {
	t := strings.TrimSpace(name)
	return t, t != ""
}

// Canonicalizer runs matchers in order and returns the first match.
type Canonicalizer struct {
	matchers []KeyMatcher
}

// NewCanonicalizer builds the default chain: store, exact SPDX id, SPDX
// expression, raw. Nil collaborators are left out.
func NewCanonicalizer(index ports.LicenseIndex, catalog ports.LicenseCatalog) *Canonicalizer {
	var ms []KeyMatcher
	if index != nil {
		ms = append(ms, NewRepositoryMatcher(index))
	}
	if catalog != nil {
		ms = append(ms, NewSPDXMatcher(catalog), NewSPDXExpressionMatcher(catalog))
	}
	ms = append(ms, RawMatcher{})
	return &Canonicalizer{matchers: ms}
}

// NewCanonicalizerWith uses an explicit matcher chain.
func NewCanonicalizerWith(matchers ...KeyMatcher) *Canonicalizer {
	return &Canonicalizer{matchers: matchers}
}

// Canonicalize returns the key for name and the matcher that produced it.
func (c *Canonicalizer) Canonicalize(name string) (key, matcher string, ok bool) {
	for _, m := range c.matchers {
		if k, ok := m.Match(name); ok {
			return k, m.Name(), true
		}
	}
	return "", "", false
}

// Matchers returns the matcher names in evaluation order.
func (c *Canonicalizer) Matchers() []string {
	out := make([]string, len(c.matchers))
	for i, m := range c.matchers {
		out[i] = m.Name()
	}
	return out
}
