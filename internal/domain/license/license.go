// Package license defines canonical license definitions.
package license

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyName is returned when a license is requested or built without a name.
var ErrEmptyName = errors.New("license name must not be empty")

// License is a canonical license definition. It is a value object.
type License struct {
	name        string
	description string
	aliases     []string
	spdxID      string
	headerURL   string
	licenseURL  string
}

// Option configures a License.
type Option func(*License)

// WithAliases adds alternative spellings matched during lookup.
func WithAliases(aliases ...string) Option {
	return func(l *License) {
		for _, a := range aliases {
			if a = strings.TrimSpace(a); a != "" {
				l.aliases = append(l.aliases, a)
			}
		}
	}
}

// WithSPDX sets the SPDX identifier.
func WithSPDX(id string) Option {
	return func(l *License) {
		l.spdxID = strings.TrimSpace(id)
	}
}

// WithHeaderURL sets the location of the header text.
func WithHeaderURL(u string) Option {
	return func(l *License) {
		l.headerURL = u
	}
}

// WithLicenseURL sets the location of the full license text.
func WithLicenseURL(u string) Option {
	return func(l *License) {
		l.licenseURL = u
	}
}

// New creates a license. The name is trimmed and lower-cased.
func New(name, description string, opts ...Option) (License, error) {
	n := NormalizeName(name)
	if n == "" {
		return License{}, ErrEmptyName
	}

	l := License{name: n, description: strings.TrimSpace(description)}
	for _, opt := range opts {
		opt(&l)
	}
	return l, nil
}

// NormalizeName returns the canonical form of a definition name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Name returns the canonical name.
func (l License) Name() string { return l.name }

// Description returns the human-readable description.
func (l License) Description() string { return l.description }

// Aliases returns a sorted copy of the aliases.
func (l License) Aliases() []string {
	out := append([]string{}, l.aliases...)
	sort.Strings(out)
	return out
}

// SPDXID returns the SPDX identifier, if known.
func (l License) SPDXID() string { return l.spdxID }

// HeaderURL returns the header text location.
func (l License) HeaderURL() string { return l.headerURL }

// LicenseURL returns the full license text location.
func (l License) LicenseURL() string { return l.licenseURL }

// Key returns the LicenseMap key for this license: its SPDX id when
// known, else its canonical name.
func (l License) Key() string {
	if l.spdxID != "" {
		return l.spdxID
	}
	return l.name
}

// IsZero reports whether the license is unset.
func (l License) IsZero() bool { return l.name == "" }

// Matches reports whether s names this license. The canonical name must
// match exactly; aliases and the SPDX id match after trimming and case folding.
func (l License) Matches(s string) bool {
	if s == l.name {
		return true
	}
	t := strings.TrimSpace(s)
	if t == "" {
		return false
	}
	if l.spdxID != "" && strings.EqualFold(t, l.spdxID) {
		return true
	}
	for _, a := range l.aliases {
		if strings.EqualFold(t, a) {
			return true
		}
	}
	return false
}

// String returns the name and description.
func (l License) String() string {
	if l.description == "" {
		return l.name
	}
	return l.name + " (" + l.description + ")"
}
