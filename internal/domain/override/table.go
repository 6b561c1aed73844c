// Package override holds user-supplied license assignments keyed by
// artifact coordinate.
package override

import (
	"sort"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

// ValueSeparator separates license names in one entry.
const ValueSeparator = "|"

// Table maps override keys (groupId--artifactId--version) to license names.
type Table struct {
	entries map[string]string
	source  string
}

// NewTable creates an empty table for source.
func NewTable(source string) *Table {
	return &Table{entries: make(map[string]string), source: source}
}

// Source returns where the table was loaded from.
func (t *Table) Source() string { return t.source }

// Set stores the raw value for key.
func (t *Table) Set(key, value string) {
	t.entries[strings.TrimSpace(key)] = strings.TrimSpace(value)
}

// SetLicenses stores names joined by ValueSeparator.
func (t *Table) SetLicenses(key string, names []string) {
	t.Set(key, strings.Join(names, ValueSeparator))
}

// Get returns the raw value for key.
func (t *Table) Get(key string) (string, bool) {
	v, ok := t.entries[key]
	return v, ok
}

// Licenses returns the license names for key. Blank names are dropped.
func (t *Table) Licenses(key string) []string {
	v, ok := t.entries[key]
	if !ok {
		return nil
	}
	var out []string
	for _, name := range strings.Split(v, ValueSeparator) {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// LicensesFor returns the override for the artifact's coordinate.
func (t *Table) LicensesFor(c artifact.Coordinate) []string {
	return t.Licenses(c.OverrideKey())
}

// Has reports whether key is present.
func (t *Table) Has(key string) bool {
	_, ok := t.entries[key]
	return ok
}

// Remove deletes key.
func (t *Table) Remove(key string) {
	delete(t.entries, key)
}

// Keys returns the keys in sorted order.
func (t *Table) Keys() []string {
	out := make([]string, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// IsRemote reports whether the table came from an http(s) location.
func (t *Table) IsRemote() bool {
	s := strings.ToLower(t.source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
