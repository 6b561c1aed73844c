// Package licensemap groups artifacts under canonical license keys.
package licensemap

import (
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

// UnknownLicense is the key for artifacts with no resolvable license.
const UnknownLicense = "Unknown license"

// LicenseMap maps license keys to sets of artifacts. Keys iterate in
// insertion order. It is safe for concurrent use.
type LicenseMap struct {
	mu      sync.RWMutex
	keys    []string
	buckets map[string]map[string]artifact.Artifact
}

// New creates an empty LicenseMap.
func New() *LicenseMap {
	return &LicenseMap{buckets: make(map[string]map[string]artifact.Artifact)}
}

// Put adds a to the bucket for key. It reports whether a was newly added;
// re-adding the same artifact under the same key is a no-op.
func (m *LicenseMap) Put(key string, a artifact.Artifact) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.put(key, a)
}

func (m *LicenseMap) put(key string, a artifact.Artifact) bool {
	bucket, ok := m.buckets[key]
	if !ok {
		bucket = make(map[string]artifact.Artifact)
		m.buckets[key] = bucket
		m.keys = append(m.keys, key)
	}
	if _, dup := bucket[a.ID()]; dup {
		return false
	}
	bucket[a.ID()] = a
	return true
}

// AddLicenses records a under each distinct name. Blank names and an
// empty list are recorded under UnknownLicense.
func (m *LicenseMap) AddLicenses(a artifact.Artifact, names []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := false
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		m.put(n, a)
		added = true
	}
	if !added {
		m.put(UnknownLicense, a)
	}
}

// Get returns the members of key sorted by coordinate. It never returns
// nil; an absent key yields an empty slice.
func (m *LicenseMap) Get(key string) []artifact.Artifact {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedMembers(m.buckets[key])
}

// Has reports whether key has a bucket.
func (m *LicenseMap) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.buckets[key]
	return ok
}

// Keys returns the keys in iteration order.
func (m *LicenseMap) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.keys...)
}

// Len returns the number of keys.
func (m *LicenseMap) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Remove drops key and its members.
func (m *LicenseMap) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(key)
}

func (m *LicenseMap) remove(key string) {
	if _, ok := m.buckets[key]; !ok {
		return
	}
	delete(m.buckets, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// RemoveArtifact removes a from every bucket and drops buckets left
// empty. It returns the keys a was removed from.
func (m *LicenseMap) RemoveArtifact(a artifact.Artifact) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for _, k := range append([]string{}, m.keys...) {
		bucket := m.buckets[k]
		if _, ok := bucket[a.ID()]; !ok {
			continue
		}
		delete(bucket, a.ID())
		removed = append(removed, k)
		if len(bucket) == 0 {
			m.remove(k)
		}
	}
	return removed
}

// ToLicenseMapOrderByName returns a new map with the same membership and
// keys in lexicographic order. The receiver is not modified.
func (m *LicenseMap) ToLicenseMapOrderByName() *LicenseMap {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := append([]string{}, m.keys...)
	sort.Strings(keys)

	out := New()
	for _, k := range keys {
		bucket := make(map[string]artifact.Artifact, len(m.buckets[k]))
		for id, a := range m.buckets[k] {
			bucket[id] = a
		}
		out.buckets[k] = bucket
		out.keys = append(out.keys, k)
	}
	return out
}

// DependencyLicenses pairs an artifact with every key it appears under.
type DependencyLicenses struct {
	Artifact artifact.Artifact
	Licenses []string
}

// ToDependencyMap inverts the map: one entry per artifact with its
// sorted license keys, ordered by coordinate.
func (m *LicenseMap) ToDependencyMap() []DependencyLicenses {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byID := make(map[string]*DependencyLicenses)
	for _, k := range m.keys {
		for id, a := range m.buckets[k] {
			dl, ok := byID[id]
			if !ok {
				dl = &DependencyLicenses{Artifact: a}
				byID[id] = dl
			}
			dl.Licenses = append(dl.Licenses, k)
		}
	}

	out := make([]DependencyLicenses, 0, len(byID))
	for _, dl := range byID {
		sort.Strings(dl.Licenses)
		out = append(out, *dl)
	}
	sort.Slice(out, func(i, j int) bool {
		return artifact.Less(out[i].Artifact, out[j].Artifact)
	})
	return out
}

// MergeLicenses moves the members of each other key into main and drops
// the other keys. Absent keys and main itself are ignored. It returns
// the keys that were merged.
func (m *LicenseMap) MergeLicenses(main string, others ...string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var merged []string
	for _, o := range others {
		if o == main {
			continue
		}
		bucket, ok := m.buckets[o]
		if !ok {
			continue
		}
		for _, a := range bucket {
			m.put(main, a)
		}
		m.remove(o)
		merged = append(merged, o)
	}
	return merged
}

// UnknownDependencies returns the artifacts under UnknownLicense.
func (m *LicenseMap) UnknownDependencies() []artifact.Artifact {
	return m.Get(UnknownLicense)
}

// Artifacts returns every distinct artifact in the map, sorted.
func (m *LicenseMap) Artifacts() []artifact.Artifact {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make(map[string]artifact.Artifact)
	for _, bucket := range m.buckets {
		for id, a := range bucket {
			all[id] = a
		}
	}
	return sortedMembers(all)
}

func sortedMembers(bucket map[string]artifact.Artifact) []artifact.Artifact {
	out := make([]artifact.Artifact, 0, len(bucket))
	for _, a := range bucket {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return artifact.Less(out[i], out[j])
	})
	return out
}
