package licensemap

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

func dep(group, name, version string) artifact.Artifact {
	return artifact.New(artifact.NewCoordinate(group, name, version))
}

func ids(as []artifact.Artifact) []string {
	out := make([]string, 0, len(as))
	for _, a := range as {
		out = append(out, a.ID())
	}
	return out
}

func TestLicenseMap_PutIsSetSemantics(t *testing.T) {
	m := New()
	a := dep("org", "a", "1")
	b := dep("org", "b", "1")

	assert.True(t, m.Put("mit", b))
	assert.True(t, m.Put("mit", a))
	assert.False(t, m.Put("mit", a))
	assert.False(t, m.Put("mit", b))

	assert.Equal(t, []string{"org--a--1", "org--b--1"}, ids(m.Get("mit")))
	assert.Equal(t, 1, m.Len())
}

func TestLicenseMap_GetAbsentKeyIsEmpty(t *testing.T) {
	m := New()
	got := m.Get("nope")
	require.NotNil(t, got)
	assert.Empty(t, got)
	assert.False(t, m.Has("nope"))
}

func TestLicenseMap_KeysKeepInsertionOrder(t *testing.T) {
	m := New()
	m.Put("zlib", dep("g", "a", "1"))
	m.Put(UnknownLicense, dep("g", "b", "1"))
	m.Put("apache_v2", dep("g", "c", "1"))
	m.Put("zlib", dep("g", "d", "1"))

	assert.Equal(t, []string{"zlib", UnknownLicense, "apache_v2"}, m.Keys())
}

func TestLicenseMap_ToLicenseMapOrderByName(t *testing.T) {
	m := New()
	m.Put("zlib", dep("g", "a", "1"))
	m.Put(UnknownLicense, dep("g", "b", "1"))
	m.Put("Apache", dep("g", "c", "1"))
	m.Put("apache_v2", dep("g", "c", "1"))

	sorted := m.ToLicenseMapOrderByName()

	// Case-sensitive: upper case sorts first, the sentinel sorts by its text.
	assert.Equal(t, []string{"Apache", UnknownLicense, "apache_v2", "zlib"}, sorted.Keys())
	assert.Equal(t, []string{"zlib", UnknownLicense, "Apache", "apache_v2"}, m.Keys())

	for _, k := range m.Keys() {
		if diff := cmp.Diff(ids(m.Get(k)), ids(sorted.Get(k))); diff != "" {
			t.Errorf("membership of %q differs (-src +sorted):\n%s", k, diff)
		}
	}

	// The copy is independent of the source.
	sorted.Put("zlib", dep("g", "z", "1"))
	assert.Len(t, m.Get("zlib"), 1)
}

func TestLicenseMap_AddLicenses(t *testing.T) {
	m := New()
	a := dep("g", "a", "1")
	b := dep("g", "b", "1")

	m.AddLicenses(a, []string{"mit", "apache_v2", "mit"})
	m.AddLicenses(b, nil)
	m.AddLicenses(b, []string{"  ", ""})

	assert.Equal(t, []string{"mit", "apache_v2", UnknownLicense}, m.Keys())
	assert.Len(t, m.Get("mit"), 1)
	assert.Equal(t, []string{"g--b--1"}, ids(m.UnknownDependencies()))
}

func TestLicenseMap_SameNameDifferentCoordinates(t *testing.T) {
	m := New()
	a := artifact.Artifact{Coordinate: artifact.NewCoordinate("org.one", "shared", "1.0"), Name: "Shared Lib"}
	b := artifact.Artifact{Coordinate: artifact.NewCoordinate("org.two", "shared", "1.0"), Name: "Shared Lib"}

	m.AddLicenses(a, nil)
	m.AddLicenses(b, nil)

	assert.Len(t, m.Get(UnknownLicense), 2)
}

func TestLicenseMap_RemoveArtifact(t *testing.T) {
	m := New()
	a := dep("g", "a", "1")
	b := dep("g", "b", "1")
	m.AddLicenses(a, []string{"mit", "bsd"})
	m.AddLicenses(b, []string{"mit"})

	removed := m.RemoveArtifact(a)

	assert.Equal(t, []string{"mit", "bsd"}, removed)
	assert.Equal(t, []string{"mit"}, m.Keys())
	assert.Equal(t, []string{"g--b--1"}, ids(m.Get("mit")))
	assert.Empty(t, m.RemoveArtifact(a))
}

func TestLicenseMap_MergeLicenses(t *testing.T) {
	m := New()
	m.Put("Apache 2", dep("g", "a", "1"))
	m.Put("apache_v2", dep("g", "b", "1"))
	m.Put("The Apache License", dep("g", "a", "1"))
	m.Put("mit", dep("g", "c", "1"))

	merged := m.MergeLicenses("apache_v2", "Apache 2", "The Apache License", "absent", "apache_v2")

	assert.Equal(t, []string{"Apache 2", "The Apache License"}, merged)
	assert.Equal(t, []string{"apache_v2", "mit"}, m.Keys())
	assert.Equal(t, []string{"g--a--1", "g--b--1"}, ids(m.Get("apache_v2")))
}

func TestLicenseMap_MergeIntoAbsentMainCreatesIt(t *testing.T) {
	m := New()
	m.Put("ASL", dep("g", "a", "1"))

	m.MergeLicenses("apache_v2", "ASL")

	assert.Equal(t, []string{"apache_v2"}, m.Keys())
	assert.Len(t, m.Get("apache_v2"), 1)
}

func TestLicenseMap_ToDependencyMap(t *testing.T) {
	m := New()
	a := dep("g", "a", "1")
	b := dep("g", "b", "1")
	m.AddLicenses(b, []string{"mit"})
	m.AddLicenses(a, []string{"mit", "apache_v2"})

	got := m.ToDependencyMap()

	require.Len(t, got, 2)
	assert.Equal(t, "g--a--1", got[0].Artifact.ID())
	assert.Equal(t, []string{"apache_v2", "mit"}, got[0].Licenses)
	assert.Equal(t, []string{"mit"}, got[1].Licenses)
	assert.Len(t, m.Artifacts(), 2)
}

func TestLicenseMap_ConcurrentPut(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := dep("g", fmt.Sprintf("a%d", i%10), "1")
			m.AddLicenses(a, []string{"mit"})
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.Get("mit"), 10)
}
