package override

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

func TestTable_Licenses(t *testing.T) {
	tbl := NewTable("overrides.properties")
	tbl.Set(" org--lib--1.0 ", "apache_v2| mit |")
	tbl.Set("org--empty--1.0", "")
	tbl.SetLicenses("org--joined--2.0", []string{"gpl_v3", "lgpl_v3"})

	assert.Equal(t, []string{"apache_v2", "mit"}, tbl.LicensesFor(artifact.NewCoordinate("org", "lib", "1.0")))
	assert.Empty(t, tbl.Licenses("org--empty--1.0"))
	assert.True(t, tbl.Has("org--empty--1.0"))
	assert.Nil(t, tbl.Licenses("absent"))

	v, ok := tbl.Get("org--joined--2.0")
	assert.True(t, ok)
	assert.Equal(t, "gpl_v3|lgpl_v3", v)

	assert.Equal(t, []string{"org--empty--1.0", "org--joined--2.0", "org--lib--1.0"}, tbl.Keys())

	tbl.Remove("org--empty--1.0")
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_IsRemote(t *testing.T) {
	assert.True(t, NewTable("https://example.org/overrides.properties").IsRemote())
	assert.True(t, NewTable("HTTP://example.org/o").IsRemote())
	assert.False(t, NewTable("/tmp/overrides.properties").IsRemote())
	assert.False(t, NewTable("").IsRemote())
}
