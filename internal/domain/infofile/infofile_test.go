package infofile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

func TestInfoFile_SetContentRecomputesFingerprint(t *testing.T) {
	f := New("META-INF/LICENSE", "MIT License", TypeLicense)
	first := f.NormalizedContent()
	assert.NotEmpty(t, first)

	f.SetContent("Apache License")
	assert.NotEqual(t, first, f.NormalizedContent())
	assert.Equal(t, "Apache License", f.Content())

	f.SetContent("MIT   License")
	assert.Equal(t, first, f.NormalizedContent())
}

func TestInfoFile_CopyrightLines(t *testing.T) {
	f := New("NOTICE", "", TypeNotice)
	f.AddCopyrightLine("Copyright 2020 Bar")
	f.AddCopyrightLine("  Copyright 2019 Foo ")
	f.AddCopyrightLine("Copyright 2020 Bar")
	f.AddCopyrightLine("")

	assert.Equal(t, []string{"Copyright 2019 Foo", "Copyright 2020 Bar"}, f.CopyrightLines())

	f.ClearCopyrightLines()
	assert.Empty(t, f.CopyrightLines())
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "NOTICE", TypeNotice.String())
	assert.Equal(t, "LICENSE", TypeLicense.String())
	assert.Equal(t, "SPDX_LICENSE", TypeSPDXLicense.String())
	assert.Equal(t, "UNKNOWN", TypeUnknown.String())

	var zero Type
	assert.Equal(t, TypeUnknown, zero)
}

func TestExtendedInfo_DedupesIdenticalFiles(t *testing.T) {
	e := NewExtendedInfo(artifact.Artifact{Coordinate: artifact.NewCoordinate("g", "a", "1"), Name: "A"})
	assert.Equal(t, "A", e.Name)

	n1 := New("META-INF/NOTICE", "Copyright 2020 Foo\n", TypeNotice)
	n1.AddCopyrightLine("Copyright 2020 Foo")
	n2 := New("NOTICE.txt", "copyright  2020 foo\r\n", TypeNotice)
	l := New("LICENSE", "license text", TypeLicense)

	assert.True(t, e.AddInfoFile(n1))
	assert.False(t, e.AddInfoFile(n2))
	assert.True(t, e.AddInfoFile(l))

	assert.Len(t, e.FilesOfType(TypeNotice), 1)
	assert.Equal(t, []string{"Copyright 2020 Foo"}, e.CopyrightLines())
}
