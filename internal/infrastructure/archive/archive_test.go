package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

func writeJar(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lib-1.0.jar")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func jarArtifact(location string) artifact.Artifact {
	a := artifact.New(artifact.NewCoordinate("org", "lib", "1.0"))
	a.Location = location
	return a
}

func TestReader_CandidatesFromJar(t *testing.T) {
	jar := writeJar(t, map[string]string{
		"META-INF/LICENSE.txt":         "Apache License",
		"META-INF/NOTICE":              "Copyright 2020 Foo",
		"META-INF/MANIFEST.MF":         "Manifest-Version: 1.0\n",
		"LICENCE":                      "root licence",
		"org/example/LICENSE.class":    "deep",
		"META-INF/maven/org/lib/NOTICE": "too deep",
		"README.md":                    "readme",
	})

	got, err := NewReader().Candidates(context.Background(), jarArtifact(jar))
	require.NoError(t, err)

	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"LICENCE", "META-INF/LICENSE.txt", "META-INF/NOTICE"}, names)
	assert.Equal(t, "Copyright 2020 Foo", string(got[2].Data))
}

func TestReader_CustomClassifierAndSize(t *testing.T) {
	jar := writeJar(t, map[string]string{
		"META-INF/MIT":     "mit text",
		"META-INF/LICENSE": strings.Repeat("x", 64),
	})

	r := NewReader(
		WithClassifier(func(name string) bool { return strings.HasSuffix(name, "MIT") || DefaultClassifier(name) }),
		WithMaxSize(32),
	)
	got, err := r.Candidates(context.Background(), jarArtifact(jar))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "META-INF/MIT", got[0].Name)
}

func TestReader_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "META-INF"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "META-INF", "NOTICE.md"), []byte("notice"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "META-INF", "MANIFEST.MF"), []byte("Bundle-Vendor: Acme\n"), 0o600))

	r := NewReader()
	got, err := r.Candidates(context.Background(), jarArtifact(dir))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "META-INF/NOTICE.md", got[0].Name)

	m, err := r.Manifest(context.Background(), jarArtifact(dir))
	require.NoError(t, err)
	assert.Equal(t, "Acme", m["Bundle-Vendor"])
}

func TestReader_Errors(t *testing.T) {
	r := NewReader()

	_, err := r.Candidates(context.Background(), jarArtifact(""))
	assert.ErrorIs(t, err, ErrNoLocation)

	_, err = r.Candidates(context.Background(), jarArtifact(filepath.Join(t.TempDir(), "absent.jar")))
	assert.Error(t, err)

	notZip := filepath.Join(t.TempDir(), "bad.jar")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o600))
	_, err = r.Candidates(context.Background(), jarArtifact(notZip))
	assert.Error(t, err)
}

func TestParseManifest(t *testing.T) {
	m := ParseManifest([]byte("Manifest-Version: 1.0\r\n" +
		"Implementation-Vendor: The Apache Software Foundation\r\n" +
		"Bundle-License: https://www.apache.org/licenses/LICENSE-2.0.t\r\n" +
		" xt\r\n" +
		"\r\n" +
		"Name: org/example/\r\n" +
		"Implementation-Vendor: ignored\r\n"))

	assert.Equal(t, "The Apache Software Foundation", m["Implementation-Vendor"])
	assert.Equal(t, "https://www.apache.org/licenses/LICENSE-2.0.txt", m["Bundle-License"])
	assert.NotContains(t, m, "Name")
}

func TestReader_ManifestMissing(t *testing.T) {
	jar := writeJar(t, map[string]string{"LICENSE": "x"})
	m, err := NewReader().Manifest(context.Background(), jarArtifact(jar))
	require.NoError(t, err)
	assert.Empty(t, m)
}
