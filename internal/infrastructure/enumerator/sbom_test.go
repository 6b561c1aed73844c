package enumerator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

const spdxDoc = `{
  "spdxVersion": "SPDX-2.3",
  "SPDXID": "SPDXRef-DOCUMENT",
  "name": "example-app",
  "documentDescribes": ["SPDXRef-root"],
  "packages": [
    {"SPDXID": "SPDXRef-root", "name": "app", "versionInfo": "1.0",
     "externalRefs": [{"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:maven/org.example/app@1.0"}]},
    {"SPDXID": "SPDXRef-guava", "name": "guava", "versionInfo": "33.0.0-jre",
     "licenseDeclared": "Apache-2.0", "licenseConcluded": "NOASSERTION", "homepage": "https://github.com/google/guava",
     "externalRefs": [{"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:maven/com.google.guava/guava@33.0.0-jre"}]},
    {"SPDXID": "SPDXRef-none", "name": "mystery", "licenseDeclared": "NOASSERTION", "licenseConcluded": "NONE", "homepage": "NOASSERTION",
     "externalRefs": [{"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:maven/org.mystery/mystery@0.1?type=zip"}]},
    {"SPDXID": "SPDXRef-npm", "name": "left-pad", "licenseDeclared": "MIT",
     "externalRefs": [{"referenceCategory": "PACKAGE-MANAGER", "referenceType": "purl", "referenceLocator": "pkg:npm/left-pad@1.3.0"}]}
  ]
}`

const cycloneDXDoc = `{
  "bomFormat": "CycloneDX",
  "specVersion": "1.5",
  "metadata": {"component": {"type": "application", "name": "app", "group": "org.example", "version": "1.0", "purl": "pkg:maven/org.example/app@1.0"}},
  "components": [
    {"type": "library", "group": "org.slf4j", "name": "slf4j-api", "version": "2.0.9", "purl": "pkg:maven/org.slf4j/slf4j-api@2.0.9",
     "licenses": [{"license": {"id": "MIT", "url": "https://opensource.org/licenses/MIT"}}],
     "externalReferences": [{"type": "website", "url": "https://www.slf4j.org"}],
     "components": [
       {"type": "library", "name": "nested", "version": "1", "purl": "pkg:maven/org.slf4j/nested@1", "licenses": [{"expression": "Apache-2.0 OR MIT"}]}
     ]},
    {"type": "library", "name": "junit", "version": "4.13.2", "scope": "excluded", "purl": "pkg:maven/junit/junit@4.13.2",
     "licenses": [{"license": {"name": "Eclipse Public License 1.0"}}]},
    {"type": "library", "name": "requests", "purl": "pkg:pypi/requests@2.31.0"}
  ]
}`

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatSPDX, DetectFormat([]byte(spdxDoc)))
	assert.Equal(t, FormatCycloneDX, DetectFormat([]byte(cycloneDXDoc)))
	assert.Equal(t, FormatUnknown, DetectFormat([]byte(`{"artifacts": []}`)))
	assert.Equal(t, FormatUnknown, DetectFormat([]byte(`not json`)))
}

func TestParseSBOM_SPDX(t *testing.T) {
	project, err := ParseSBOM([]byte(spdxDoc))
	require.NoError(t, err)

	assert.Equal(t, "org.example:app:1.0", project.Root.Coordinate.String())
	require.Len(t, project.Modules, 1)
	deps := project.Modules[0].Dependencies
	require.Len(t, deps, 2, "npm package is skipped")

	assert.Equal(t, "com.google.guava:guava:33.0.0-jre", deps[0].Coordinate.String())
	assert.Equal(t, []artifact.DeclaredLicense{{Name: "Apache-2.0"}}, deps[0].Licenses)
	assert.Equal(t, "https://github.com/google/guava", deps[0].URL)

	assert.Empty(t, deps[1].Licenses, "NOASSERTION and NONE carry no license")
	assert.Empty(t, deps[1].URL)
	assert.Equal(t, "zip", deps[1].Type)
}

func TestParseSBOM_CycloneDX(t *testing.T) {
	project, err := ParseSBOM([]byte(cycloneDXDoc))
	require.NoError(t, err)

	assert.Equal(t, "org.example:app:1.0", project.Root.Coordinate.String())
	deps := project.Modules[0].Dependencies
	require.Len(t, deps, 3)

	assert.Equal(t, "org.slf4j:slf4j-api:2.0.9", deps[0].Coordinate.String())
	assert.Equal(t, []artifact.DeclaredLicense{{Name: "MIT", URL: "https://opensource.org/licenses/MIT"}}, deps[0].Licenses)
	assert.Equal(t, "https://www.slf4j.org", deps[0].URL)

	assert.Equal(t, "nested", deps[1].ArtifactID)
	assert.Equal(t, "Apache-2.0 OR MIT", deps[1].Licenses[0].Name)

	assert.Equal(t, artifact.ScopeTest, deps[2].Scope)
	assert.Equal(t, "Eclipse Public License 1.0", deps[2].Licenses[0].Name)
}

func TestParseSBOM_Unknown(t *testing.T) {
	_, err := ParseSBOM([]byte(`{"foo": 1}`))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSBOMEnumerator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bom.json")
	writeFile(t, path, cycloneDXDoc)

	repoDir := t.TempDir()
	repo := NewLocalRepository(repoDir)
	writeFile(t, repo.Path(artifact.NewCoordinate("org.slf4j", "slf4j-api", "2.0.9"), "jar"), "jar")

	project, err := NewSBOMEnumerator(path, repo, nil).Enumerate(context.Background())
	require.NoError(t, err)
	deps := project.Modules[0].Dependencies
	assert.NotEmpty(t, deps[0].Location)
	assert.Empty(t, deps[1].Location)

	_, err = NewSBOMEnumerator(filepath.Join(dir, "absent.json"), nil, nil).Enumerate(context.Background())
	assert.Error(t, err)
}
