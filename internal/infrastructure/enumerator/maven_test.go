package enumerator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

const parentPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>parent</artifactId>
  <version>2.0</version>
  <packaging>pom</packaging>
  <properties>
    <guava.version>33.0.0-jre</guava.version>
  </properties>
  <licenses>
    <license>
      <name>Apache License, Version 2.0</name>
      <url>https://www.apache.org/licenses/LICENSE-2.0.txt</url>
    </license>
  </licenses>
  <modules>
    <module>core</module>
  </modules>
  <dependencyManagement>
    <dependencies>
      <dependency>
        <groupId>org.slf4j</groupId>
        <artifactId>slf4j-api</artifactId>
        <version>2.0.9</version>
      </dependency>
    </dependencies>
  </dependencyManagement>
</project>`

const corePOM = `<project>
  <parent>
    <groupId>org.example</groupId>
    <artifactId>parent</artifactId>
    <version>2.0</version>
  </parent>
  <artifactId>core</artifactId>
  <name>Example Core</name>
  <dependencies>
    <dependency>
      <groupId>com.google.guava</groupId>
      <artifactId>guava</artifactId>
      <version>${guava.version}</version>
    </dependency>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>`

const guavaPOM = `<project>
  <groupId>com.google.guava</groupId>
  <artifactId>guava</artifactId>
  <version>33.0.0-jre</version>
  <name>Guava: Google Core Libraries for Java</name>
  <url>https://github.com/google/guava</url>
  <inceptionYear>2010</inceptionYear>
  <organization>
    <name>Google LLC</name>
    <url>http://www.google.com</url>
  </organization>
  <licenses>
    <license>
      <name>Apache License, Version 2.0</name>
      <url>http://www.apache.org/licenses/LICENSE-2.0.txt</url>
    </license>
  </licenses>
  <developers>
    <developer>
      <id>kevinb9n</id>
      <name>Kevin Bourrillion</name>
      <email>kevinb@google.com</email>
      <organization>Google</organization>
    </developer>
  </developers>
  <scm>
    <url>https://github.com/google/guava</url>
    <connection>scm:git:https://github.com/google/guava.git</connection>
  </scm>
</project>`

func newReactor(t *testing.T) (projectDir, repoDir string) {
	t.Helper()
	projectDir = t.TempDir()
	repoDir = t.TempDir()
	writeFile(t, filepath.Join(projectDir, "pom.xml"), parentPOM)
	writeFile(t, filepath.Join(projectDir, "core", "pom.xml"), corePOM)

	repo := NewLocalRepository(repoDir)
	guava := artifact.NewCoordinate("com.google.guava", "guava", "33.0.0-jre")
	writeFile(t, repo.Path(guava, "pom"), guavaPOM)
	writeFile(t, repo.Path(guava, "jar"), "not really a jar")
	return projectDir, repoDir
}

func TestLocalRepository_Path(t *testing.T) {
	repo := NewLocalRepository("/m2")
	c := artifact.NewCoordinate("org.apache.commons", "commons-lang3", "3.14.0")
	assert.Equal(t, filepath.Join("/m2", "org", "apache", "commons", "commons-lang3", "3.14.0", "commons-lang3-3.14.0.pom"), repo.Path(c, "pom"))

	c.Classifier = "sources"
	assert.Equal(t, filepath.Join("/m2", "org", "apache", "commons", "commons-lang3", "3.14.0", "commons-lang3-3.14.0-sources.jar"), repo.Path(c, "jar"))
}

func TestMavenEnumerator_Reactor(t *testing.T) {
	projectDir, repoDir := newReactor(t)
	e := NewMavenEnumerator(projectDir, WithLocalRepository(repoDir))

	project, err := e.Enumerate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "org.example:parent:2.0", project.Root.Coordinate.String())
	assert.Equal(t, []artifact.DeclaredLicense{{
		Name: "Apache License, Version 2.0",
		URL:  "https://www.apache.org/licenses/LICENSE-2.0.txt",
	}}, project.Root.Licenses)

	require.Len(t, project.Modules, 2)
	assert.Empty(t, project.Modules[0].Dependencies)

	core := project.Modules[1]
	assert.Equal(t, "org.example:core:2.0", core.Coordinate.String(), "groupId and version inherit from the parent")
	assert.Equal(t, "Example Core", core.Name)
	require.Len(t, core.Licenses, 1, "licenses inherit from the parent")

	require.Len(t, core.Dependencies, 3)
	guava := core.Dependencies[0]
	assert.Equal(t, "com.google.guava:guava:33.0.0-jre", guava.Coordinate.String(), "version property is interpolated")
	assert.Equal(t, "Guava: Google Core Libraries for Java", guava.Name)
	assert.Equal(t, "http://www.apache.org/licenses/LICENSE-2.0.txt", guava.Licenses[0].URL)
	assert.NotEmpty(t, guava.Location)
	assert.Equal(t, artifact.ScopeCompile, guava.Scope)

	slf4j := core.Dependencies[1]
	assert.Equal(t, "2.0.9", slf4j.Version, "version comes from dependency management")
	assert.Empty(t, slf4j.Location)
	assert.Empty(t, slf4j.Licenses)

	assert.Equal(t, artifact.ScopeTest, core.Dependencies[2].Scope)
}

func TestMavenEnumerator_Describe(t *testing.T) {
	projectDir, repoDir := newReactor(t)
	e := NewMavenEnumerator(filepath.Join(projectDir, "pom.xml"), WithLocalRepository(repoDir))

	ext := infofile.NewExtendedInfo(artifact.New(artifact.NewCoordinate("com.google.guava", "guava", "33.0.0-jre")))
	require.NoError(t, e.Describe(context.Background(), ext))

	assert.Equal(t, "2010", ext.InceptionYear)
	assert.Equal(t, "Google LLC", ext.Organization.Name)
	assert.Equal(t, "scm:git:https://github.com/google/guava.git", ext.SCM.Connection)
	require.Len(t, ext.Developers, 1)
	assert.Equal(t, "kevinb9n", ext.Developers[0].ID)

	missing := infofile.NewExtendedInfo(artifact.New(artifact.NewCoordinate("org", "absent", "1")))
	assert.ErrorIs(t, e.Describe(context.Background(), missing), ErrPOMNotFound)
}

func TestMavenEnumerator_Errors(t *testing.T) {
	_, err := NewMavenEnumerator(filepath.Join(t.TempDir(), "pom.xml")).Enumerate(context.Background())
	assert.ErrorIs(t, err, ErrPOMNotFound)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pom.xml"), "<project><artifactId>broken</artifactId>")
	_, err = NewMavenEnumerator(dir).Enumerate(context.Background())
	assert.Error(t, err)

	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, "pom.xml"), `<project><groupId>g</groupId><artifactId>a</artifactId><version>1</version><modules><module>gone</module></modules></project>`)
	_, err = NewMavenEnumerator(dir).Enumerate(context.Background())
	assert.ErrorIs(t, err, ErrPOMNotFound)
}
