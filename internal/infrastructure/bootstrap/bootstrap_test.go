package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/licensemap"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/config"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/enumerator"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/registry"
	"github.com/felixgeelhaar/licensemap/internal/log/logtest"
)

const projectPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>app</artifactId>
  <version>1.0</version>
  <dependencies>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>lib</artifactId>
      <version>2.0</version>
    </dependency>
    <dependency>
      <groupId>org.example</groupId>
      <artifactId>mystery</artifactId>
      <version>0.1</version>
    </dependency>
  </dependencies>
</project>`

const libPOM = `<project>
  <groupId>org.example</groupId>
  <artifactId>lib</artifactId>
  <version>2.0</version>
  <name>Example Lib</name>
  <licenses>
    <license>
      <name>The Apache Software License, Version 2.0</name>
    </license>
  </licenses>
</project>`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newRuntime(t *testing.T, mutate func(*config.Config)) *Runtime {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.LocalRepository = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	rt, err := New(context.Background(), cfg, logtest.NewRecorder())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestNew_LoadsBundledStore(t *testing.T) {
	rt := newRuntime(t, nil)

	l, ok := rt.Store.Lookup("Apache 2.0")
	require.True(t, ok)
	assert.Equal(t, "Apache-2.0", l.Key())
	assert.True(t, rt.Catalog.Has("MIT"))
}

func TestNew_EmptyStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bundled = false

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNew_MergesURL(t *testing.T) {
	mergesPath := filepath.Join(t.TempDir(), "merges.txt")
	writeFile(t, mergesPath, "# shared merges\nApache-2.0|ASL 2\n\nMIT|MIT License\nApache-2.0|ASL 2\n")

	rt := newRuntime(t, func(c *config.Config) {
		c.Merges = []string{"EPL-1.0|Eclipse"}
		c.MergesURL = mergesPath
	})

	assert.Equal(t, [][]string{
		{"EPL-1.0", "Eclipse"},
		{"Apache-2.0", "ASL 2"},
		{"MIT", "MIT License"},
	}, rt.Input().Merges)
}

func TestNew_MergesURLMissing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.MergesURL = filepath.Join(t.TempDir(), "absent.txt")

	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "license merges")
}

func TestRuntime_Registry(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantNil bool
		wantErr bool
		check   func(t *testing.T, v any)
	}{
		{
			name:    "none",
			mutate:  func(c *config.Config) { c.Registry.Kind = config.RegistryNone },
			wantNil: true,
		},
		{
			name: "http cached",
			mutate: func(c *config.Config) {
				c.Registry.Kind = config.RegistryHTTP
				c.Registry.URL = "http://127.0.0.1:1/{group}/{artifact}/{version}"
			},
			check: func(t *testing.T, v any) {
				assert.IsType(t, &registry.CachingResolver{}, v)
			},
		},
		{
			name: "http uncached",
			mutate: func(c *config.Config) {
				c.Registry.Kind = config.RegistryHTTP
				c.Registry.URL = "http://127.0.0.1:1/{group}/{artifact}/{version}"
				c.Registry.CacheSize = 0
			},
			check: func(t *testing.T, v any) {
				assert.IsType(t, &registry.HTTPResolver{}, v)
			},
		},
		{
			name:    "http without template",
			mutate:  func(c *config.Config) { c.Registry.Kind = config.RegistryHTTP },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			rt := &Runtime{Config: cfg, Logger: logtest.NewRecorder()}

			got, err := rt.Registry()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			tt.check(t, got)

			again, err := rt.Registry()
			require.NoError(t, err)
			assert.Same(t, got, again)
		})
	}
}

func TestRuntime_Enumerator(t *testing.T) {
	rt := &Runtime{Config: config.DefaultConfig(), Logger: logtest.NewRecorder()}

	_, _, err := rt.Enumerator(Target{})
	assert.ErrorIs(t, err, ErrNoTarget)

	enum, meta, err := rt.Enumerator(Target{POM: "pom.xml"})
	require.NoError(t, err)
	assert.IsType(t, &enumerator.MavenEnumerator{}, enum)
	assert.Same(t, enum, meta)

	enum, meta, err = rt.Enumerator(Target{POM: "pom.xml", SBOM: "bom.json"})
	require.NoError(t, err)
	assert.IsType(t, &enumerator.SBOMEnumerator{}, enum)
	assert.IsType(t, &enumerator.MavenEnumerator{}, meta)
}

func TestRuntime_Input(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Overrides = "overrides.properties"
	cfg.Missing = config.MissingConfig{Path: "missing.properties", Write: true}
	cfg.Merges = []string{"Apache-2.0|ASL"}
	cfg.ExpectedDependencies = []string{"org.example:lib"}
	cfg.UnknownDependencies = config.UnknownFail
	rt := &Runtime{Config: cfg}

	in := rt.Input()

	assert.Equal(t, "overrides.properties", in.OverridesLocation)
	assert.Equal(t, "missing.properties", in.MissingPath)
	assert.True(t, in.WriteMissing)
	assert.Equal(t, [][]string{{"Apache-2.0", "ASL"}}, in.Merges)
	assert.Equal(t, []string{"org.example:lib"}, in.ExpectedDependencies)
	assert.True(t, in.FailOnUnknownDependencies)
}

func TestRuntime_UseCase(t *testing.T) {
	projectDir := t.TempDir()
	writeFile(t, filepath.Join(projectDir, "pom.xml"), projectPOM)

	rt := newRuntime(t, func(c *config.Config) { c.Workers = 2 })
	repo := enumerator.NewLocalRepository(rt.Config.LocalRepository)
	writeFile(t, repo.Path(artifact.NewCoordinate("org.example", "lib", "2.0"), "pom"), libPOM)

	uc, err := rt.UseCase(context.Background(), Target{POM: projectDir}, nil)
	require.NoError(t, err)

	out, err := uc.Execute(context.Background(), rt.Input())
	require.NoError(t, err)

	rep := out.Report
	assert.Equal(t, "org.example:app:1.0", rep.Project.String())
	require.Len(t, rep.Licenses.Get("Apache-2.0"), 1)
	assert.Equal(t, "lib", rep.Licenses.Get("Apache-2.0")[0].ArtifactID)
	assert.Equal(t, report.SourceDeclared, rep.Resolutions["org.example--lib--2.0"].Source)

	unknown := rep.Licenses.Get(licensemap.UnknownLicense)
	require.Len(t, unknown, 1)
	assert.Equal(t, "mystery", unknown[0].ArtifactID)
}
