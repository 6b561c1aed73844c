package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/application/resolution"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/license"
	"github.com/felixgeelhaar/licensemap/internal/domain/licensemap"
	"github.com/felixgeelhaar/licensemap/internal/domain/override"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/internal/log/logtest"
	"github.com/felixgeelhaar/licensemap/internal/testing/mocks"
)

func newResolver(t *testing.T) *resolution.Resolver {
	t.Helper()
	apache, err := license.New("apache_v2", "Apache License version 2.0",
		license.WithSPDX("Apache-2.0"),
		license.WithAliases("The Apache Software License, Version 2.0"))
	require.NoError(t, err)
	acme, err := license.New("acme", "ACME proprietary", license.WithAliases("ACME EULA"))
	require.NoError(t, err)

	index := mocks.NewMockLicenseIndex(apache, acme)
	catalog := mocks.NewMockCatalog("Apache-2.0", "MIT")
	declared := resolution.NewDeclaredSource(index, catalog)
	return resolution.NewResolver(
		resolution.NewCanonicalizer(index, catalog),
		resolution.NewExtractor(catalog),
		resolution.WithSources(resolution.DefaultSources(nil, declared, nil, nil)...),
	)
}

func dep(id string, names ...string) artifact.Artifact {
	a := artifact.New(artifact.NewCoordinate("org.example", id, "1.0"))
	for _, n := range names {
		a.Licenses = append(a.Licenses, artifact.DeclaredLicense{Name: n})
	}
	return a
}

func testProject(deps ...artifact.Artifact) *ports.Project {
	root := artifact.New(artifact.NewCoordinate("org.example", "app", "1.0"))
	return &ports.Project{
		Root:    root,
		Modules: []artifact.Module{{Artifact: root, Dependencies: deps}},
	}
}

func TestResolveLicenses_Execute(t *testing.T) {
	declared := dep("declared", "The Apache Software License, Version 2.0")
	mit := dep("mit", "MIT")
	overridden := dep("overridden", "MIT")
	filled := dep("filled")
	mystery := dep("mystery")

	store := mocks.NewMockOverrideStore()
	overrides := override.NewTable("overrides.properties")
	overrides.Set(overridden.OverrideKey(), "ACME EULA")
	overrides.Set("org.other--gone--1.0", "MIT")
	store.Tables["overrides.properties"] = overrides

	missing := override.NewTable("missing.properties")
	missing.Set(filled.OverrideKey(), "MIT")
	missing.Set("org.example--removed--1.0", "")
	store.Tables["missing.properties"] = missing

	rec := logtest.NewRecorder()
	uc := NewResolveLicensesUseCase(
		&mocks.MockEnumerator{Project: testProject(declared, mit, overridden, filled, mystery, mit)},
		newResolver(t),
		WithOverrideStore(store),
		WithLogger(rec),
	)

	out, err := uc.Execute(context.Background(), ResolveLicensesInput{
		OverridesLocation: "overrides.properties",
		MissingPath:       "missing.properties",
		WriteMissing:      true,
	})
	require.NoError(t, err)

	lm := out.Report.Licenses
	assert.ElementsMatch(t, []string{"Apache-2.0", "MIT", "acme", licensemap.UnknownLicense}, lm.Keys())
	assert.Equal(t, []artifact.Artifact{declared}, lm.Get("Apache-2.0"))
	assert.Equal(t, []artifact.Artifact{overridden}, lm.Get("acme"))
	assert.ElementsMatch(t, []artifact.Artifact{filled, mit}, lm.Get("MIT"))
	assert.Equal(t, []artifact.Artifact{mystery}, lm.Get(licensemap.UnknownLicense))

	assert.Equal(t, report.SourceOverride, out.Report.Resolutions[overridden.ID()].Source)
	assert.Equal(t, report.SourceDeclared, out.Report.Resolutions[declared.ID()].Source)
	assert.Equal(t, report.SourceMissing, out.Report.Resolutions[filled.ID()].Source)
	assert.Equal(t, report.SourceNone, out.Report.Resolutions[mystery.ID()].Source)
	assert.Len(t, out.Report.Extended, 5)

	assert.Equal(t, []string{"org.other--gone--1.0"}, out.UnusedOverrides)
	assert.True(t, rec.Contains(log.LevelWarn, "override does not match any dependency"))

	assert.Equal(t, []string{"org.example--removed--1.0"}, out.StaleMissing)
	saved := store.Saved["missing.properties"]
	require.NotNil(t, saved)
	assert.Equal(t, []string{filled.OverrideKey(), mystery.OverrideKey()}, saved.Keys())
	v, _ := saved.Get(mystery.OverrideKey())
	assert.Empty(t, v)
	v, _ = saved.Get(filled.OverrideKey())
	assert.Equal(t, "MIT", v, "filled entries are kept")

	assert.Equal(t, report.Summary{Artifacts: 5, Licenses: 3, Unknown: 1}, out.Report.Summary())
}

func TestResolveLicenses_RemoteOverridesLogQuietly(t *testing.T) {
	store := mocks.NewMockOverrideStore()
	remote := override.NewTable("https://example.org/overrides.properties")
	remote.Set("org.other--gone--1.0", "MIT")
	store.Tables[remote.Source()] = remote

	rec := logtest.NewRecorder()
	uc := NewResolveLicensesUseCase(&mocks.MockEnumerator{Project: testProject(dep("mit", "MIT"))},
		newResolver(t), WithOverrideStore(store), WithLogger(rec))

	out, err := uc.Execute(context.Background(), ResolveLicensesInput{OverridesLocation: remote.Source()})
	require.NoError(t, err)

	assert.Equal(t, []string{"org.other--gone--1.0"}, out.UnusedOverrides)
	assert.False(t, rec.Contains(log.LevelWarn, "override does not match"))
	assert.True(t, rec.Contains(log.LevelDebug, "override does not match"))
}

func TestResolveLicenses_Merges(t *testing.T) {
	uc := NewResolveLicensesUseCase(
		&mocks.MockEnumerator{Project: testProject(dep("a", "Apache-2.0"), dep("b", "ACME EULA"), dep("c", "Custom"))},
		newResolver(t),
	)

	out, err := uc.Execute(context.Background(), ResolveLicensesInput{
		Merges: [][]string{{"The Apache Software License, Version 2.0", "ACME EULA", "Custom"}},
	})
	require.NoError(t, err)

	lm := out.Report.Licenses
	assert.Equal(t, []string{"Apache-2.0"}, lm.Keys())
	assert.Len(t, lm.Get("Apache-2.0"), 3)
}

func TestResolveLicenses_SameNameUnknownDependencies(t *testing.T) {
	tests := []struct {
		name string
		a, b artifact.Coordinate
	}{
		{"different group", artifact.NewCoordinate("org.one", "util", "1.0"), artifact.NewCoordinate("org.two", "util", "1.0")},
		{"different version", artifact.NewCoordinate("org.example", "util", "1.0"), artifact.NewCoordinate("org.example", "util", "2.0")},
		{"different artifact", artifact.NewCoordinate("org.example", "util-core", "1.0"), artifact.NewCoordinate("org.example", "util-io", "1.0")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := artifact.New(tt.a), artifact.New(tt.b)
			a.Name, b.Name = "Util", "Util"

			uc := NewResolveLicensesUseCase(&mocks.MockEnumerator{Project: testProject(a, b)}, newResolver(t))
			out, err := uc.Execute(context.Background(), ResolveLicensesInput{})
			require.NoError(t, err)

			unknown := out.Report.Licenses.Get(licensemap.UnknownLicense)
			assert.Len(t, unknown, 2)
			assert.ElementsMatch(t, []artifact.Artifact{a, b}, unknown)
			assert.Equal(t, 2, out.Report.Summary().Unknown)
		})
	}
}

func TestResolveLicenses_ExpectedDependencies(t *testing.T) {
	enum := &mocks.MockEnumerator{Project: testProject(dep("mit", "MIT"))}

	t.Run("warn", func(t *testing.T) {
		rec := logtest.NewRecorder()
		uc := NewResolveLicensesUseCase(enum, newResolver(t), WithLogger(rec))

		out, err := uc.Execute(context.Background(), ResolveLicensesInput{
			ExpectedDependencies: []string{"org.example:mit", "com.acme:gone"},
		})
		require.NoError(t, err)
		assert.NotNil(t, out.Report)
		assert.True(t, rec.Contains(log.LevelWarn, "Dependency [com.acme:gone] is mentioned in expected_dependencies but isn't used in the project org.example:app"))
	})

	t.Run("fail", func(t *testing.T) {
		uc := NewResolveLicensesUseCase(enum, newResolver(t))

		out, err := uc.Execute(context.Background(), ResolveLicensesInput{
			ExpectedDependencies:      []string{"com.acme:gone"},
			FailOnUnknownDependencies: true,
		})
		require.ErrorIs(t, err, ErrUnknownDependency)
		require.NotNil(t, out.Report, "the report is still returned")
		assert.Equal(t, []string{"MIT"}, out.Report.Licenses.Keys())
	})
}

func TestResolveLicenses_Errors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name  string
		enum  *mocks.MockEnumerator
		store func() *mocks.MockOverrideStore
		input ResolveLicensesInput
		want  string
	}{
		{
			name:  "enumeration",
			enum:  &mocks.MockEnumerator{Err: boom},
			store: mocks.NewMockOverrideStore,
			want:  "failed to enumerate dependencies",
		},
		{
			name: "overrides",
			enum: &mocks.MockEnumerator{Project: testProject()},
			store: func() *mocks.MockOverrideStore {
				s := mocks.NewMockOverrideStore()
				s.LoadErr = boom
				return s
			},
			input: ResolveLicensesInput{OverridesLocation: "overrides.properties"},
			want:  "failed to load overrides",
		},
		{
			name: "write missing",
			enum: &mocks.MockEnumerator{Project: testProject(dep("mystery"))},
			store: func() *mocks.MockOverrideStore {
				s := mocks.NewMockOverrideStore()
				s.SaveErr = boom
				return s
			},
			input: ResolveLicensesInput{MissingPath: "missing.properties", WriteMissing: true},
			want:  "failed to write missing file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewResolveLicensesUseCase(tt.enum, newResolver(t), WithOverrideStore(tt.store()))
			_, err := uc.Execute(context.Background(), tt.input)
			require.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestResolveLicenses_OrderIndependentOfExecutor(t *testing.T) {
	deps := []artifact.Artifact{dep("a", "MIT"), dep("b", "Apache-2.0"), dep("c")}
	enum := &mocks.MockEnumerator{Project: testProject(deps...)}

	forward, err := NewResolveLicensesUseCase(enum, newResolver(t)).
		Execute(context.Background(), ResolveLicensesInput{})
	require.NoError(t, err)
	reversed, err := NewResolveLicensesUseCase(enum, newResolver(t), WithExecutor(reverseExecutor{})).
		Execute(context.Background(), ResolveLicensesInput{})
	require.NoError(t, err)

	assert.Equal(t, []string{"MIT", "Apache-2.0", licensemap.UnknownLicense}, forward.Report.Licenses.Keys())
	assert.Equal(t, forward.Report.Licenses.Keys(), reversed.Report.Licenses.Keys())
}

func TestResolveLicenses_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewResolveLicensesUseCase(&mocks.MockEnumerator{Project: testProject(dep("a", "MIT"))}, newResolver(t))
	_, err := uc.Execute(ctx, ResolveLicensesInput{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolveLicenses_Progress(t *testing.T) {
	w := &progressWriter{}
	uc := NewResolveLicensesUseCase(&mocks.MockEnumerator{Project: testProject(dep("a", "MIT"), dep("b", "MIT"))},
		newResolver(t), WithProgressWriter(w))

	_, err := uc.Execute(context.Background(), ResolveLicensesInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Resolving 2 dependencies..."}, w.messages)
}

type reverseExecutor struct{}

func (reverseExecutor) Each(ctx context.Context, artifacts []artifact.Artifact, fn ports.ArtifactFunc) error {
	for i := len(artifacts) - 1; i >= 0; i-- {
		fn(ctx, i, artifacts[i])
	}
	return nil
}

type progressWriter struct {
	messages []string
}

func (w *progressWriter) WriteReport(*report.Report) error { return nil }
func (w *progressWriter) WriteProgress(msg string) error {
	w.messages = append(w.messages, msg)
	return nil
}
func (w *progressWriter) WriteError(error) error { return nil }
func (w *progressWriter) Flush() error            { return nil }
