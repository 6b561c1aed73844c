package workspace

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
)

func dep(g, a, scope string) artifact.Artifact {
	d := artifact.New(artifact.NewCoordinate(g, a, "1.0"))
	d.Scope = scope
	return d
}

func testProject() *ports.Project {
	root := artifact.New(artifact.NewCoordinate("org.example", "parent", "1.0"))
	return &ports.Project{
		Root: root,
		Modules: []artifact.Module{
			{Artifact: root},
			{
				Artifact: artifact.New(artifact.NewCoordinate("org.example", "core", "1.0")),
				Dependencies: []artifact.Artifact{
					dep("com.google.guava", "guava", artifact.ScopeCompile),
					dep("junit", "junit", artifact.ScopeTest),
					dep("com.sun", "tools", artifact.ScopeSystem),
				},
			},
			{
				Artifact: artifact.New(artifact.NewCoordinate("org.example", "web", "1.0")),
				Dependencies: []artifact.Artifact{
					dep("org.example", "core", artifact.ScopeCompile),
					dep("com.google.guava", "guava", artifact.ScopeCompile),
					dep("org.internal", "secret", artifact.ScopeCompile),
				},
			},
			{
				Artifact: artifact.New(artifact.NewCoordinate("org.example", "docs-site", "1.0")),
				Dependencies: []artifact.Artifact{
					dep("org.webjars", "bootstrap", artifact.ScopeCompile),
				},
			},
		},
	}
}

func ids(as []artifact.Artifact) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.GA()
	}
	return out
}

func TestModuleFilter_Select(t *testing.T) {
	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{
			name: "defaults skip system scope and reactor modules",
			opts: DefaultFilterOptions(),
			want: []string{"com.google.guava:guava", "junit:junit", "org.internal:secret", "org.webjars:bootstrap"},
		},
		{
			name: "excluded scopes and groups",
			opts: FilterOptions{
				ExcludedScopes: []string{artifact.ScopeSystem, artifact.ScopeTest},
				ExcludedGroups: []string{"org.internal*"},
			},
			want: []string{"com.google.guava:guava", "org.webjars:bootstrap"},
		},
		{
			name: "include modules",
			opts: FilterOptions{IncludeModules: []string{"web"}},
			want: []string{"com.google.guava:guava", "org.internal:secret"},
		},
		{
			name: "exclude pattern wins over include",
			opts: FilterOptions{IncludeModules: []string{"*"}, ExcludeModules: []string{"docs-*", "core"}},
			want: []string{"com.google.guava:guava", "org.internal:secret"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewModuleFilter(tt.opts).Select(testProject())
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestModuleFilter_DistinctTypesAreDistinctArtifacts(t *testing.T) {
	jar := dep("g", "a", artifact.ScopeCompile)
	tests := dep("g", "a", artifact.ScopeCompile)
	tests.Classifier = "tests"

	p := &ports.Project{Modules: []artifact.Module{{
		Artifact:     artifact.New(artifact.NewCoordinate("org", "m", "1")),
		Dependencies: []artifact.Artifact{jar, tests, jar},
	}}}

	assert.Len(t, NewModuleFilter(FilterOptions{}).Select(p), 2)
}

func TestModuleFilter_Modules(t *testing.T) {
	f := NewModuleFilter(FilterOptions{ExcludeModules: []string{"parent"}})
	mods := f.Modules(testProject())

	assert.Len(t, mods, 3)
	assert.Equal(t, "core", mods[0].ArtifactID)
}
