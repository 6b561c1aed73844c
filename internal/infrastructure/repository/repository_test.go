package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/licensemap/internal/infrastructure/transport"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/internal/log/logtest"
)

func bundledFetcher() *transport.Fetcher {
	return transport.NewFetcher(transport.WithBundled(BundledFS()))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRepository_LoadBundled(t *testing.T) {
	repo := New(BundledBase, bundledFetcher(), nil)
	require.NoError(t, repo.Load(context.Background()))

	names, err := repo.Names()
	require.NoError(t, err)
	assert.ElementsMatch(t, DefaultLicenseNames, names)

	l, err := repo.Get("apache_v2")
	require.NoError(t, err)
	assert.Equal(t, "Apache License version 2.0", l.Description())
	assert.Equal(t, "Apache-2.0", l.SPDXID())
	assert.Equal(t, "bundled:licenses/apache_v2/header.txt", l.HeaderURL())
	assert.Equal(t, "https://www.apache.org/licenses/LICENSE-2.0.txt", l.LicenseURL())
}

func TestRepository_Lifecycle(t *testing.T) {
	repo := New(BundledBase, bundledFetcher(), nil)

	_, err := repo.Names()
	assert.ErrorIs(t, err, ErrNotLoaded)
	_, err = repo.Get("mit")
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, repo.Load(context.Background()))
	assert.True(t, repo.Loaded())
	assert.ErrorIs(t, repo.Load(context.Background()), ErrAlreadyLoaded)

	_, err = repo.Get("")
	assert.ErrorIs(t, err, ErrEmptyLicenseName)
	_, err = repo.Get("MIT")
	assert.ErrorIs(t, err, ErrLicenseNotFound)
}

func TestRepository_LoadErrors(t *testing.T) {
	assert.ErrorIs(t, New("", bundledFetcher(), nil).Load(context.Background()), ErrNoBaseLocation)
	assert.ErrorIs(t, New(t.TempDir(), bundledFetcher(), nil).Load(context.Background()), ErrNoDefinitionFile)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefinitionFile), "licenses: [name: ")
	assert.Error(t, New(dir, bundledFetcher(), nil).Load(context.Background()))

	dir = t.TempDir()
	writeFile(t, filepath.Join(dir, DefinitionFile), "licenses:\n  - description: nameless\n")
	assert.Error(t, New(dir, bundledFetcher(), nil).Load(context.Background()))
}

func TestRepository_LoadLegacyProperties(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, LegacyDefinitionFile), "  Company_V1 = Company License v1\nother=Other license\n")
	writeFile(t, filepath.Join(dir, "company_v1", HeaderFile), "Company header\n")

	rec := logtest.NewRecorder()
	repo := New(dir, bundledFetcher(), rec)
	require.NoError(t, repo.Load(context.Background()))

	names, err := repo.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"company_v1", "other"}, names)

	l, err := repo.Get("company_v1")
	require.NoError(t, err)
	assert.Equal(t, "Company License v1", l.Description())
	assert.Equal(t, filepath.Join(dir, "company_v1", HeaderFile), l.HeaderURL())
	assert.True(t, rec.Contains(log.LevelInfo, "loaded license repository"))
}

func TestRepository_YAMLRelativeAndDuplicateEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, DefinitionFile), `licenses:
  - name: acme
    description: first
  - name: ACME
    description: second
    header_url: texts/acme-header.txt
    license_url: https://acme.example/license
`)

	repo := New(dir, bundledFetcher(), nil)
	require.NoError(t, repo.Load(context.Background()))

	licenses, err := repo.Licenses()
	require.NoError(t, err)
	require.Len(t, licenses, 1)
	assert.Equal(t, "second", licenses[0].Description())
	assert.Equal(t, filepath.Join(dir, "acme", "texts/acme-header.txt"), licenses[0].HeaderURL())
	assert.Equal(t, "https://acme.example/license", licenses[0].LicenseURL())
}
