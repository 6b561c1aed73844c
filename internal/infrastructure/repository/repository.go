// Package repository loads canonical license definitions and indexes them
// into a store.
package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/license"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/transport"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// Definition file names, looked up in this order.
const (
	DefinitionFile       = "licenses.yaml"
	LegacyDefinitionFile = "licenses.properties"
	HeaderFile           = "header.txt"
	LicenseFile          = "license.txt"
)

type definitionFile struct {
	Licenses []definition `yaml:"licenses"`
}

type definition struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Aliases     []string `yaml:"aliases"`
	SPDX        string   `yaml:"spdx"`
	HeaderURL   string   `yaml:"header_url"`
	LicenseURL  string   `yaml:"license_url"`
}

// Repository is an ordered set of license definitions under one base
// location. It is read-only once loaded.
type Repository struct {
	base     string
	fetcher  ports.ContentFetcher
	logger   log.Logger
	licenses []license.License
	loaded   bool
}

// New creates an unloaded repository for base.
func New(base string, fetcher ports.ContentFetcher, logger log.Logger) *Repository {
	return &Repository{base: strings.TrimSpace(base), fetcher: fetcher, logger: log.OrNop(logger)}
}

// Base returns the base location.
func (r *Repository) Base() string { return r.base }

// Loaded reports whether Load succeeded.
func (r *Repository) Loaded() bool { return r.loaded }

// Load reads the definition file under the base location. A repository
// loads at most once; a failed load may be retried.
func (r *Repository) Load(ctx context.Context) error {
	if r.loaded {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, r.base)
	}
	if r.base == "" {
		return ErrNoBaseLocation
	}

	licenses, err := r.readDefinitions(ctx)
	if err != nil {
		return err
	}

	seen := make(map[string]int, len(licenses))
	r.licenses = r.licenses[:0]
	for _, l := range licenses {
		if i, dup := seen[l.Name()]; dup {
			r.licenses[i] = l
			continue
		}
		seen[l.Name()] = len(r.licenses)
		r.licenses = append(r.licenses, l)
		log.Debug(ctx, r.logger, "registered license",
			log.String("name", l.Name()), log.String("description", l.Description()))
	}
	r.loaded = true
	log.Info(ctx, r.logger, "loaded license repository",
		log.String("base", r.base), log.Int("licenses", len(r.licenses)))
	return nil
}

func (r *Repository) readDefinitions(ctx context.Context) ([]license.License, error) {
	data, err := r.fetcher.Fetch(ctx, r.resolve(DefinitionFile))
	if err == nil {
		return r.parseYAML(data)
	}
	if !errors.Is(err, ports.ErrContentNotFound) {
		return nil, fmt.Errorf("failed to read %s: %w", DefinitionFile, err)
	}

	data, err = r.fetcher.Fetch(ctx, r.resolve(LegacyDefinitionFile))
	if err != nil {
		if errors.Is(err, ports.ErrContentNotFound) {
			return nil, fmt.Errorf("%w under %s", ErrNoDefinitionFile, r.base)
		}
		return nil, fmt.Errorf("failed to read %s: %w", LegacyDefinitionFile, err)
	}
	return r.parseProperties(data)
}

func (r *Repository) parseYAML(data []byte) ([]license.License, error) {
	var file definitionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", DefinitionFile, err)
	}

	out := make([]license.License, 0, len(file.Licenses))
	for i, d := range file.Licenses {
		name := license.NormalizeName(d.Name)
		if name == "" {
			return nil, fmt.Errorf("failed to parse %s: entry %d: %w", DefinitionFile, i, license.ErrEmptyName)
		}
		l, err := license.New(name, d.Description,
			license.WithAliases(d.Aliases...),
			license.WithSPDX(d.SPDX),
			license.WithHeaderURL(r.textURL(name, d.HeaderURL, HeaderFile)),
			license.WithLicenseURL(r.textURL(name, d.LicenseURL, LicenseFile)),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *Repository) parseProperties(data []byte) ([]license.License, error) {
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", LegacyDefinitionFile, err)
	}

	keys := p.Keys()
	sort.Strings(keys)
	out := make([]license.License, 0, len(keys))
	for _, key := range keys {
		name := license.NormalizeName(key)
		if name == "" {
			continue
		}
		desc, _ := p.Get(key)
		l, err := license.New(name, desc,
			license.WithHeaderURL(r.textURL(name, "", HeaderFile)),
			license.WithLicenseURL(r.textURL(name, "", LicenseFile)),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// textURL returns explicit when it is absolute, explicit resolved against
// the license directory when relative, or the default file name.
func (r *Repository) textURL(name, explicit, file string) string {
	explicit = strings.TrimSpace(explicit)
	switch {
	case explicit == "":
		return r.resolve(name, file)
	case transport.IsURL(explicit), filepath.IsAbs(explicit):
		return explicit
	default:
		return r.resolve(name, explicit)
	}
}

func (r *Repository) resolve(elem ...string) string {
	if transport.IsURL(r.base) {
		return strings.TrimRight(r.base, "/") + "/" + path.Join(elem...)
	}
	return filepath.Join(append([]string{r.base}, elem...)...)
}

// Get returns the license with exactly name.
func (r *Repository) Get(name string) (license.License, error) {
	if !r.loaded {
		return license.License{}, fmt.Errorf("%w: get %q", ErrNotLoaded, name)
	}
	if name == "" {
		return license.License{}, ErrEmptyLicenseName
	}
	for _, l := range r.licenses {
		if l.Name() == name {
			return l, nil
		}
	}
	return license.License{}, fmt.Errorf("%w: %s", ErrLicenseNotFound, name)
}

// Names returns the license names in definition order.
func (r *Repository) Names() ([]string, error) {
	if !r.loaded {
		return nil, fmt.Errorf("%w: names", ErrNotLoaded)
	}
	out := make([]string, 0, len(r.licenses))
	for _, l := range r.licenses {
		out = append(out, l.Name())
	}
	return out, nil
}

// Licenses returns a copy of the licenses in definition order.
func (r *Repository) Licenses() ([]license.License, error) {
	if !r.loaded {
		return nil, fmt.Errorf("%w: licenses", ErrNotLoaded)
	}
	return append([]license.License{}, r.licenses...), nil
}

// String identifies the repository in messages.
func (r *Repository) String() string {
	return "repository(" + r.base + ")"
}

// readText fetches the text at ref, returning an empty string when absent.
func readText(ctx context.Context, f ports.ContentFetcher, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(data, "\n")), nil
}
