package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/license"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// Store indexes licenses from an ordered list of repositories. The
// bundled repository comes first; later repositories replace earlier
// definitions with the same name. The index is read-only after Init.
type Store struct {
	fetcher      ports.ContentFetcher
	logger       log.Logger
	withBundled  bool
	bases        []string
	repositories []*Repository
	index        map[string]license.License
	initialized  bool
}

var _ ports.LicenseIndex = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithoutBundled excludes the bundled repository.
func WithoutBundled() StoreOption {
	return func(s *Store) {
		s.withBundled = false
	}
}

// WithRepositories registers user repository base locations, in order.
func WithRepositories(bases ...string) StoreOption {
	return func(s *Store) {
		for _, b := range bases {
			if b = strings.TrimSpace(b); b != "" {
				s.bases = append(s.bases, b)
			}
		}
	}
}

// WithStoreLogger sets the logger. A nil logger discards output.
func WithStoreLogger(l log.Logger) StoreOption {
	return func(s *Store) {
		s.logger = log.OrNop(l)
	}
}

// NewStore creates a store. Call Init before use.
func NewStore(fetcher ports.ContentFetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher:     fetcher,
		logger:      log.NewNop(),
		withBundled: true,
		index:       make(map[string]license.License),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads every repository and builds the index. A repository that
// fails to load is skipped with a warning; a store left without any
// license is an error.
func (s *Store) Init(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	var bases []string
	if s.withBundled {
		bases = append(bases, BundledBase)
	}
	bases = append(bases, s.bases...)

	for _, base := range bases {
		repo := New(base, s.fetcher, s.logger)
		if err := repo.Load(ctx); err != nil {
			log.Warn(ctx, s.logger, "skipping license repository",
				log.String("base", base), log.Err(err))
			continue
		}
		s.repositories = append(s.repositories, repo)
	}

	s.rebuild()
	s.initialized = true
	if len(s.index) == 0 {
		return fmt.Errorf("%w: no license found in %s", ErrEmptyStore, strings.Join(bases, ", "))
	}
	return nil
}

// AddRepository loads base and registers it last, so its definitions
// take precedence. Unlike Init, a load failure is returned.
func (s *Store) AddRepository(ctx context.Context, base string) error {
	repo := New(base, s.fetcher, s.logger)
	if err := repo.Load(ctx); err != nil {
		return fmt.Errorf("failed to load license repository: %w", err)
	}
	s.repositories = append(s.repositories, repo)
	s.rebuild()
	return nil
}

func (s *Store) rebuild() {
	index := make(map[string]license.License)
	for _, repo := range s.repositories {
		licenses, err := repo.Licenses()
		if err != nil {
			continue
		}
		for _, l := range licenses {
			index[l.Name()] = l
		}
	}
	s.index = index
}

// Repositories returns the loaded repositories in registration order.
func (s *Store) Repositories() []*Repository {
	return append([]*Repository{}, s.repositories...)
}

// Get returns the license with exactly name.
func (s *Store) Get(name string) (license.License, error) {
	if name == "" {
		return license.License{}, ErrEmptyLicenseName
	}
	l, ok := s.index[name]
	if !ok {
		return license.License{}, fmt.Errorf("%w: %s", ErrLicenseNotFound, name)
	}
	return l, nil
}

// Lookup resolves s by canonical name, then by alias or SPDX id. Later
// repositories are searched first. The returned license is always the
// indexed definition for its canonical name.
func (s *Store) Lookup(name string) (license.License, bool) {
	if name == "" {
		return license.License{}, false
	}
	if l, ok := s.index[name]; ok {
		return l, true
	}
	if l, ok := s.index[license.NormalizeName(name)]; ok {
		return l, true
	}
	for i := len(s.repositories) - 1; i >= 0; i-- {
		licenses, err := s.repositories[i].Licenses()
		if err != nil {
			continue
		}
		for _, l := range licenses {
			if l.Matches(name) {
				return s.index[l.Name()], true
			}
		}
	}
	return license.License{}, false
}

// LookupURL returns the license whose published text lives at u. http
// and https forms of u match alike.
func (s *Store) LookupURL(u string) (license.License, bool) {
	want := comparableURL(u)
	if want == "" {
		return license.License{}, false
	}
	for _, l := range s.Licenses() {
		if comparableURL(l.LicenseURL()) == want {
			return l, true
		}
	}
	return license.License{}, false
}

func comparableURL(u string) string {
	u = strings.TrimSpace(u)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return ""
	}
	u = strings.TrimPrefix(strings.TrimPrefix(u, "http://"), "https://")
	return strings.ToLower(strings.TrimSuffix(u, "/"))
}

// Names returns every indexed name, sorted.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.index))
	for n := range s.index {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Licenses returns every indexed license, sorted by name.
func (s *Store) Licenses() []license.License {
	names := s.Names()
	out := make([]license.License, 0, len(names))
	for _, n := range names {
		out = append(out, s.index[n])
	}
	return out
}

// HeaderContent returns the header text of the named license.
func (s *Store) HeaderContent(ctx context.Context, name string) (string, error) {
	l, err := s.Get(name)
	if err != nil {
		return "", err
	}
	text, err := readText(ctx, s.fetcher, l.HeaderURL())
	if err != nil {
		return "", fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	return text, nil
}

// LicenseContent returns the full license text of the named license.
func (s *Store) LicenseContent(ctx context.Context, name string) (string, error) {
	l, err := s.Get(name)
	if err != nil {
		return "", err
	}
	text, err := readText(ctx, s.fetcher, l.LicenseURL())
	if err != nil {
		return "", fmt.Errorf("failed to read license text of %s: %w", name, err)
	}
	return text, nil
}
