// Package overrides reads and writes override and missing files. Both
// are Java properties files mapping groupId--artifactId--version keys to
// license names separated by "|".
package overrides

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magiconair/properties"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/override"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/pkg/pathutil"
)

// ErrMalformed is returned for files that cannot be parsed or carry
// keys that are not artifact coordinates.
var ErrMalformed = errors.New("malformed override file")

// Store implements ports.OverrideStore on top of a content fetcher, so
// tables load from local paths and http(s) URLs alike.
type Store struct {
	fetcher ports.ContentFetcher
	logger  log.Logger
	header  string
}

var _ ports.OverrideStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(s *Store) {
		s.logger = log.OrNop(l)
	}
}

// WithHeader sets the comment written at the top of saved files.
func WithHeader(h string) Option {
	return func(s *Store) {
		s.header = h
	}
}

// NewStore creates a store reading through fetcher.
func NewStore(fetcher ports.ContentFetcher, opts ...Option) *Store {
	s := &Store{
		fetcher: fetcher,
		logger:  log.NewNop(),
		header:  "Generated by licensemap. Fill in license names separated by |",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load implements ports.OverrideStore.
func (s *Store) Load(ctx context.Context, location string) (*override.Table, error) {
	data, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		if errors.Is(err, ports.ErrContentNotFound) && !s.fetcher.IsExternalURL(location) {
			log.Debug(ctx, s.logger, "override file not found, starting empty", log.String("location", location))
			return override.NewTable(location), nil
		}
		return nil, fmt.Errorf("failed to read override file: %w", err)
	}
	return s.parse(ctx, location, data)
}

// Parse reads a properties document into a table for source.
func Parse(source string, data []byte) (*override.Table, error) {
	return NewStore(nil).parse(context.Background(), source, data)
}

func (s *Store) parse(ctx context.Context, source string, data []byte) (*override.Table, error) {
	t := override.NewTable(source)
	if len(bytes.TrimSpace(data)) == 0 {
		return t, nil
	}

	loader := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}

	var legacy []string
	for _, key := range p.Keys() {
		c, err := artifact.ParseKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
		}
		value, _ := p.Get(key)
		if c.OverrideKey() != key {
			legacy = append(legacy, key)
			continue
		}
		t.Set(key, value)
	}

	// Legacy keys carry a type or classifier. They migrate to the plain
	// key unless that key is present too.
	for _, key := range legacy {
		c, _ := artifact.ParseKey(key)
		plain := c.OverrideKey()
		if t.Has(plain) {
			log.Warn(ctx, s.logger, "legacy override key shadowed by plain key",
				log.String("key", key), log.String("source", source))
			continue
		}
		value, _ := p.Get(key)
		t.Set(plain, value)
		log.Debug(ctx, s.logger, "migrated legacy override key",
			log.String("key", key), log.String("migrated", plain))
	}
	return t, nil
}

// Save implements ports.OverrideStore.
func (s *Store) Save(path string, t *override.Table) error {
	clean, err := pathutil.ValidatePath(path)
	if err != nil {
		return fmt.Errorf("invalid override path: %w", err)
	}

	data, err := s.Encode(t)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(clean), 0750); err != nil {
		return fmt.Errorf("failed to create override directory: %w", err)
	}
	if err := os.WriteFile(clean, data, 0600); err != nil {
		return fmt.Errorf("failed to write override file: %w", err)
	}
	return nil
}

// Encode renders t as a properties document with sorted keys.
func (s *Store) Encode(t *override.Table) ([]byte, error) {
	p := properties.NewProperties()
	p.DisableExpansion = true
	for _, key := range t.Keys() {
		value, _ := t.Get(key)
		if _, _, err := p.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
	}

	var buf bytes.Buffer
	if s.header != "" {
		fmt.Fprintf(&buf, "# %s\n", s.header)
	}
	if _, err := p.Write(&buf, properties.UTF8); err != nil {
		return nil, fmt.Errorf("failed to encode override file: %w", err)
	}
	return buf.Bytes(), nil
}
