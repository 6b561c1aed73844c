// Package transport resolves license and override references to bytes.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/pkg/pathutil"
	"github.com/felixgeelhaar/licensemap/pkg/redact"
)

// BundledScheme prefixes references into an embedded filesystem.
const BundledScheme = "bundled:"

// DefaultUserAgent is sent with remote requests.
const DefaultUserAgent = "licensemap"

var (
	// ErrNotFound is returned when the referenced content does not exist.
	ErrNotFound = ports.ErrContentNotFound

	// ErrUnsupportedScheme is returned for references no handler accepts.
	ErrUnsupportedScheme = errors.New("unsupported reference scheme")
)

// Fetcher implements ports.ContentFetcher for bundled resources, local
// and UNC paths, file URIs and http(s) URLs.
type Fetcher struct {
	client    *http.Client
	bundled   fs.FS
	userAgent string
	maxBytes  int64
	redactor  *redact.Redactor
}

var _ ports.ContentFetcher = (*Fetcher)(nil)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the client for remote references.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithBundled sets the filesystem served under BundledScheme.
func WithBundled(fsys fs.FS) Option {
	return func(f *Fetcher) {
		f.bundled = fsys
	}
}

// WithUserAgent sets the User-Agent for remote requests.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBytes caps the size of fetched content.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBytes = n
	}
}

// NewFetcher creates a fetcher with a 30 second HTTP timeout.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: DefaultUserAgent,
		maxBytes:  16 << 20,
		redactor:  redact.New(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsExternalURL reports whether ref is an http(s) URL.
func (f *Fetcher) IsExternalURL(ref string) bool {
	return IsExternalURL(ref)
}

// IsExternalURL reports whether ref is an http(s) URL.
func IsExternalURL(ref string) bool {
	r := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(r, "http://") || strings.HasPrefix(r, "https://")
}

// IsURL reports whether ref parses as an absolute URL with a scheme.
// Blank input is never a URL.
func IsURL(ref string) bool {
	if strings.TrimSpace(ref) == "" {
		return false
	}
	if strings.HasPrefix(ref, BundledScheme) {
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme != "" && len(u.Scheme) > 1
}

// Fetch returns the content at ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return nil, pathutil.ErrEmptyPath
	case strings.HasPrefix(ref, BundledScheme):
		return f.fetchBundled(strings.TrimPrefix(ref, BundledScheme))
	case IsExternalURL(ref):
		return f.fetchRemote(ctx, ref)
	case strings.HasPrefix(ref, "file:"):
		p, err := pathutil.FromFileURI(ref)
		if err != nil {
			return nil, err
		}
		return f.fetchFile(p)
	case pathutil.IsUNC(ref):
		uri, err := pathutil.ToFileURI(ref)
		if err != nil {
			return nil, err
		}
		p, err := pathutil.FromFileURI(uri)
		if err != nil {
			return nil, err
		}
		return f.fetchFile(p)
	case IsURL(ref):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, f.redactor.RedactURL(ref))
	default:
		return f.fetchFile(ref)
	}
}

func (f *Fetcher) fetchBundled(name string) ([]byte, error) {
	if f.bundled == nil {
		return nil, fmt.Errorf("%w: no bundled resources configured", ErrNotFound)
	}
	data, err := fs.ReadFile(f.bundled, strings.TrimPrefix(name, "/"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s%s", ErrNotFound, BundledScheme, name)
		}
		return nil, fmt.Errorf("failed to read bundled resource %s: %w", name, err)
	}
	return data, nil
}

func (f *Fetcher) fetchFile(path string) ([]byte, error) {
	clean, err := pathutil.ValidatePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	data, err := os.ReadFile(clean) // #nosec G304 - path is validated above
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
		}
		return nil, fmt.Errorf("failed to read %s: %w", clean, err)
	}
	return data, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", f.redactor.RedactURL(ref), err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, f.redactor.RedactURL(ref))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("failed to fetch %s: status %d", f.redactor.RedactURL(ref), resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
