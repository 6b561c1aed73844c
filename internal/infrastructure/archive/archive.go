// Package archive reads license candidates and manifest attributes from
// artifact jars, zips and exploded directories.
package archive

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/pkg/pathutil"
)

// ManifestPath is the location of the jar manifest.
const ManifestPath = "META-INF/MANIFEST.MF"

// ErrNoLocation is returned when an artifact has no archive or directory.
var ErrNoLocation = errors.New("artifact has no location")

// Classifier reports whether an entry name may hold license or notice text.
type Classifier func(name string) bool

// Reader implements ports.ArtifactContents.
type Reader struct {
	classify Classifier
	maxSize  int64
	maxDepth int
}

var _ ports.ArtifactContents = (*Reader)(nil)

// Option configures a Reader.
type Option func(*Reader)

// WithClassifier sets the entry filter.
func WithClassifier(c Classifier) Option {
	return func(r *Reader) {
		r.classify = c
	}
}

// WithMaxSize skips entries larger than n bytes.
func WithMaxSize(n int64) Option {
	return func(r *Reader) {
		r.maxSize = n
	}
}

// WithMaxDepth limits how deep entries may be nested. Depth 0 is the
// archive root.
func WithMaxDepth(n int) Option {
	return func(r *Reader) {
		r.maxDepth = n
	}
}

// NewReader creates a reader. Without a classifier every entry named
// NOTICE*, LICENSE* or LICENCE* is a candidate.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		classify: DefaultClassifier,
		maxSize:  1 << 20,
		maxDepth: 2,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultClassifier matches NOTICE, LICENSE and LICENCE prefixed names.
func DefaultClassifier(name string) bool {
	base := strings.ToUpper(path.Base(name))
	return strings.HasPrefix(base, "NOTICE") ||
		strings.HasPrefix(base, "LICENSE") ||
		strings.HasPrefix(base, "LICENCE")
}

// Candidates returns the matching entries sorted by name. Entries are
// taken from the archive root and META-INF up to the configured depth.
func (r *Reader) Candidates(ctx context.Context, a artifact.Artifact) ([]ports.ContentFile, error) {
	var out []ports.ContentFile
	err := r.walk(ctx, a, func(name string, size int64, open func() (io.ReadCloser, error)) error {
		if !r.wants(name, size) {
			return nil
		}
		data, err := readAll(open, r.maxSize)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		out = append(out, ports.ContentFile{Name: name, Data: data})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Manifest returns the main attributes of META-INF/MANIFEST.MF. An
// archive without a manifest yields an empty map.
func (r *Reader) Manifest(ctx context.Context, a artifact.Artifact) (map[string]string, error) {
	attrs := map[string]string{}
	err := r.walk(ctx, a, func(name string, _ int64, open func() (io.ReadCloser, error)) error {
		if !strings.EqualFold(name, ManifestPath) {
			return nil
		}
		data, err := readAll(open, r.maxSize)
		if err != nil {
			return fmt.Errorf("failed to read manifest: %w", err)
		}
		attrs = ParseManifest(data)
		return nil
	})
	return attrs, err
}

func (r *Reader) wants(name string, size int64) bool {
	if size > r.maxSize {
		return false
	}
	if strings.Count(strings.Trim(name, "/"), "/") > r.maxDepth {
		return false
	}
	dir := path.Dir(name)
	if dir != "." && !strings.HasPrefix(strings.ToUpper(dir), "META-INF") {
		return false
	}
	return r.classify(name)
}

type visitFunc func(name string, size int64, open func() (io.ReadCloser, error)) error

func (r *Reader) walk(ctx context.Context, a artifact.Artifact, visit visitFunc) error {
	if a.Location == "" {
		return ErrNoLocation
	}
	loc, err := pathutil.ValidatePath(a.Location)
	if err != nil {
		return fmt.Errorf("invalid artifact location: %w", err)
	}
	info, err := os.Stat(loc)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", loc, err)
	}
	if info.IsDir() {
		return walkDir(ctx, loc, visit)
	}
	return walkZip(ctx, loc, visit)
}

func walkZip(ctx context.Context, file string, visit visitFunc) error {
	zr, err := zip.OpenReader(file)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %w", file, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if err := visit(f.Name, int64(f.UncompressedSize64), f.Open); err != nil {
			return err
		}
	}
	return nil
}

func walkDir(ctx context.Context, root string, visit visitFunc) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return visit(filepath.ToSlash(rel), info.Size(), func() (io.ReadCloser, error) {
			return os.Open(p) // #nosec G304 - path comes from walking the validated root
		})
	})
}

func readAll(open func() (io.ReadCloser, error), limit int64) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(io.LimitReader(rc, limit))
}

// ParseManifest parses the main section of a jar manifest. Continuation
// lines start with a single space.
func ParseManifest(data []byte) map[string]string {
	attrs := map[string]string{}
	var lastKey string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, " ") && lastKey != "" {
			attrs[lastKey] += line[1:]
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		lastKey = strings.TrimSpace(key)
		attrs[lastKey] = strings.TrimSpace(value)
	}
	return attrs
}
