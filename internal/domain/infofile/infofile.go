// Package infofile models license and notice files found inside artifacts.
package infofile

import (
	"sort"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/domain/services"
)

// Type classifies an info file.
type Type int

// The zero Type is TypeUnknown so an unclassified file never reads as a
// real type.
const (
	TypeUnknown Type = iota
	TypeNotice
	TypeLicense
	TypeSPDXLicense
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNotice:
		return "NOTICE"
	case TypeLicense:
		return "LICENSE"
	case TypeSPDXLicense:
		return "SPDX_LICENSE"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

var normalizer = services.NewContentNormalizer()

// InfoFile is one NOTICE, LICENSE or SPDX-named file.
type InfoFile struct {
	fileName          string
	content           string
	typ               Type
	copyrightLines    map[string]struct{}
	normalizedContent string
}

// New creates an info file and fingerprints its content.
func New(fileName, content string, typ Type) *InfoFile {
	f := &InfoFile{fileName: fileName, typ: typ, copyrightLines: make(map[string]struct{})}
	f.SetContent(content)
	return f
}

// FileName returns the entry name inside the artifact.
func (f *InfoFile) FileName() string { return f.fileName }

// Content returns the raw text.
func (f *InfoFile) Content() string { return f.content }

// Type returns the classification.
func (f *InfoFile) Type() Type { return f.typ }

// NormalizedContent returns the content fingerprint.
func (f *InfoFile) NormalizedContent() string { return f.normalizedContent }

// SetContent replaces the content and recomputes the fingerprint.
func (f *InfoFile) SetContent(content string) {
	f.content = content
	f.normalizedContent = normalizer.Checksum(content)
}

// AddCopyrightLine records a copyright statement. Duplicates coalesce.
func (f *InfoFile) AddCopyrightLine(line string) {
	if line = strings.TrimSpace(line); line != "" {
		f.copyrightLines[line] = struct{}{}
	}
}

// CopyrightLines returns the distinct copyright lines, sorted.
func (f *InfoFile) CopyrightLines() []string {
	out := make([]string, 0, len(f.copyrightLines))
	for l := range f.copyrightLines {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// ClearCopyrightLines drops the extracted copyright lines.
func (f *InfoFile) ClearCopyrightLines() {
	f.copyrightLines = make(map[string]struct{})
}
