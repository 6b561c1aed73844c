package resolution

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/licensecheck"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/domain/services"
)

// DefaultDetectThreshold is the minimum text coverage, in percent, for
// a licensecheck match to count.
const DefaultDetectThreshold = 75.0

var copyrightPattern = regexp.MustCompile(`(?i)copyright\s*(\(c\)|©)?\s*\d{4}(\s*[-,]\s*\d{4})*\s+\S.*`)

// Extractor classifies and parses info files found inside artifacts.
type Extractor struct {
	catalog    ports.LicenseCatalog
	normalizer *services.ContentNormalizer
	threshold  float64
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithDetectThreshold sets the licensecheck coverage threshold.
func WithDetectThreshold(percent float64) ExtractorOption {
	return func(x *Extractor) {
		x.threshold = percent
	}
}

// NewExtractor creates an extractor. catalog may be nil, in which case
// SPDX-named files are not recognized.
func NewExtractor(catalog ports.LicenseCatalog, opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		catalog:    catalog,
		normalizer: services.NewContentNormalizer(),
		threshold:  DefaultDetectThreshold,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Classify returns the info file type for an entry name. Unclassified
// names return TypeUnknown and false.
func (x *Extractor) Classify(name string) (infofile.Type, bool) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	upper := strings.ToUpper(base)
	switch {
	case strings.HasPrefix(upper, "NOTICE"):
		return infofile.TypeNotice, true
	case strings.HasPrefix(upper, "LICENSE"), strings.HasPrefix(upper, "LICENCE"):
		return infofile.TypeLicense, true
	}
	if _, ok := x.spdxID(base); ok {
		return infofile.TypeSPDXLicense, true
	}
	return infofile.TypeUnknown, false
}

// spdxID returns the SPDX id a base name is named after. The whole name
// is tried before the name without its extension, since ids such as
// Apache-2.0 contain dots.
func (x *Extractor) spdxID(base string) (string, bool) {
	if x.catalog == nil {
		return "", false
	}
	if x.catalog.Has(base) {
		return base, true
	}
	if s := stem(base); s != base && x.catalog.Has(s) {
		return s, true
	}
	return "", false
}

// IsCandidate reports whether Classify accepts name.
func (x *Extractor) IsCandidate(name string) bool {
	_, ok := x.Classify(name)
	return ok
}

// Extract classifies the file and collects its copyright lines. Files
// that cannot be classified are skipped.
func (x *Extractor) Extract(name string, data []byte) (*infofile.InfoFile, bool) {
	typ, ok := x.Classify(name)
	if !ok {
		return nil, false
	}
	content := string(data)
	f := infofile.New(name, content, typ)
	for _, line := range strings.Split(content, "\n") {
		if m := copyrightPattern.FindString(strings.TrimRight(line, "\r")); m != "" {
			f.AddCopyrightLine(m)
		}
	}
	return f, true
}

// KnownChecksums fingerprints unmodified license texts.
func (x *Extractor) KnownChecksums(texts ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		out[x.normalizer.Checksum(t)] = struct{}{}
	}
	return out
}

// FilterCopyrightLines clears the copyright lines of f when its content
// is a known license text. It reports whether lines were cleared.
func FilterCopyrightLines(f *infofile.InfoFile, known map[string]struct{}) bool {
	if _, ok := known[f.NormalizedContent()]; !ok {
		return false
	}
	f.ClearCopyrightLines()
	return true
}

// Detect returns the SPDX ids licensecheck finds in f. Notice files and
// matches below the coverage threshold yield nothing. SPDX-named files
// report the id from their name.
func (x *Extractor) Detect(f *infofile.InfoFile) []string {
	switch f.Type() {
	case infofile.TypeNotice:
		return nil
	case infofile.TypeSPDXLicense:
		base := path.Base(strings.ReplaceAll(f.FileName(), "\\", "/"))
		if id, ok := x.spdxID(base); ok {
			return []string{id}
		}
		return []string{stem(base)}
	}

	cov := licensecheck.Scan([]byte(f.Content()))
	if cov.Percent < x.threshold {
		return nil
	}
	seen := make(map[string]struct{}, len(cov.Match))
	var out []string
	for _, m := range cov.Match {
		if m.IsURL {
			continue
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		out = append(out, m.ID)
	}
	return out
}

func stem(base string) string {
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}
