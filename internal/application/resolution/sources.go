package resolution

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/component"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/domain/override"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
)

// Source yields raw license names for an artifact. An empty result
// passes the artifact on to the next source.
type Source interface {
	Kind() report.Source
	Licenses(ctx context.Context, e *infofile.ExtendedInfo) []string
}

// OverrideSource reads user-forced names from an override table.
type OverrideSource struct {
	table *override.Table
}

// NewOverrideSource creates a source over t. A nil table yields nothing.
func NewOverrideSource(t *override.Table) *OverrideSource {
	return &OverrideSource{table: t}
}

func (s *OverrideSource) Kind() report.Source { return report.SourceOverride }

func (s *OverrideSource) Licenses(_ context.Context, e *infofile.ExtendedInfo) []string {
	if s.table == nil {
		return nil
	}
	return s.table.LicensesFor(e.Artifact.Coordinate)
}

// DeclaredSource reads the licenses stated in project metadata. A
// license without a name is identified by its URL when the store or the
// SPDX catalog publishes a text at that address.
type DeclaredSource struct {
	index   ports.LicenseIndex
	catalog ports.LicenseCatalog
}

// NewDeclaredSource creates a declared-metadata source.
func NewDeclaredSource(index ports.LicenseIndex, catalog ports.LicenseCatalog) *DeclaredSource {
	return &DeclaredSource{index: index, catalog: catalog}
}

func (s *DeclaredSource) Kind() report.Source { return report.SourceDeclared }

func (s *DeclaredSource) Licenses(_ context.Context, e *infofile.ExtendedInfo) []string {
	var out []string
	for _, l := range e.Artifact.Licenses {
		if name := strings.TrimSpace(l.Name); name != "" {
			out = append(out, name)
			continue
		}
		if name, ok := s.byURL(l.URL); ok {
			out = append(out, name)
		}
	}
	return out
}

func (s *DeclaredSource) byURL(u string) (string, bool) {
	if strings.TrimSpace(u) == "" {
		return "", false
	}
	if s.index != nil {
		if l, ok := s.index.LookupURL(u); ok {
			return l.Name(), true
		}
	}
	if s.catalog != nil {
		if id, ok := s.catalog.IDForURL(u); ok {
			return id, true
		}
	}
	return "", false
}

// InfoFileSource detects licenses from LICENSE files and the
// Bundle-License manifest attribute.
type InfoFileSource struct {
	extractor *Extractor
	declared  *DeclaredSource
}

// NewInfoFileSource creates an info-file source. declared resolves a
// Bundle-License that is a URL.
func NewInfoFileSource(x *Extractor, declared *DeclaredSource) *InfoFileSource {
	return &InfoFileSource{extractor: x, declared: declared}
}

func (s *InfoFileSource) Kind() report.Source { return report.SourceInfoFile }

func (s *InfoFileSource) Licenses(_ context.Context, e *infofile.ExtendedInfo) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(names ...string) {
		for _, n := range names {
			if _, ok := seen[n]; ok || n == "" {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}

	for _, f := range e.InfoFiles {
		add(s.extractor.Detect(f)...)
	}
	if bl := strings.TrimSpace(e.BundleLicense); bl != "" {
		for _, item := range strings.Split(bl, ",") {
			item, _, _ = strings.Cut(item, ";")
			item = strings.TrimSpace(item)
			if s.declared != nil {
				if name, ok := s.declared.byURL(item); ok {
					add(name)
					continue
				}
			}
			if !isURL(item) {
				add(component.ParseLicense(item)...)
			}
		}
	}
	return out
}

// ExternalSource queries the external registry.
type ExternalSource struct {
	resolver *ExternalLicenseResolver
}

// NewExternalSource creates a registry-backed source.
func NewExternalSource(r *ExternalLicenseResolver) *ExternalSource {
	return &ExternalSource{resolver: r}
}

func (s *ExternalSource) Kind() report.Source { return report.SourceExternal }

func (s *ExternalSource) Licenses(ctx context.Context, e *infofile.ExtendedInfo) []string {
	return s.resolver.LicensesFor(ctx, e.Artifact.Coordinate)
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
