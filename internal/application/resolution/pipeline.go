package resolution

import (
	"context"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/domain/infofile"
	"github.com/felixgeelhaar/licensemap/internal/domain/override"
	"github.com/felixgeelhaar/licensemap/internal/domain/report"
	"github.com/felixgeelhaar/licensemap/internal/log"
)

// Manifest attributes copied into ExtendedInfo.
const (
	ManifestImplementationVendor = "Implementation-Vendor"
	ManifestBundleVendor         = "Bundle-Vendor"
	ManifestBundleLicense        = "Bundle-License"
)

// Resolver resolves one artifact at a time. It holds no per-artifact
// state and is safe for concurrent use when its collaborators are.
type Resolver struct {
	sources   []Source
	canon     *Canonicalizer
	extractor *Extractor
	contents  ports.ArtifactContents
	metadata  ports.MetadataSource
	known     map[string]struct{}
	logger    log.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithSources replaces the source chain.
func WithSources(sources ...Source) ResolverOption {
	return func(r *Resolver) {
		r.sources = sources
	}
}

// WithContents enables info-file extraction from artifact archives.
func WithContents(c ports.ArtifactContents) ResolverOption {
	return func(r *Resolver) {
		r.contents = c
	}
}

// WithMetadata enables project metadata lookup.
func WithMetadata(m ports.MetadataSource) ResolverOption {
	return func(r *Resolver) {
		r.metadata = m
	}
}

// WithKnownChecksums marks license texts whose copyright lines are
// template boilerplate.
func WithKnownChecksums(known map[string]struct{}) ResolverOption {
	return func(r *Resolver) {
		r.known = known
	}
}

// WithResolverLogger sets the logger.
func WithResolverLogger(l log.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = log.OrNop(l)
	}
}

// NewResolver creates a resolver with the given canonicalizer and extractor.
func NewResolver(canon *Canonicalizer, x *Extractor, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		canon:     canon,
		extractor: x,
		known:     map[string]struct{}{},
		logger:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve gathers what is known about a and returns its resolution. An
// artifact no source can name resolves with SourceNone and no keys.
func (r *Resolver) Resolve(ctx context.Context, a artifact.Artifact) (report.Resolution, *infofile.ExtendedInfo) {
	ext := r.describe(ctx, a)
	res := report.Resolution{Artifact: a, Source: report.SourceNone}

	for _, src := range r.sources {
		names := src.Licenses(ctx, ext)
		if len(names) == 0 {
			continue
		}
		keys, matchers := r.Canonicalize(names)
		if len(keys) == 0 {
			continue
		}
		res.Source = src.Kind()
		res.Raw = names
		res.Keys = keys
		res.Matchers = matchers
		break
	}

	log.Debug(ctx, r.logger, "resolved artifact",
		log.String("artifact", a.ID()),
		log.String("source", string(res.Source)),
		log.Any("keys", res.Keys))
	return res, ext
}

// WithOverrides returns a copy of r whose override source reads t. The
// override source is placed first when r has none.
func (r *Resolver) WithOverrides(t *override.Table) *Resolver {
	cp := *r
	cp.sources = make([]Source, 0, len(r.sources)+1)
	cp.sources = append(cp.sources, NewOverrideSource(t))
	for _, s := range r.sources {
		if s.Kind() != report.SourceOverride {
			cp.sources = append(cp.sources, s)
		}
	}
	return &cp
}

// Sources returns the kinds of the source chain in order.
func (r *Resolver) Sources() []report.Source {
	out := make([]report.Source, len(r.sources))
	for i, s := range r.sources {
		out[i] = s.Kind()
	}
	return out
}

// Canonicalize maps names to distinct keys in first-seen order, with the
// matcher that produced each.
func (r *Resolver) Canonicalize(names []string) (keys, matchers []string) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		k, m, ok := r.canon.Canonicalize(n)
		if !ok {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
		matchers = append(matchers, m)
	}
	return keys, matchers
}

func (r *Resolver) describe(ctx context.Context, a artifact.Artifact) *infofile.ExtendedInfo {
	ext := infofile.NewExtendedInfo(a)

	if r.metadata != nil {
		if err := r.metadata.Describe(ctx, ext); err != nil {
			log.Debug(ctx, r.logger, "no project metadata", log.String("artifact", a.ID()), log.Err(err))
		}
	}
	if r.contents == nil || a.Location == "" {
		return ext
	}

	files, err := r.contents.Candidates(ctx, a)
	if err != nil {
		log.Warn(ctx, r.logger, "failed to read artifact contents", log.String("artifact", a.ID()), log.Err(err))
	}
	for _, cf := range files {
		f, ok := r.extractor.Extract(cf.Name, cf.Data)
		if !ok {
			continue
		}
		FilterCopyrightLines(f, r.known)
		ext.AddInfoFile(f)
	}

	attrs, err := r.contents.Manifest(ctx, a)
	if err != nil {
		log.Debug(ctx, r.logger, "no manifest", log.String("artifact", a.ID()), log.Err(err))
	}
	ext.ImplementationVendor = attrs[ManifestImplementationVendor]
	ext.BundleVendor = attrs[ManifestBundleVendor]
	ext.BundleLicense = attrs[ManifestBundleLicense]
	return ext
}

// DefaultSources returns the standard chain: override, declared, info
// files, external registry. Nil collaborators are left out.
func DefaultSources(overrides *OverrideSource, declared *DeclaredSource, infoFiles *InfoFileSource, external *ExternalSource) []Source {
	var out []Source
	if overrides != nil {
		out = append(out, overrides)
	}
	if declared != nil {
		out = append(out, declared)
	}
	if infoFiles != nil {
		out = append(out, infoFiles)
	}
	if external != nil {
		out = append(out, external)
	}
	return out
}
