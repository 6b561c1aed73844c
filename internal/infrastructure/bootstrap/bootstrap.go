// Package bootstrap assembles the resolution stack from configuration.
// Both the CLI and the MCP server build their runs through it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	pb "deps.dev/api/v3"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/application/resolution"
	"github.com/felixgeelhaar/licensemap/internal/application/usecases"
	"github.com/felixgeelhaar/licensemap/internal/domain/artifact"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/archive"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/config"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/enumerator"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/overrides"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/registry"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/repository"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/spdx"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/transport"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/workspace"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/pkg/redact"
)

// ErrNoTarget is returned when neither a POM nor an SBOM is given.
var ErrNoTarget = errors.New("a pom or an sbom is required")

// Target names the project to resolve. SBOM wins when both are set.
type Target struct {
	POM  string
	SBOM string
}

// Runtime holds the long-lived collaborators of a configuration. A
// Runtime can build any number of use cases; Close releases the
// connections they share.
type Runtime struct {
	Config  *config.Config
	Logger  log.Logger
	Fetcher *transport.Fetcher
	Store   *repository.Store
	Catalog *spdx.LicenseList

	merges   [][]string
	registry ports.ComponentResolver
	built    bool
	closers  []func() error
}

// New loads the license store for cfg.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*Runtime, error) {
	logger = log.OrNop(logger)

	fetcher := transport.NewFetcher(
		transport.WithHTTPClient(&http.Client{Timeout: cfg.Registry.Timeout}),
		transport.WithBundled(repository.BundledFS()),
		transport.WithUserAgent(cfg.Registry.UserAgent),
	)

	opts := []repository.StoreOption{
		repository.WithRepositories(cfg.Repositories...),
		repository.WithStoreLogger(logger),
	}
	if !cfg.Bundled {
		opts = append(opts, repository.WithoutBundled())
	}
	store := repository.NewStore(fetcher, opts...)
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to load license repositories: %w", err)
	}

	var merges [][]string
	if cfg.MergesURL != "" {
		lines, err := transport.DownloadList(ctx, fetcher, cfg.MergesURL)
		if err != nil {
			return nil, fmt.Errorf("failed to load license merges: %w", err)
		}
		merges = config.ParseMerges(lines)
		log.Info(ctx, logger, "license merges loaded",
			log.String("url", redact.Default.RedactURL(cfg.MergesURL)),
			log.Int("count", len(merges)))
	}

	return &Runtime{
		Config:  cfg,
		Logger:  logger,
		Fetcher: fetcher,
		Store:   store,
		Catalog: spdx.Latest(),
		merges:  merges,
	}, nil
}

// Registry returns the configured external registry, or nil when none
// is configured. The registry is built once per Runtime.
func (r *Runtime) Registry() (ports.ComponentResolver, error) {
	if r.built {
		return r.registry, nil
	}

	rc := r.Config.Registry
	var next ports.ComponentResolver
	switch rc.Kind {
	case config.RegistryHTTP:
		h, err := registry.NewHTTPResolver(rc.URL,
			registry.WithProxy(rc.Proxy),
			registry.WithTimeout(rc.Timeout),
			registry.WithUserAgent(rc.UserAgent),
			registry.WithRateLimit(rc.Rate, rc.Burst),
			registry.WithBreaker(rc.Breaker.Failures, rc.Breaker.CoolDown),
			registry.WithLogger(r.Logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		next = h
	case config.RegistryDepsDev:
		conn, err := registry.DialDepsDev(rc.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		r.closers = append(r.closers, conn.Close)
		next = registry.NewDepsDevResolver(pb.NewInsightsClient(conn), r.Logger)
	case config.RegistryNone, "":
		r.built = true
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown registry kind: %s", rc.Kind)
	}

	if rc.CacheSize > 0 {
		next = registry.NewCachingResolver(next, rc.CacheSize)
	}
	r.registry = next
	r.built = true
	return next, nil
}

// Resolver builds the per-artifact resolver. meta supplies project
// metadata and may be nil.
func (r *Runtime) Resolver(ctx context.Context, meta ports.MetadataSource) (*resolution.Resolver, error) {
	reg, err := r.Registry()
	if err != nil {
		return nil, err
	}

	canon := resolution.NewCanonicalizer(r.Store, r.Catalog)
	x := resolution.NewExtractor(r.Catalog, resolution.WithDetectThreshold(r.Config.Detection.Threshold))

	declared := resolution.NewDeclaredSource(r.Store, r.Catalog)
	var external *resolution.ExternalSource
	if reg != nil {
		external = resolution.NewExternalSource(resolution.NewExternalLicenseResolver(reg, r.Logger))
	}

	readerOpts := []archive.Option{archive.WithClassifier(x.IsCandidate)}
	if r.Config.Detection.MaxSize > 0 {
		readerOpts = append(readerOpts, archive.WithMaxSize(r.Config.Detection.MaxSize))
	}
	contents := archive.NewReader(readerOpts...)

	opts := []resolution.ResolverOption{
		resolution.WithSources(resolution.DefaultSources(nil, declared, resolution.NewInfoFileSource(x, declared), external)...),
		resolution.WithContents(contents),
		resolution.WithKnownChecksums(x.KnownChecksums(r.knownTexts(ctx)...)),
		resolution.WithResolverLogger(r.Logger),
	}
	if meta != nil {
		opts = append(opts, resolution.WithMetadata(meta))
	}
	return resolution.NewResolver(canon, x, opts...), nil
}

// knownTexts returns the bundled license texts whose copyright lines are
// template boilerplate. Unreadable texts are skipped.
func (r *Runtime) knownTexts(ctx context.Context) []string {
	var texts []string
	for _, name := range repository.DefaultLicenseNames {
		text, err := r.Store.LicenseContent(ctx, name)
		if err != nil {
			log.Debug(ctx, r.Logger, "no license text", log.String("license", name), log.Err(err))
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// Enumerator returns the enumerator for t and the metadata source that
// reads dependency POMs from the local repository.
func (r *Runtime) Enumerator(t Target) (ports.DependencyEnumerator, ports.MetadataSource, error) {
	maven := enumerator.NewMavenEnumerator(t.POM,
		enumerator.WithLocalRepository(r.Config.LocalRepository),
		enumerator.WithMavenLogger(r.Logger),
	)
	switch {
	case t.SBOM != "":
		repo := enumerator.NewLocalRepository(r.Config.LocalRepository)
		return enumerator.NewSBOMEnumerator(t.SBOM, repo, r.Logger), maven, nil
	case t.POM != "":
		return maven, maven, nil
	default:
		return nil, nil, ErrNoTarget
	}
}

// UseCase wires a resolve run for t. progress receives progress
// messages and may be nil.
func (r *Runtime) UseCase(ctx context.Context, t Target, progress ports.ReportWriter) (*usecases.ResolveLicensesUseCase, error) {
	enum, meta, err := r.Enumerator(t)
	if err != nil {
		return nil, err
	}
	resolver, err := r.Resolver(ctx, meta)
	if err != nil {
		return nil, err
	}

	cfg := r.Config
	selector := workspace.NewModuleFilter(workspace.FilterOptions{
		IncludeModules: cfg.Modules.Include,
		ExcludeModules: cfg.Modules.Exclude,
		ExcludedScopes: cfg.Scopes.Excluded,
		ExcludedGroups: cfg.Scopes.ExcludedGroups,
	})
	executor := workspace.NewParallelResolver(
		workspace.WithMaxWorkers(cfg.Workers),
		workspace.WithProgress(func(a artifact.Artifact, completed, total int) {
			log.Debug(ctx, r.Logger, "artifact resolved",
				log.String("artifact", a.ID()),
				log.Int("completed", completed),
				log.Int("total", total))
		}),
	)

	opts := []usecases.Option{
		usecases.WithSelector(selector),
		usecases.WithExecutor(executor),
		usecases.WithOverrideStore(overrides.NewStore(r.Fetcher, overrides.WithLogger(r.Logger))),
		usecases.WithLogger(r.Logger),
	}
	if progress != nil {
		opts = append(opts, usecases.WithProgressWriter(progress))
	}
	return usecases.NewResolveLicensesUseCase(enum, resolver, opts...), nil
}

// Input maps the configuration onto the use case input. Merges loaded
// from merges_url follow the configured ones.
func (r *Runtime) Input() usecases.ResolveLicensesInput {
	cfg := r.Config
	return usecases.ResolveLicensesInput{
		OverridesLocation:         cfg.Overrides,
		MissingPath:               cfg.Missing.Path,
		WriteMissing:              cfg.Missing.Write,
		Merges:                    append(cfg.ParsedMerges(), r.merges...),
		ExpectedDependencies:      cfg.ExpectedDependencies,
		FailOnUnknownDependencies: cfg.FailOnUnknownDependencies(),
	}
}

// Close releases registry connections.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
