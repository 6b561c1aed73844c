package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/application/usecases"
	"github.com/felixgeelhaar/licensemap/internal/domain/license"
	"github.com/felixgeelhaar/licensemap/internal/domain/services"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/bootstrap"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/config"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/spdx"
	"github.com/felixgeelhaar/licensemap/internal/infrastructure/writers"
)

// LicenseStore is the license repository view served by the tools.
type LicenseStore interface {
	ports.LicenseIndex
	Licenses() []license.License
}

// ResolveFunc runs one resolution for a tool call.
type ResolveFunc func(ctx context.Context, input ResolveInput) (usecases.ResolveLicensesOutput, error)

// Server wraps the MCP server with licensemap functionality.
type Server struct {
	mcpServer  *mcp.Server
	config     *config.Config
	store      LicenseStore
	catalog    *spdx.LicenseList
	resolve    ResolveFunc
	truncation *services.TruncationService
}

// NewServer creates a server backed by rt.
func NewServer(rt *bootstrap.Runtime, version string) *Server {
	return NewServerWith(rt.Config, rt.Store, rt.Catalog, RuntimeResolver(rt), version)
}

// NewServerWith creates a server from its collaborators.
// This is primarily used for testing with canned resolutions.
func NewServerWith(cfg *config.Config, store LicenseStore, catalog *spdx.LicenseList, resolve ResolveFunc, version string) *Server {
	if version == "" {
		version = "dev"
	}
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "licensemap",
		Version: version,
		Capabilities: mcp.Capabilities{
			Tools:     true,
			Resources: true,
		},
	})

	s := &Server{
		mcpServer:  srv,
		config:     cfg,
		store:      store,
		catalog:    catalog,
		resolve:    resolve,
		truncation: services.NewTruncationService(),
	}

	s.registerTools()
	s.registerResources()

	return s
}

// RuntimeResolver resolves tool calls through rt. Missing files are read
// but never rewritten from a tool call.
func RuntimeResolver(rt *bootstrap.Runtime) ResolveFunc {
	return func(ctx context.Context, in ResolveInput) (usecases.ResolveLicensesOutput, error) {
		target := bootstrap.Target{POM: in.Path, SBOM: in.SBOM}
		if target.POM == "" && target.SBOM == "" {
			target.POM = "."
		}
		uc, err := rt.UseCase(ctx, target, writers.NewSilentWriter())
		if err != nil {
			return usecases.ResolveLicensesOutput{}, err
		}
		input := rt.Input()
		input.WriteMissing = false
		if in.Overrides != "" {
			input.OverridesLocation = in.Overrides
		}
		return uc.Execute(ctx, input)
	}
}

// ServeStdio starts the MCP server with stdio transport.
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP starts the MCP server with HTTP transport.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr,
		mcp.WithReadTimeout(60*time.Second),
		mcp.WithWriteTimeout(60*time.Second),
	)
}

// registerTools registers all licensemap MCP tools.
func (s *Server) registerTools() {
	s.mcpServer.Tool("license_resolve").
		Description("Resolve the licenses of every dependency of a Maven project or SBOM. Returns per-dependency license keys and the dependencies with no known license.").
		Handler(s.handleResolve)

	s.mcpServer.Tool("license_lookup").
		Description("Look up a license in the license repositories by name, alias, SPDX id or license URL.").
		Handler(s.handleLicenseLookup)

	s.mcpServer.Tool("spdx_lookup").
		Description("Look up an SPDX license identifier, or validate and canonicalize an SPDX expression.").
		Handler(s.handleSPDXLookup)
}

// registerResources registers all licensemap MCP resources.
func (s *Server) registerResources() {
	s.mcpServer.Resource("licensemap://config").
		Name("Configuration").
		Description("Current licensemap configuration including repositories, registry and output settings.").
		MimeType("application/json").
		Handler(s.handleConfigResource)

	s.mcpServer.Resource("licensemap://licenses").
		Name("Licenses").
		Description("Licenses known to the loaded license repositories.").
		MimeType("application/json").
		Handler(s.handleLicensesResource)

	s.mcpServer.Resource("licensemap://spdx").
		Name("SPDX catalog").
		Description("Version and size of the embedded SPDX license list.").
		MimeType("application/json").
		Handler(s.handleSPDXResource)
}

// ResolveInput defines the input for license resolution.
type ResolveInput struct {
	Path      string `json:"path,omitempty" jsonschema:"description=Path to the project pom.xml or its directory"`
	SBOM      string `json:"sbom,omitempty" jsonschema:"description=Path to an SPDX or CycloneDX JSON SBOM (used instead of path)"`
	Overrides string `json:"overrides,omitempty" jsonschema:"description=Path or URL of an override file"`
}

// ResolveResult represents the result of a resolution.
type ResolveResult struct {
	Status          string           `json:"status"`
	Message         string           `json:"message,omitempty"`
	Project         string           `json:"project"`
	Artifacts       int              `json:"artifacts"`
	Licenses        int              `json:"licenses"`
	UnknownCount    int              `json:"unknown_count"`
	TotalCount      int              `json:"total_count"`
	ShownCount      int              `json:"shown_count"`
	Truncated       bool             `json:"truncated"`
	Dependencies    []DependencyInfo `json:"dependencies"`
	Unknown         []string         `json:"unknown,omitempty"`
	UnusedOverrides []string         `json:"unused_overrides,omitempty"`
	Duration        string           `json:"duration"`
	TruncationInfo  *TruncationInfo  `json:"truncation_info,omitempty"`
}

// TruncationInfo provides details about truncated results.
type TruncationInfo struct {
	TotalDependencies int            `json:"total_dependencies"`
	ShownDependencies int            `json:"shown_dependencies"`
	HiddenByLicense   map[string]int `json:"hidden_by_license"`
	Strategy          string         `json:"strategy"`
	Message           string         `json:"message"`
}

// DependencyInfo represents a single dependency in resolve results.
type DependencyInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Licenses []string `json:"licenses"`
	Source   string   `json:"source,omitempty"`
}

func (s *Server) handleResolve(ctx context.Context, input ResolveInput) (*ResolveResult, error) {
	start := time.Now()

	output, err := s.resolve(ctx, input)
	if err != nil && !errors.Is(err, usecases.ErrUnknownDependency) {
		return nil, fmt.Errorf("resolution failed: %w", err)
	}
	if output.Report == nil {
		return nil, errors.New("resolution failed: no report produced")
	}
	rep := output.Report

	mcpCfg := s.config.GetMCPConfig()
	truncResult := s.truncation.Truncate(rep.Licenses.ToDependencyMap(), services.TruncationConfig{
		MaxDependencies: mcpCfg.MaxDependencies,
		Strategy:        services.TruncateStrategy(mcpCfg.TruncateStrategy),
	})

	summary := rep.Summary()
	result := &ResolveResult{
		Status:          "completed",
		Project:         rep.Project.String(),
		Artifacts:       summary.Artifacts,
		Licenses:        summary.Licenses,
		UnknownCount:    summary.Unknown,
		TotalCount:      truncResult.TotalCount,
		ShownCount:      truncResult.ShownCount,
		Truncated:       truncResult.Truncated,
		Dependencies:    make([]DependencyInfo, 0, len(truncResult.Dependencies)),
		UnusedOverrides: output.UnusedOverrides,
		Duration:        time.Since(start).String(),
	}
	// Unmatched expected dependencies still yield the full report.
	if err != nil {
		result.Status = "failed"
		result.Message = err.Error()
	}

	for _, d := range truncResult.Dependencies {
		info := DependencyInfo{
			ID:       d.Artifact.ID(),
			Name:     d.Artifact.DisplayName(),
			Licenses: d.Licenses,
		}
		if res, ok := rep.Resolutions[d.Artifact.ID()]; ok {
			info.Source = string(res.Source)
		}
		result.Dependencies = append(result.Dependencies, info)
	}
	for _, a := range rep.Unknown() {
		result.Unknown = append(result.Unknown, a.ID())
	}

	if truncResult.Truncated {
		result.TruncationInfo = &TruncationInfo{
			TotalDependencies: truncResult.TotalCount,
			ShownDependencies: truncResult.ShownCount,
			HiddenByLicense:   truncResult.Summary.HiddenByLicense,
			Strategy:          mcpCfg.TruncateStrategy,
			Message: fmt.Sprintf("Showing %d of %d dependencies (sorted by %s)",
				truncResult.ShownCount, truncResult.TotalCount, mcpCfg.TruncateStrategy),
		}
	}

	return result, nil
}

// LicenseLookupInput defines input for license lookup.
type LicenseLookupInput struct {
	Name string `json:"name,omitempty" jsonschema:"description=License name, alias or SPDX id"`
	URL  string `json:"url,omitempty" jsonschema:"description=URL of a published license text"`
}

// LicenseInfo describes a repository license.
type LicenseInfo struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	SPDX        string   `json:"spdx,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	LicenseURL  string   `json:"license_url,omitempty"`
}

// LicenseLookupResult represents the result of a license lookup.
type LicenseLookupResult struct {
	Found   bool         `json:"found"`
	License *LicenseInfo `json:"license,omitempty"`
}

func (s *Server) handleLicenseLookup(_ context.Context, input LicenseLookupInput) (*LicenseLookupResult, error) {
	var (
		l  license.License
		ok bool
	)
	switch {
	case input.Name != "":
		l, ok = s.store.Lookup(input.Name)
	case input.URL != "":
		l, ok = s.store.LookupURL(input.URL)
	default:
		return nil, errors.New("name or url is required")
	}

	if !ok {
		return &LicenseLookupResult{Found: false}, nil
	}
	info := licenseInfo(l)
	return &LicenseLookupResult{Found: true, License: &info}, nil
}

func licenseInfo(l license.License) LicenseInfo {
	return LicenseInfo{
		Key:         l.Key(),
		Name:        l.Name(),
		Description: l.Description(),
		SPDX:        l.SPDXID(),
		Aliases:     l.Aliases(),
		LicenseURL:  l.LicenseURL(),
	}
}

// SPDXLookupInput defines input for SPDX lookups.
type SPDXLookupInput struct {
	ID         string `json:"id,omitempty" jsonschema:"description=SPDX license identifier such as Apache-2.0"`
	Expression string `json:"expression,omitempty" jsonschema:"description=SPDX license expression to validate"`
}

// SPDXLookupResult represents the result of an SPDX lookup.
type SPDXLookupResult struct {
	Found       bool     `json:"found"`
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	OSIApproved bool     `json:"osi_approved,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	SeeAlso     []string `json:"see_also,omitempty"`
	DetailsURL  string   `json:"details_url,omitempty"`
	Canonical   string   `json:"canonical,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (s *Server) handleSPDXLookup(_ context.Context, input SPDXLookupInput) (*SPDXLookupResult, error) {
	switch {
	case input.ID != "":
		info, ok := s.catalog.Get(input.ID)
		if !ok {
			return &SPDXLookupResult{Found: false, ID: input.ID}, nil
		}
		return &SPDXLookupResult{
			Found:       true,
			ID:          info.LicenseID,
			Name:        info.Name,
			OSIApproved: info.IsOsiApproved,
			Deprecated:  info.IsDeprecatedLicenseID,
			SeeAlso:     info.SeeAlso,
			DetailsURL:  info.DetailsURL,
		}, nil
	case input.Expression != "":
		canon, err := s.catalog.Canonicalize(input.Expression)
		if err != nil {
			return &SPDXLookupResult{Found: false, Error: err.Error()}, nil
		}
		return &SPDXLookupResult{Found: true, Canonical: canon}, nil
	default:
		return nil, errors.New("id or expression is required")
	}
}

// configResourceData represents the config resource structure for JSON marshaling.
type configResourceData struct {
	Version      string   `json:"version"`
	Repositories []string `json:"repositories"`
	Bundled      bool     `json:"bundled"`
	Registry     string   `json:"registry"`
	Overrides    string   `json:"overrides,omitempty"`
	Missing      string   `json:"missing,omitempty"`
	Merges       []string `json:"merges,omitempty"`
	Unknown      string   `json:"unknown_dependencies"`
	Workers      int      `json:"workers"`
}

func (s *Server) handleConfigResource(_ context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
	data := configResourceData{
		Version:      s.config.Version,
		Repositories: s.config.Repositories,
		Bundled:      s.config.Bundled,
		Registry:     s.config.Registry.Kind,
		Overrides:    s.config.Overrides,
		Missing:      s.config.Missing.Path,
		Merges:       s.config.Merges,
		Unknown:      s.config.UnknownDependencies,
		Workers:      s.config.Workers,
	}
	return jsonResource(uri, data)
}

// licensesResourceData represents the licenses resource structure for JSON marshaling.
type licensesResourceData struct {
	Licenses []LicenseInfo `json:"licenses"`
	Count    int           `json:"count"`
}

func (s *Server) handleLicensesResource(_ context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
	all := s.store.Licenses()
	data := licensesResourceData{
		Licenses: make([]LicenseInfo, 0, len(all)),
		Count:    len(all),
	}
	for _, l := range all {
		data.Licenses = append(data.Licenses, licenseInfo(l))
	}
	sort.Slice(data.Licenses, func(i, j int) bool { return data.Licenses[i].Name < data.Licenses[j].Name })
	return jsonResource(uri, data)
}

type spdxResourceData struct {
	Version     string `json:"license_list_version"`
	ReleaseDate string `json:"release_date"`
	Count       int    `json:"count"`
}

func (s *Server) handleSPDXResource(_ context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
	return jsonResource(uri, spdxResourceData{
		Version:     s.catalog.LicenseListVersion(),
		ReleaseDate: s.catalog.ReleaseDate(),
		Count:       s.catalog.Len(),
	})
}

func jsonResource(uri string, data any) (*mcp.ResourceContent, error) {
	jsonBytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(jsonBytes),
	}, nil
}
