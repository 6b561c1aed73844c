package enumerator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
	"github.com/felixgeelhaar/licensemap/internal/log"
	"github.com/felixgeelhaar/licensemap/pkg/pathutil"
)

// SBOM formats.
const (
	FormatUnknown   = ""
	FormatSPDX      = "spdx"
	FormatCycloneDX = "cyclonedx"
)

// Values SPDX uses for "no information".
const (
	noAssertion = "NOASSERTION"
	none        = "NONE"
)

// ErrUnknownFormat is returned for documents that are neither SPDX nor
// CycloneDX JSON.
var ErrUnknownFormat = errors.New("unknown sbom format")

// SBOMEnumerator turns the Maven packages of an SBOM into a one-module
// project. Packages of other ecosystems are skipped.
type SBOMEnumerator struct {
	path   string
	repo   *LocalRepository
	logger log.Logger
}

var _ ports.DependencyEnumerator = (*SBOMEnumerator)(nil)

// NewSBOMEnumerator creates an enumerator for the SBOM at path. When
// repo is set, dependency archives are located in it.
func NewSBOMEnumerator(path string, repo *LocalRepository, logger log.Logger) *SBOMEnumerator {
	return &SBOMEnumerator{path: path, repo: repo, logger: log.OrNop(logger)}
}

// Enumerate implements ports.DependencyEnumerator.
func (e *SBOMEnumerator) Enumerate(ctx context.Context) (*ports.Project, error) {
	clean, err := pathutil.ValidatePath(e.path)
	if err != nil {
		return nil, fmt.Errorf("invalid sbom path: %w", err)
	}
	data, err := os.ReadFile(clean) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read sbom: %w", err)
	}
	project, err := ParseSBOM(data)
	if err != nil {
		return nil, err
	}
	if e.repo != nil {
		for i := range project.Modules {
			for j := range project.Modules[i].Dependencies {
				d := &project.Modules[i].Dependencies[j]
				d.Location = e.repo.Archive(d.Coordinate)
			}
		}
	}
	log.Debug(ctx, e.logger, "loaded sbom",
		log.String("path", clean),
		log.Int("dependencies", len(project.Modules[0].Dependencies)))
	return project, nil
}

// ParseSBOM detects the document format and converts it.
func ParseSBOM(data []byte) (*ports.Project, error) {
	switch DetectFormat(data) {
	case FormatSPDX:
		var doc spdxDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse SPDX JSON: %w", err)
		}
		return doc.project(), nil
	case FormatCycloneDX:
		var bom cycloneDXBOM
		if err := json.Unmarshal(data, &bom); err != nil {
			return nil, fmt.Errorf("failed to parse CycloneDX JSON: %w", err)
		}
		return bom.project(), nil
	default:
		return nil, ErrUnknownFormat
	}
}

// DetectFormat inspects the top-level JSON keys.
func DetectFormat(data []byte) string {
	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return FormatUnknown
	}
	if bomFormat, ok := generic["bomFormat"].(string); ok && strings.EqualFold(bomFormat, "CycloneDX") {
		return FormatCycloneDX
	}
	if _, ok := generic["spdxVersion"]; ok {
		return FormatSPDX
	}
	return FormatUnknown
}

// informative drops SPDX placeholders.
func informative(expr string) string {
	expr = strings.TrimSpace(expr)
	if expr == noAssertion || expr == none {
		return ""
	}
	return expr
}
