// Package spdx provides the embedded SPDX license list snapshot.
package spdx

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	depspdx "deps.dev/util/spdx"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
)

var _ ports.LicenseCatalog = (*LicenseList)(nil)

//go:embed catalog.json
var catalogData []byte

var (
	// ErrUnknownMimeType is returned when a MIME type has no known file extension.
	ErrUnknownMimeType = errors.New("unknown mime type")

	// ErrInvalidExpression is returned when a license expression does not
	// consist of known SPDX identifiers.
	ErrInvalidExpression = errors.New("invalid spdx expression")

	// ErrEmptyCatalog is returned when catalog data holds no licenses.
	ErrEmptyCatalog = errors.New("spdx catalog is empty")
)

// UrlInfo describes one downloadable attachment of a license.
type UrlInfo struct {
	SHA1      string `json:"sha1"`
	MimeType  string `json:"mimeType"`
	Stable    bool   `json:"stable"`
	Sanitized bool   `json:"sanitized"`
}

// LicenseInfo is one entry of the SPDX license list. Every entry carries
// its id, reference and deprecation flag; name, approval flags, links and
// attachments are present only for entries with details.
type LicenseInfo struct {
	Reference             string             `json:"reference"`
	IsDeprecatedLicenseID bool               `json:"isDeprecatedLicenseId"`
	IsFsfLibre            bool               `json:"isFsfLibre,omitempty"`
	DetailsURL            string             `json:"detailsUrl"`
	Name                  string             `json:"name,omitempty"`
	LicenseID             string             `json:"licenseId"`
	SeeAlso               []string           `json:"seeAlso,omitempty"`
	IsOsiApproved         bool               `json:"isOsiApproved,omitempty"`
	Attachments           map[string]UrlInfo `json:"attachments,omitempty"`
}

// HasDetails reports whether the entry carries more than its id.
func (i LicenseInfo) HasDetails() bool { return i.Name != "" }

// LicenseList is an immutable snapshot of the SPDX license list.
type LicenseList struct {
	licenseListVersion string
	releaseDate        string
	ids                []string
	licenses           map[string]LicenseInfo
}

type listJSON struct {
	LicenseListVersion string        `json:"licenseListVersion"`
	ReleaseDate        string        `json:"releaseDate"`
	Licenses           []LicenseInfo `json:"licenses"`
}

var (
	latestOnce sync.Once
	latest     *LicenseList
)

// Latest returns the embedded snapshot, parsed once per process.
func Latest() *LicenseList {
	latestOnce.Do(func() {
		l, err := Parse(catalogData)
		if err != nil {
			panic(fmt.Sprintf("embedded spdx catalog is corrupt: %v", err))
		}
		latest = l
	})
	return latest
}

// Parse builds a LicenseList from catalog JSON.
func Parse(data []byte) (*LicenseList, error) {
	var raw listJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse spdx catalog: %w", err)
	}
	if len(raw.Licenses) == 0 {
		return nil, ErrEmptyCatalog
	}

	l := &LicenseList{
		licenseListVersion: raw.LicenseListVersion,
		releaseDate:        raw.ReleaseDate,
		licenses:           make(map[string]LicenseInfo, len(raw.Licenses)),
	}
	for _, info := range raw.Licenses {
		if info.LicenseID == "" {
			return nil, fmt.Errorf("failed to parse spdx catalog: license %q has no id", info.Name)
		}
		if _, dup := l.licenses[info.LicenseID]; !dup {
			l.ids = append(l.ids, info.LicenseID)
		}
		l.licenses[info.LicenseID] = info
	}
	sort.Strings(l.ids)
	return l, nil
}

// LicenseListVersion returns the SPDX list version of the snapshot.
func (l *LicenseList) LicenseListVersion() string { return l.licenseListVersion }

// ReleaseDate returns the SPDX list release date.
func (l *LicenseList) ReleaseDate() string { return l.releaseDate }

// Get returns the entry for id. The match is exact and case-sensitive.
func (l *LicenseList) Get(id string) (LicenseInfo, bool) {
	info, ok := l.licenses[id]
	return info, ok
}

// Has reports whether id is in the snapshot.
func (l *LicenseList) Has(id string) bool {
	_, ok := l.licenses[id]
	return ok
}

// IDs returns all license ids in sorted order.
func (l *LicenseList) IDs() []string {
	return append([]string{}, l.ids...)
}

// Len returns the number of licenses.
func (l *LicenseList) Len() int { return len(l.ids) }

// Licenses returns every entry ordered by id.
func (l *LicenseList) Licenses() []LicenseInfo {
	out := make([]LicenseInfo, 0, len(l.ids))
	for _, id := range l.ids {
		out = append(out, l.licenses[id])
	}
	return out
}

// ByURL returns the license that lists u as an attachment or see-also link.
// http and https variants of u are treated alike.
func (l *LicenseList) ByURL(u string) (LicenseInfo, bool) {
	want := strings.TrimSuffix(strings.Replace(strings.TrimSpace(u), "http://", "https://", 1), "/")
	if want == "" {
		return LicenseInfo{}, false
	}
	for _, id := range l.ids {
		info := l.licenses[id]
		if info.IsDeprecatedLicenseID {
			continue
		}
		for att := range info.Attachments {
			if strings.EqualFold(strings.TrimSuffix(att, "/"), want) {
				return info, true
			}
		}
	}
	return LicenseInfo{}, false
}

// IDForURL returns the id of the license published at u.
func (l *LicenseList) IDForURL(u string) (string, bool) {
	info, ok := l.ByURL(u)
	return info.LicenseID, ok
}

// Canonicalize is Canonicalize bound to the catalog.
func (l *LicenseList) Canonicalize(expr string) (string, error) {
	return Canonicalize(expr)
}

// Canonicalize parses expr as an SPDX license expression and returns
// its canonical form. Every identifier must be a known SPDX id.
func Canonicalize(expr string) (string, error) {
	le, err := depspdx.ParseLicenseExpression(strings.TrimSpace(expr))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	if err := le.Valid(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	le.Canon()
	return le.String(), nil
}

// ToExtension maps an attachment MIME type to a file extension. When
// strict is false unknown types default to ".txt".
func ToExtension(mimeType string, strict bool) (string, error) {
	m := strings.ToLower(strings.TrimSpace(mimeType))
	switch {
	case strings.Contains(m, "plain"), m == "text/x-c":
		return ".txt", nil
	case strings.Contains(m, "html"):
		return ".html", nil
	case strings.Contains(m, "pdf"):
		return ".pdf", nil
	}
	if strict {
		return "", fmt.Errorf("%w: %q", ErrUnknownMimeType, mimeType)
	}
	return ".txt", nil
}
