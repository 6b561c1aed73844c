package artifact

import (
	"errors"
	"fmt"
	"strings"

	"github.com/package-url/packageurl-go"
)

// KeySeparator joins coordinate parts in override and missing-file keys.
const KeySeparator = "--"

// ErrInvalidKey is returned when an override key cannot be split into a coordinate.
var ErrInvalidKey = errors.New("invalid artifact key")

// Coordinate identifies one artifact version.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
	Type       string // packaging, empty or "pom" for the default
	Classifier string
}

// NewCoordinate creates a coordinate with no type or classifier.
func NewCoordinate(groupID, artifactID, version string) Coordinate {
	return Coordinate{GroupID: groupID, ArtifactID: artifactID, Version: version}
}

// String returns groupId:artifactId:version.
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID + ":" + c.Version
}

// GA returns groupId:artifactId.
func (c Coordinate) GA() string {
	return c.GroupID + ":" + c.ArtifactID
}

// OverrideKey returns groupId--artifactId--version. This is the key
// format of override and missing files and must not change.
func (c Coordinate) OverrideKey() string {
	return c.GroupID + KeySeparator + c.ArtifactID + KeySeparator + c.Version
}

// FullID extends OverrideKey with the type (unless default) and classifier.
// Two artifacts are the same artifact iff their FullIDs match.
func (c Coordinate) FullID() string {
	id := c.OverrideKey()
	if c.Type != "" && c.Type != "pom" {
		id += KeySeparator + c.Type
	}
	if c.Classifier != "" {
		id += KeySeparator + c.Classifier
	}
	return id
}

// IsZero reports whether no part of the coordinate is set.
func (c Coordinate) IsZero() bool {
	return c == Coordinate{}
}

// PURL returns the package URL for the coordinate.
func (c Coordinate) PURL() string {
	var qualifiers packageurl.Qualifiers
	if c.Type != "" && c.Type != "jar" && c.Type != "pom" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "type", Value: c.Type})
	}
	if c.Classifier != "" {
		qualifiers = append(qualifiers, packageurl.Qualifier{Key: "classifier", Value: c.Classifier})
	}
	return packageurl.NewPackageURL(packageurl.TypeMaven, c.GroupID, c.ArtifactID, c.Version, qualifiers, "").ToString()
}

// ParseKey splits an override key. Keys carry three to five segments:
// group, artifact, version, then optional type and classifier.
func ParseKey(key string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(key), KeySeparator)
	if len(parts) < 3 || len(parts) > 5 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidKey, key)
		}
	}

	c := Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}
	if len(parts) > 3 {
		c.Type = parts[3]
	}
	if len(parts) > 4 {
		c.Classifier = parts[4]
	}
	return c, nil
}

// FromPURL converts a pkg:maven package URL to a coordinate.
func FromPURL(purl string) (Coordinate, error) {
	p, err := packageurl.FromString(purl)
	if err != nil {
		return Coordinate{}, fmt.Errorf("failed to parse purl: %w", err)
	}
	if p.Type != packageurl.TypeMaven {
		return Coordinate{}, fmt.Errorf("%w: unsupported purl type %q", ErrInvalidKey, p.Type)
	}

	c := Coordinate{GroupID: p.Namespace, ArtifactID: p.Name, Version: p.Version}
	q := p.Qualifiers.Map()
	c.Type = q["type"]
	c.Classifier = q["classifier"]
	return c, nil
}
