package services

import (
	"crypto/sha1" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	newlinePattern    = regexp.MustCompile(`\r\n|\r|\n`)
	whitespacePattern = regexp.MustCompile(`\s\s+`)
)

// ContentNormalizer fingerprints license and notice texts so that copies
// differing only in line endings, spacing, case or http/https links
// collapse to one record.
type ContentNormalizer struct{}

// NewContentNormalizer creates a normalizer.
func NewContentNormalizer() *ContentNormalizer {
	return &ContentNormalizer{}
}

// Normalize folds line breaks and runs of whitespace to single spaces,
// upgrades http:// links to https:// and lower-cases the text.
func (n *ContentNormalizer) Normalize(content string) string {
	s := newlinePattern.ReplaceAllString(content, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "http://", "https://")
	return strings.ToLower(s)
}

// Checksum returns the hex SHA-1 of the normalized content.
func (n *ContentNormalizer) Checksum(content string) string {
	sum := sha1.Sum([]byte(n.Normalize(content))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// RawChecksum returns the hex SHA-1 of content without normalization.
func (n *ContentNormalizer) RawChecksum(content []byte) string {
	sum := sha1.Sum(content) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
