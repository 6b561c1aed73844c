package ports

import (
	"context"
	"errors"
)

// ErrContentNotFound is returned when a referenced resource does not exist.
var ErrContentNotFound = errors.New("content not found")

// ContentFetcher resolves a URL-like reference to raw bytes. References
// may be bundled resources, local paths, UNC paths or http(s) URLs.
type ContentFetcher interface {
	// Fetch returns the content at ref.
	Fetch(ctx context.Context, ref string) ([]byte, error)

	// IsExternalURL reports whether ref points at a remote location.
	IsExternalURL(ref string) bool
}
