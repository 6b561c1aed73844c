// Package pathutil provides safe path handling for license definition,
// override and artifact files.
package pathutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidatePath cleans path and resolves symlinks when it exists.
// Paths that do not exist yet are returned cleaned so callers can create them.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(path, 0) {
		return "", ErrNullBytes
	}

	cleaned := filepath.Clean(path)
	if real, err := filepath.EvalSymlinks(cleaned); err == nil {
		return real, nil
	}
	return cleaned, nil
}

// ValidatePathInDir returns the resolved path when it stays inside baseDir.
// Symlinks are resolved on both sides; for paths that do not exist yet
// the nearest existing parent is resolved instead.
func ValidatePathInDir(path, baseDir string) (string, error) {
	cleaned, err := ValidatePath(path)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	realBase, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory symlinks: %w", err)
	}

	realPath := resolveExisting(absPath)
	if realPath != realBase && !strings.HasPrefix(realPath, realBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesBase, path)
	}
	return realPath, nil
}

// resolveExisting resolves symlinks on the longest existing prefix of p.
func resolveExisting(p string) string {
	if real, err := filepath.EvalSymlinks(p); err == nil {
		return real
	}

	var tail []string
	dir := p
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return p
		}
		tail = append([]string{filepath.Base(dir)}, tail...)
		if real, err := filepath.EvalSymlinks(parent); err == nil {
			return filepath.Join(append([]string{real}, tail...)...)
		}
		dir = parent
	}
}

// IsUNC reports whether p is a UNC path such as //server/share/file or
// \\server\share\file.
func IsUNC(p string) bool {
	if len(p) < 3 {
		return false
	}
	lead := p[:2]
	if lead != `//` && lead != `\\` {
		return false
	}
	rest := strings.TrimLeft(p[2:], `/\`)
	return rest != "" && len(rest) == len(p)-2
}

// ToFileURI converts a local or UNC path to a file URI. UNC paths keep
// the server as the URI host: //server/dir/f.txt becomes file://server/dir/f.txt.
func ToFileURI(p string) (string, error) {
	if p == "" {
		return "", ErrEmptyPath
	}
	if IsUNC(p) {
		return "file:" + strings.ReplaceAll(p, `\`, "/"), nil
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return "file://" + abs, nil
}

// FromFileURI converts a file URI back to a local path. A non-empty host
// yields a UNC path.
func FromFileURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, "file:")
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFileURI, uri)
	}
	if hostPath, ok := strings.CutPrefix(rest, "//"); ok {
		host, path, _ := strings.Cut(hostPath, "/")
		if host == "" || host == "localhost" {
			return filepath.FromSlash("/" + path), nil
		}
		return "//" + host + "/" + path, nil
	}
	if rest == "" {
		return "", ErrEmptyPath
	}
	return filepath.FromSlash(rest), nil
}
