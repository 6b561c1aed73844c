package transport

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/felixgeelhaar/licensemap/internal/application/ports"
)

// DownloadList fetches ref and returns its non-blank lines in order,
// skipping # comments and duplicates.
func DownloadList(ctx context.Context, f ports.ContentFetcher, ref string) ([]string, error) {
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out, sc.Err()
}
