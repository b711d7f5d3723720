package toolserver

import (
	"net/url"
	"strings"

	"github.com/qmd-project/qmd/internal/address"
)

// encodeURI percent-encodes each segment of a qmd:// virtual path
// independently, preserving the slashes between segments, per spec.md
// §6's "URI path segments are percent-encoded; slashes between
// segments are preserved."
func encodeURI(virtualPath string) string {
	scheme, rest, ok := strings.Cut(virtualPath, "://")
	if !ok {
		return virtualPath
	}
	segments := strings.Split(rest, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return scheme + "://" + strings.Join(segments, "/")
}

// decodeURI reverses encodeURI, percent-decoding each segment
// independently. Malformed escapes are passed through unchanged
// rather than erroring, since a caller sending a bare path should
// still resolve.
func decodeURI(virtualPath string) string {
	scheme, rest, ok := strings.Cut(virtualPath, "://")
	if !ok {
		return virtualPath
	}
	segments := strings.Split(rest, "/")
	for i, seg := range segments {
		if decoded, err := url.PathUnescape(seg); err == nil {
			segments[i] = decoded
		}
	}
	return scheme + "://" + strings.Join(segments, "/")
}

// similarPaths returns up to limit candidates (absolute filesystem
// paths) that contain needle as a case-insensitive substring, used as
// the not-found fallback spec.md §6 requires. A qmd:// needle is first
// reduced to its collection-relative path.
func similarPaths(needle string, candidates []string, limit int) []string {
	if _, relPath, err := address.Parse(needle); err == nil && relPath != "" {
		needle = relPath
	}
	needle = strings.ToLower(needle)
	var out []string
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(c), needle) {
			out = append(out, c)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
