// Package address implements qmd's external document addressing scheme:
// qmd://{collection}/{relative_path}.
package address

import (
	"fmt"
	"strings"
)

const scheme = "qmd://"

// Build returns the virtual path for a document at relPath within collection.
func Build(collection, relPath string) string {
	return scheme + collection + "/" + relPath
}

// Parse splits a virtual path into (collection, relativePath). The
// scheme must match exactly; the first slash-delimited segment after
// it is the collection name, the rest is the path.
func Parse(virtualPath string) (collection, relPath string, err error) {
	if !strings.HasPrefix(virtualPath, scheme) {
		return "", "", fmt.Errorf("invalid virtual path %q: missing %q scheme", virtualPath, scheme)
	}

	rest := strings.TrimPrefix(virtualPath, scheme)
	if rest == "" {
		return "", "", fmt.Errorf("invalid virtual path %q: no collection", virtualPath)
	}

	idx := strings.IndexByte(rest, '/')
	if idx < 0 {
		return rest, "", nil
	}

	return rest[:idx], rest[idx+1:], nil
}
