package walk

import (
	"path/filepath"
	"strings"
)

// matchGlob reports whether relPath (slash-separated, relative to a
// walk root) matches pattern, where "**" in a path segment matches zero
// or more segments and any other segment is matched with
// filepath.Match's usual single-segment wildcards.
func matchGlob(pattern, relPath string) bool {
	patSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(relPath, "/")
	return matchSegments(patSegs, pathSegs)
}

func matchSegments(pat, path []string) bool {
	if len(pat) == 0 {
		return len(path) == 0
	}

	if pat[0] == "**" {
		if matchSegments(pat[1:], path) {
			return true
		}
		if len(path) > 0 && matchSegments(pat, path[1:]) {
			return true
		}
		return false
	}

	if len(path) == 0 {
		return false
	}

	ok, err := filepath.Match(pat[0], path[0])
	if err != nil || !ok {
		return false
	}

	return matchSegments(pat[1:], path[1:])
}
