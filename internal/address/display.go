package address

import (
	"path/filepath"
	"strings"
)

// Doc is one active document considered by DisplayPaths: RelPath is its
// collection-relative path ("/"-delimited), AbsPath is its full
// filesystem path, used only as the last-resort fallback.
type Doc struct {
	Key     string
	RelPath string
	AbsPath string
}

// DisplayPaths computes spec.md §3's display-path invariant: for each
// document, the shortest suffix of its path components — at least
// parent_dir/filename — that does not collide with any other
// document's candidate at the same depth, prepending further ancestor
// directories one at a time until unique. A document that still
// collides at its full relative path falls back to its absolute
// filesystem path.
func DisplayPaths(docs []Doc) map[string]string {
	out := make(map[string]string, len(docs))
	if len(docs) == 0 {
		return out
	}

	segments := make(map[string][]string, len(docs))
	for _, d := range docs {
		segments[d.Key] = strings.Split(filepath.ToSlash(d.RelPath), "/")
	}

	pending := make([]Doc, len(docs))
	copy(pending, docs)

	for depth := 2; len(pending) > 0; depth++ {
		candidate := make(map[string]string, len(pending))
		for _, d := range pending {
			segs := segments[d.Key]
			n := depth
			if n > len(segs) {
				n = len(segs)
			}
			candidate[d.Key] = strings.Join(segs[len(segs)-n:], "/")
		}

		counts := make(map[string]int, len(candidate))
		for _, c := range candidate {
			counts[c]++
		}

		var next []Doc
		for _, d := range pending {
			c := candidate[d.Key]
			switch {
			case counts[c] == 1:
				out[d.Key] = c
			case depth >= len(segments[d.Key]):
				out[d.Key] = d.AbsPath
			default:
				next = append(next, d)
			}
		}
		pending = next
	}

	return out
}
