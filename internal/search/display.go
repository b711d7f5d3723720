package search

import (
	"path/filepath"

	"github.com/qmd-project/qmd/internal/address"
)

// fillDisplayPaths computes spec.md §3's display-path invariant for
// every hit. Uniqueness is checked against every active document in
// the store, not just the hits in this result set, so a document's
// display path stays stable whether or not the documents it would
// otherwise collide with happen to appear in the same result list.
func (e *Engine) fillDisplayPaths(hits []SearchHit) ([]SearchHit, error) {
	if len(hits) == 0 {
		return hits, nil
	}

	cols, err := e.collections.List()
	if err != nil {
		return nil, err
	}

	var docs []address.Doc
	for _, col := range cols {
		active, err := e.documents.ListActive(col.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range active {
			docs = append(docs, address.Doc{
				Key:     address.Build(col.Name, d.Path),
				RelPath: d.Path,
				AbsPath: filepath.Join(col.Pwd, d.Path),
			})
		}
	}

	displayByKey := address.DisplayPaths(docs)

	out := make([]SearchHit, len(hits))
	copy(out, hits)
	for i := range out {
		key := address.Build(out[i].Collection, out[i].Path)
		if dp, ok := displayByKey[key]; ok {
			out[i].DisplayPath = dp
			continue
		}
		out[i].DisplayPath = key
	}
	return out, nil
}
