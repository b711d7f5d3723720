package store

import "time"

// Content is a de-duplicated document body, addressed by its SHA-256 hash.
type Content struct {
	Hash      string
	Doc       string
	CreatedAt time.Time
}

// Collection groups documents under a filesystem root and glob pattern.
type Collection struct {
	ID          int64
	Name        string
	Pwd         string
	GlobPattern string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Document is one indexed file within a collection.
type Document struct {
	ID           int64
	CollectionID int64
	Path         string
	Title        string
	Hash         string
	CreatedAt    time.Time
	ModifiedAt   time.Time
	Active       bool
}

// PathContext attaches freeform context text to a path prefix within a
// collection, inherited by documents via longest-prefix match.
type PathContext struct {
	ID           int64
	CollectionID int64
	PathPrefix   string
	Context      string
	CreatedAt    time.Time
}

// ContentVector records that chunk `seq` of the body at `hash` has been
// embedded under `model`, with `pos` the character offset of the chunk's
// start in the original body.
type ContentVector struct {
	Hash       string
	Seq        int
	Pos        int
	Model      string
	EmbeddedAt time.Time
}

// CacheEntry memoizes an LLM provider response by request hash.
type CacheEntry struct {
	Hash      string
	Result    string
	CreatedAt time.Time
}
