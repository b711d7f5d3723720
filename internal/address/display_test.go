package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayPathsUsesParentAndFilenameWhenAlreadyUnique(t *testing.T) {
	docs := []Doc{
		{Key: "a", RelPath: "docs/intro.md", AbsPath: "/repo/docs/intro.md"},
		{Key: "b", RelPath: "notes/journal.md", AbsPath: "/repo/notes/journal.md"},
	}

	out := DisplayPaths(docs)

	assert.Equal(t, "docs/intro.md", out["a"])
	assert.Equal(t, "notes/journal.md", out["b"])
}

func TestDisplayPathsPrependsAncestorsUntilUnique(t *testing.T) {
	docs := []Doc{
		{Key: "a", RelPath: "project-a/docs/readme.md", AbsPath: "/repo/project-a/docs/readme.md"},
		{Key: "b", RelPath: "project-b/docs/readme.md", AbsPath: "/repo/project-b/docs/readme.md"},
	}

	out := DisplayPaths(docs)

	assert.Equal(t, "project-a/docs/readme.md", out["a"])
	assert.Equal(t, "project-b/docs/readme.md", out["b"])
}

func TestDisplayPathsFallsBackToAbsolutePathOnFullCollision(t *testing.T) {
	docs := []Doc{
		{Key: "a", RelPath: "docs/readme.md", AbsPath: "/repo-a/docs/readme.md"},
		{Key: "b", RelPath: "docs/readme.md", AbsPath: "/repo-b/docs/readme.md"},
	}

	out := DisplayPaths(docs)

	assert.Equal(t, "/repo-a/docs/readme.md", out["a"])
	assert.Equal(t, "/repo-b/docs/readme.md", out["b"])
}

func TestDisplayPathsHandlesRootLevelFiles(t *testing.T) {
	docs := []Doc{
		{Key: "a", RelPath: "readme.md", AbsPath: "/repo/readme.md"},
	}

	out := DisplayPaths(docs)

	assert.Equal(t, "readme.md", out["a"])
}

func TestDisplayPathsUnaffectedDocsStayAtMinimumDepth(t *testing.T) {
	docs := []Doc{
		{Key: "a", RelPath: "project-a/docs/readme.md", AbsPath: "/repo/project-a/docs/readme.md"},
		{Key: "b", RelPath: "project-b/docs/readme.md", AbsPath: "/repo/project-b/docs/readme.md"},
		{Key: "c", RelPath: "unrelated/file.md", AbsPath: "/repo/unrelated/file.md"},
	}

	out := DisplayPaths(docs)

	assert.Equal(t, "unrelated/file.md", out["c"])
}
