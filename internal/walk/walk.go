// Package walk implements the FileWalker capability of spec.md §6:
// given (root, glob, followSymlinks, onlyFiles), yield file paths
// relative to root that match glob, skipping dotfile-prefixed path
// components and a configurable excluded-directory set.
package walk

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	gitignore "github.com/sabhiram/go-gitignore"
)

// Options configures a Walker.
type Options struct {
	Root           string
	Glob           string
	FollowSymlinks bool
	OnlyFiles      bool
	ExcludeDirs    []string
}

// DefaultOptions returns FileWalker capability defaults per spec.md §6.
func DefaultOptions() Options {
	return Options{
		FollowSymlinks: true,
		OnlyFiles:      true,
	}
}

// Walker traverses a directory tree yielding paths matching a glob.
type Walker struct {
	opts       Options
	excludeSet map[string]bool
	ignorer    *gitignore.GitIgnore
}

// New returns a Walker rooted at opts.Root, resolved to an absolute path.
func New(opts Options) (*Walker, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}
	opts.Root = root

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("root path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", root)
	}

	excludeSet := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excludeSet[d] = true
	}

	w := &Walker{opts: opts, excludeSet: excludeSet}

	gitignorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitignorePath); err == nil {
		gi, err := gitignore.CompileIgnoreFile(gitignorePath)
		if err != nil {
			log.Warn("failed to parse .gitignore", "path", gitignorePath, "error", err)
		} else {
			w.ignorer = gi
		}
	}

	return w, nil
}

// Walk calls fn once per matching file with its path relative to root,
// in the order returned by filepath.WalkDir (lexical, depth-first).
func (w *Walker) Walk(fn func(relPath string) error) error {
	return filepath.WalkDir(w.opts.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("error accessing path", "path", path, "error", err)
			return nil
		}

		if path == w.opts.Root {
			return nil
		}

		relPath, err := filepath.Rel(w.opts.Root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if w.shouldSkipDir(d.Name(), relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 && !w.opts.FollowSymlinks {
			return nil
		}

		if w.opts.OnlyFiles && d.IsDir() {
			return nil
		}

		if hasExcludedComponent(relPath, w.excludeSet) {
			return nil
		}

		if w.ignorer != nil && w.ignorer.MatchesPath(relPath) {
			return nil
		}

		if w.opts.Glob != "" && !matchGlob(w.opts.Glob, relPath) {
			return nil
		}

		return fn(relPath)
	})
}

func (w *Walker) shouldSkipDir(name, relPath string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if w.excludeSet[name] {
		return true
	}
	if w.ignorer != nil && w.ignorer.MatchesPath(relPath+"/") {
		return true
	}
	return false
}

func hasExcludedComponent(relPath string, excludeSet map[string]bool) bool {
	for _, seg := range strings.Split(relPath, "/") {
		if strings.HasPrefix(seg, ".") || excludeSet[seg] {
			return true
		}
	}
	return false
}
