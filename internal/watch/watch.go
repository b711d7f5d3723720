// Package watch drives a debounced, fsnotify-backed re-index loop over
// a single collection root, generalized from the teacher's
// internal/watcher package. Unlike the teacher's per-file
// DeleteFile/IndexSingleFile incremental updates, qmd's Indexer always
// reconciles a whole collection in one pass (spec.md §4.4), so a
// watch cycle simply re-runs indexFiles after the debounce window
// rather than tracking per-path operations.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/qmd-project/qmd/internal/indexer"
)

// defaultDebounce matches the teacher's 500ms batching window.
const defaultDebounce = 500 * time.Millisecond

// EventFunc is called once per flushed re-index cycle, with the
// indexer.Result of the reconcile that just ran.
type EventFunc func(result indexer.Result)

// Watcher watches a collection root and re-indexes it on change.
type Watcher struct {
	pwd         string
	glob        string
	excludeDirs []string
	idx         *indexer.Indexer

	debounce     time.Duration
	pendingMu    sync.Mutex
	pendingCount int

	onEvent EventFunc
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the default 500ms debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithEventCallback sets a callback invoked after each re-index cycle.
func WithEventCallback(fn EventFunc) Option {
	return func(w *Watcher) { w.onEvent = fn }
}

// New returns a Watcher over (pwd, glob), driving idx on change.
func New(pwd, glob string, excludeDirs []string, idx *indexer.Indexer, opts ...Option) (*Watcher, error) {
	absPwd, err := filepath.Abs(pwd)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		pwd:         absPwd,
		glob:        glob,
		excludeDirs: excludeDirs,
		idx:         idx,
		debounce:    defaultDebounce,
		onEvent:     func(indexer.Result) {},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start watches w.pwd for changes, re-indexing after each debounce
// window until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addDirectories(fw); err != nil {
		return err
	}

	log.Info("watching collection for changes", "pwd", w.pwd, "glob", w.glob)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event, fw)
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Error("watcher error", "error", err)

		case <-timer.C:
			w.flush(ctx)
		}
	}
}

func (w *Watcher) addDirectories(fw *fsnotify.Watcher) error {
	return filepath.WalkDir(w.pwd, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && name != "." {
			return filepath.SkipDir
		}
		if w.shouldSkipDir(name) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			log.Debug("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) shouldSkipDir(name string) bool {
	for _, skip := range w.excludeDirs {
		if name == skip {
			return true
		}
	}
	return false
}

// handleEvent registers newly created directories with the watcher
// and otherwise just marks the pending counter dirty; the actual
// reconcile is a full collection re-walk, so individual paths are not
// tracked.
func (w *Watcher) handleEvent(event fsnotify.Event, fw *fsnotify.Watcher) {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.shouldSkipDir(filepath.Base(path)) {
				fw.Add(path)
			}
			return
		}
	}

	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	w.pendingMu.Lock()
	w.pendingCount++
	w.pendingMu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.pendingMu.Lock()
	count := w.pendingCount
	w.pendingCount = 0
	w.pendingMu.Unlock()

	if count == 0 {
		return
	}

	result, err := w.idx.IndexFiles(ctx, w.pwd, w.glob, w.excludeDirs, nil)
	if err != nil {
		log.Error("re-index after watch event failed", "pwd", w.pwd, "error", err)
		return
	}

	log.Info("re-indexed after change",
		"indexed", result.Indexed, "updated", result.Updated,
		"removed", result.Removed, "unchanged", result.Unchanged)
	w.onEvent(result)
}
