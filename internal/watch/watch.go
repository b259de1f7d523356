// Package watch re-runs a callback when files under a directory change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"repopack/internal/logging"
)

// DefaultDebounce is the quiet period before OnChange fires.
const DefaultDebounce = 300 * time.Millisecond

// skipDirs are never watched.
var skipDirs = []string{".git", ".hg", ".svn", "node_modules"}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event. Zero means
	// DefaultDebounce.
	Debounce time.Duration
	// Ignore reports whether a root-relative forward-slash path should be
	// ignored. It may be nil.
	Ignore func(rel string) bool
	// OnChange receives the sorted set of changed paths once things settle.
	// It runs on the watch loop, so events arriving meanwhile are batched
	// into the next call.
	OnChange func(ctx context.Context, paths []string)
}

// Watcher watches a directory tree.
type Watcher struct {
	root string
	opts Options
	fsw  *fsnotify.Watcher
}

// New creates a watcher for every directory under root.
func New(root string, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{root: root, opts: opts, fsw: fsw}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree registers dir and its subdirectories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p != dir && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && w.ignored(p) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return err
		}
		logging.WatchDebug("Watching %s", p)
		return nil
	})
}

func (w *Watcher) rel(p string) string {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) ignored(p string) bool {
	if slices.Contains(skipDirs, filepath.Base(p)) {
		return true
	}
	return w.opts.Ignore != nil && w.opts.Ignore(w.rel(p))
}

// Run blocks until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := map[string]struct{}{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event, pending) {
				continue
			}
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Get(logging.CategoryWatch).Warn("Watch error: %v", err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			slices.Sort(paths)
			clear(pending)
			logging.WatchDebug("Change detected: %v", paths)
			if w.opts.OnChange != nil {
				w.opts.OnChange(ctx, paths)
			}
		}
	}
}

// handle records a relevant event and reports whether it was kept.
func (w *Watcher) handle(event fsnotify.Event, pending map[string]struct{}) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if w.ignored(event.Name) {
		return false
	}
	if event.Op.Has(fsnotify.Create) {
		// New directories need their own watch.
		if err := w.addTree(event.Name); err != nil {
			logging.WatchDebug("Not watching %s: %v", event.Name, err)
		}
	}
	pending[w.rel(event.Name)] = struct{}{}
	return true
}
