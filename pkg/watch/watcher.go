// Package watch re-runs the analysis when Java sources or templates change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/vmsweep/internal/logging"
	"github.com/panbanda/vmsweep/pkg/config"
	"github.com/panbanda/vmsweep/pkg/parser"
)

// DefaultDebounce is the quiet period before a batch of changes is handled.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors a project and calls back once per settled batch of
// relevant changes. Callbacks never overlap.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	root      string
	log       *logging.Logger
	callback  func(changed []string)

	mu      sync.Mutex
	pending map[string]time.Time
	running sync.Mutex
}

// NewWatcher creates a watcher for root.
func NewWatcher(root string, cfg *config.Config, debounce time.Duration, log *logging.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  debounce,
		root:      root,
		log:       log,
		pending:   make(map[string]time.Time),
	}, nil
}

// SetCallback sets the function run after changes settle. changed holds the
// project-relative paths in the batch, sorted.
func (w *Watcher) SetCallback(cb func(changed []string)) {
	w.callback = cb
}

// Start watches until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.log.Info("watching for changes", logging.F("root", w.root), logging.F("dirs", len(w.fsWatcher.WatchList())))

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", logging.F("err", err))
		}
	}
}

func (w *Watcher) excludedDir(name string) bool {
	for _, d := range w.config.Exclude.Dirs {
		if name == d {
			return true
		}
	}
	return false
}

// addTree registers dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && w.excludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// Relevant reports whether a change to path can affect the findings.
func (w *Watcher) Relevant(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	if w.config.ShouldExclude(rel) {
		return false
	}
	return parser.DetectLanguage(path) == parser.LangJava || w.config.IsTemplate(path)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.excludedDir(info.Name()) {
				if err := w.addTree(event.Name); err != nil {
					w.log.Debug("cannot watch new directory", logging.F("dir", event.Name), logging.F("err", err))
				}
			}
			return
		}
	}

	if !w.Relevant(event.Name) {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounce / 5)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if batch := w.takeSettled(time.Now()); len(batch) > 0 {
				w.run(batch)
			}
		}
	}
}

// takeSettled removes and returns the pending batch once its newest change
// is older than the debounce period.
func (w *Watcher) takeSettled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	for _, changed := range w.pending {
		if now.Sub(changed) < w.debounce {
			return nil
		}
	}

	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		rel, err := filepath.Rel(w.root, path)
		if err != nil {
			rel = path
		}
		batch = append(batch, filepath.ToSlash(rel))
	}
	w.pending = make(map[string]time.Time)
	sort.Strings(batch)
	return batch
}

func (w *Watcher) run(batch []string) {
	if w.callback == nil {
		return
	}
	w.running.Lock()
	defer w.running.Unlock()

	w.log.Info("change detected, re-running analysis", logging.F("files", len(batch)))
	w.callback(batch)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the watched directories.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
