// Package watcher re-runs work when input files change, using fsnotify with debouncing.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Filter reports whether a change to path should trigger the callback.
type Filter func(path string) bool

// Watcher watches directories and invokes onChange once per burst of matching events.
type Watcher struct {
	dirs     []string
	filter   Filter
	onChange func(paths []string)
	debounce time.Duration
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	timer    *time.Timer
	pending  map[string]struct{}
	done     chan struct{}
	started  bool
	stopOnce sync.Once
	logger   *zap.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) { w.logger = l }
}

// WithDebounce sets how long the watcher waits for events to settle. d <= 0 keeps the default.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher over dirs (not recursive). onChange receives the sorted,
// distinct paths that changed since the last call. A nil filter accepts every file.
func NewWatcher(dirs []string, filter Filter, onChange func(paths []string), opts ...WatcherOption) *Watcher {
	seen := make(map[string]struct{}, len(dirs))
	var clean []string
	for _, d := range dirs {
		d = filepath.Clean(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		clean = append(clean, d)
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}
	w := &Watcher{
		dirs:     clean,
		filter:   filter,
		onChange: onChange,
		debounce: defaultDebounce,
		pending:  make(map[string]struct{}),
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start starts the watcher. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			_ = watcher.Close()
			return err
		}
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return err
		}
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("watcher started", zap.Strings("dirs", w.dirs), zap.Duration("debounce", w.debounce))
	go w.run(ctx, watcher)
	return nil
}

func (w *Watcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		return
	}
	if !w.filter(ev.Name) {
		return
	}
	w.logger.Debug("watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.pending[filepath.Clean(ev.Name)] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	if len(paths) == 0 || w.onChange == nil {
		return
	}
	sort.Strings(paths)
	w.logger.Debug("watcher firing (debounced)", zap.Strings("paths", paths))
	w.onChange(paths)
}

// Directories returns the watched directories.
func (w *Watcher) Directories() []string {
	return append([]string(nil), w.dirs...)
}

// Stop stops the watcher and drops pending events.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = make(map[string]struct{})
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}

// FileFilter matches exactly path.
func FileFilter(path string) Filter {
	want := filepath.Clean(path)
	return func(p string) bool { return filepath.Clean(p) == want }
}

// ExtensionFilter matches files directly inside dir whose extension is one of
// extensions (case-insensitive, leading dot optional). No extensions matches any file.
func ExtensionFilter(dir string, extensions []string) Filter {
	dir = filepath.Clean(dir)
	return func(p string) bool {
		return filepath.Dir(filepath.Clean(p)) == dir && matchExtension(p, extensions)
	}
}

// AnyOf matches when any filter matches.
func AnyOf(filters ...Filter) Filter {
	return func(p string) bool {
		for _, f := range filters {
			if f(p) {
				return true
			}
		}
		return false
	}
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}
