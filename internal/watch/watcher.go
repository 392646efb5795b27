// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a customization pass when its inputs change.
//
// A Watcher follows individual files (settings, plugins, themes, the base
// archive) and whole plugin directories. Each file is watched through its
// parent directory so editors that save by rename are seen. Events within
// the debounce window are coalesced so the callback fires once with the full
// set of changed paths.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is the delay before firing the onChange callback after the
// last filesystem event.
const defaultDebounce = 500 * time.Millisecond

// ErrNothingToWatch is returned when a Config names no files or directories.
var ErrNothingToWatch = errors.New("watch: no files or directories to watch")

// defaultIgnores are base name globs of editor swap and OS metadata files
// that never trigger callbacks.
var defaultIgnores = []string{
	"*.swp",
	"*.swo",
	"*~",
	".#*",
	".DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Files are individual files whose changes trigger callbacks.
		Files []string

		// Dirs are directories whose direct children trigger callbacks when
		// their base name matches one of Patterns.
		Dirs []string

		// Patterns are doublestar globs matched against base names inside
		// Dirs. An empty slice matches every file.
		Patterns []string

		// Debounce is the quiet period after the last event before the callback
		// fires. Zero or negative values fall back to defaultDebounce.
		Debounce time.Duration

		// OnChange is called after the debounce window closes with the
		// sorted, deduplicated list of changed absolute paths. A nil callback
		// is a no-op.
		OnChange func(ctx context.Context, changed []string) error

		// Logger receives watcher diagnostics. nil discards them.
		Logger *log.Logger
	}

	// Watcher monitors files and directories and fires a debounced callback
	// when they change. Run must be called exactly once; calling it a second
	// time returns an error.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		logger   *log.Logger
		debounce time.Duration
		files    map[string]struct{}
		dirs     map[string]struct{}
		started  atomic.Bool
	}
)

// New creates a Watcher from the given Config. Paths are made absolute and
// their directories registered with fsnotify.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 && len(cfg.Dirs) == 0 {
		return nil, ErrNothingToWatch
	}
	if err := validatePatterns(cfg.Patterns); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		logger:   logger,
		debounce: debounce,
		files:    make(map[string]struct{}, len(cfg.Files)),
		dirs:     make(map[string]struct{}, len(cfg.Dirs)),
	}

	watched := make(map[string]struct{})
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", f, err)
		}
		w.files[abs] = struct{}{}
		watched[filepath.Dir(abs)] = struct{}{}
	}
	for _, d := range cfg.Dirs {
		abs, err := filepath.Abs(d)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve %q: %w", d, err)
		}
		w.dirs[abs] = struct{}{}
		watched[abs] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	for _, dir := range slices.Sorted(maps.Keys(watched)) {
		if addErr := fsw.Add(dir); addErr != nil {
			if closeErr := fsw.Close(); closeErr != nil {
				logger.Warn("close after init failure", "err", closeErr)
			}
			return nil, fmt.Errorf("watch: add directory %q: %w", dir, addErr)
		}
	}
	w.fsw = fsw
	return w, nil
}

// Run blocks until ctx is cancelled, processing filesystem events and
// dispatching debounced callbacks. It returns nil on clean context
// cancellation and propagates fatal watcher errors.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	// fire may run after cancellation because it is scheduled by
	// time.AfterFunc. Only one callback runs at a time; a busy callback
	// reschedules the pending set instead of dropping it.
	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("previous run still in progress, deferring")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		w.logger.Info("inputs changed", "files", len(changed))
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("callback failed", "err", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if closeErr := w.fsw.Close(); closeErr != nil {
			w.logger.Warn("close fsnotify", "err", closeErr)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Chmod) && !evt.Has(fsnotify.Write) {
				continue
			}
			if !w.relevant(evt.Name) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watch: fsnotify error channel closed unexpectedly")
			}
			// isFatalFsnotifyError is platform-specific (see watcher_fatal_*.go).
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("fsnotify error", "err", err)
		}
	}
}

// relevant reports whether an event on path should trigger a callback.
func (w *Watcher) relevant(path string) bool {
	if isIgnored(path) {
		return false
	}
	if _, ok := w.files[path]; ok {
		return true
	}
	if _, ok := w.dirs[filepath.Dir(path)]; !ok {
		return false
	}
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, pat := range w.cfg.Patterns {
		if matched, matchErr := doublestar.Match(pat, base); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// isIgnored reports whether the base name of path matches any of the default
// ignore patterns.
func isIgnored(path string) bool {
	base := filepath.Base(path)
	for _, pat := range defaultIgnores {
		if matched, matchErr := doublestar.Match(pat, base); matchErr == nil && matched {
			return true
		}
	}
	return false
}

// validatePatterns checks that every pattern is a valid doublestar glob.
func validatePatterns(patterns []string) error {
	for _, pat := range patterns {
		if !doublestar.ValidatePattern(pat) {
			return fmt.Errorf("watch: invalid pattern %q: %w", pat, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// Paths returns the absolute files and directories being watched.
func (w *Watcher) Paths() (files, dirs []string) {
	return slices.Sorted(maps.Keys(w.files)), slices.Sorted(maps.Keys(w.dirs))
}
