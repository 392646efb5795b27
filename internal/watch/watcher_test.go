// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/oreui-customizer/oreui/internal/testutil"
)

func start(t *testing.T, w *Watcher) (cancel func()) {
	t.Helper()

	ctx, cancelCtx := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Give the event loop time to start.
	time.Sleep(50 * time.Millisecond)
	return func() {
		cancelCtx()
		select {
		case err := <-errCh:
			if err != nil {
				t.Errorf("Run() error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after cancel")
		}
	}
}

// TestWatcherDebounce verifies that rapid writes to watched files are
// coalesced into a single callback with every changed path.
func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.json")
	theme := filepath.Join(dir, "theme.json")
	testutil.WriteFile(t, settings, "{}")
	testutil.WriteFile(t, theme, "{}")

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{})

	w, err := New(Config{
		Files:    []string{settings, theme},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			if calls == 1 {
				close(done)
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)

	testutil.WriteFile(t, settings, `{"a": 1}`)
	time.Sleep(10 * time.Millisecond)
	testutil.WriteFile(t, theme, `{"b": 2}`)
	testutil.WriteFile(t, filepath.Join(dir, "unrelated.txt"), "x")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("expected 1 debounced callback, got %d", calls)
	}
	for _, want := range []string{settings, theme} {
		if !slices.Contains(collected, want) {
			t.Errorf("expected %q in changed files, got %v", want, collected)
		}
	}
	if slices.Contains(collected, filepath.Join(dir, "unrelated.txt")) {
		t.Errorf("unwatched file reported: %v", collected)
	}
}

// TestWatcherDirPatterns confirms that only plugin files inside watched
// directories trigger callbacks.
func TestWatcherDirPatterns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	w, err := New(Config{
		Dirs:     []string{dir},
		Patterns: []string{"*.{js,mcouicplugin}"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)
	defer stop()

	testutil.WriteFile(t, filepath.Join(dir, "notes.md"), "ignored")
	testutil.WriteFile(t, filepath.Join(dir, ".plugin.js.swp"), "ignored")
	time.Sleep(200 * time.Millisecond)
	testutil.WriteFile(t, filepath.Join(dir, "plugin.js"), "exports.plugin = {actions: []};")

	select {
	case changed := <-fired:
		if !slices.Equal(changed, []string{filepath.Join(dir, "plugin.js")}) {
			t.Errorf("changed = %v, want only plugin.js", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback on plugin file")
	}
}

func TestWatcherRunTwice(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{Dirs: []string{dir}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := start(t, w)
	defer stop()

	if err := w.Run(context.Background()); err == nil {
		t.Error("second Run() should fail")
	}
}

func TestNew_Rejects(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, ErrNothingToWatch) {
		t.Errorf("New(empty) error = %v, want ErrNothingToWatch", err)
	}
	if _, err := New(Config{Dirs: []string{t.TempDir()}, Patterns: []string{"[a-"}}); err == nil {
		t.Error("New() with a bad pattern should fail")
	}
	if _, err := New(Config{Dirs: []string{filepath.Join(t.TempDir(), "missing")}}); err == nil {
		t.Error("New() with a missing directory should fail")
	}
}

func TestIsIgnored(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"/p/settings.json.swp", true},
		{"/p/settings.json~", true},
		{"/p/.#settings.json", true},
		{"/p/.DS_Store", true},
		{"/p/settings.json", false},
		{"/p/plugin.mcouicplugin", false},
	}
	for _, tt := range tests {
		if got := isIgnored(tt.path); got != tt.want {
			t.Errorf("isIgnored(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
