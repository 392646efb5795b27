// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/oreui-customizer/oreui/pkg/platform"
)

// WriteFile writes content to path, creating parent directories, and
// returns path.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// SetConfigHome points the platform config directory lookup at dir and
// returns the base directory the application directory is created under.
// The variable is restored when the test ends, so callers cannot be
// parallel.
//
// Platform handling:
//   - Windows: sets APPDATA
//   - macOS: sets HOME; the base is ~/Library/Application Support
//   - Linux and others: sets XDG_CONFIG_HOME
func SetConfigHome(t *testing.T, dir string) string {
	t.Helper()

	switch runtime.GOOS {
	case platform.Windows:
		t.Setenv("APPDATA", dir)
		return dir
	case platform.Darwin:
		t.Setenv("HOME", dir)
		return filepath.Join(dir, "Library", "Application Support")
	default:
		t.Setenv("XDG_CONFIG_HOME", dir)
		return dir
	}
}
