// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"maps"
	"slices"
	"testing"

	"github.com/oreui-customizer/oreui/pkg/vzip"
)

// NewFS returns an in-memory archive holding files. Entries are inserted
// in path order so archive order is stable.
func NewFS(t testing.TB, files map[string]string) *vzip.FS {
	t.Helper()
	fs := vzip.New()
	for _, name := range slices.Sorted(maps.Keys(files)) {
		if err := fs.InsertText(name, files[name]); err != nil {
			t.Fatalf("InsertText(%q): %v", name, err)
		}
	}
	return fs
}

// Archive returns the zip bytes of NewFS(files).
func Archive(t testing.TB, files map[string]string) []byte {
	t.Helper()
	b, err := NewFS(t, files).Bytes()
	if err != nil {
		t.Fatalf("Bytes(): %v", err)
	}
	return b
}

// ReadEntry opens archive and returns the text of entry name.
func ReadEntry(t testing.TB, archive []byte, name string) string {
	t.Helper()
	fs, err := vzip.Open(archive)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	s, err := fs.ReadText(name)
	if err != nil {
		t.Fatalf("ReadText(%q): %v", name, err)
	}
	return s
}
