// SPDX-License-Identifier: MPL-2.0

package vzip

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrInvalidArchive is returned when archive bytes cannot be read as zip.
	ErrInvalidArchive = errors.New("invalid zip archive")
	// ErrNotExist is returned for operations on a path with no entry.
	ErrNotExist = errors.New("entry does not exist")
	// ErrExist is returned when inserting a path that already has an entry.
	ErrExist = errors.New("entry already exists")
	// ErrInvalidPath is returned for paths that are not clean, slash-separated
	// and relative.
	ErrInvalidPath = errors.New("invalid entry path")
	// ErrIsDir is returned when reading or writing a directory entry.
	ErrIsDir = errors.New("entry is a directory")
)

type (
	// FS is a mutable in-memory view over the entries of a zip archive. It is
	// safe for concurrent use.
	FS struct {
		mu      sync.Mutex
		entries map[string]*Entry
		order   []string
		now     func() time.Time
	}

	// Entry is one archive member. The zero value is not usable; entries are
	// owned by an FS.
	Entry struct {
		name   string
		header zip.FileHeader
		// src is the original member; nil once the entry is written or when
		// it was inserted.
		src  *zip.File
		data []byte
	}

	// PathError records the operation and path that failed.
	PathError struct {
		Op   string
		Path string
		Err  error
	}

	// Option configures an FS.
	Option func(*FS)
)

// WithClock sets the modification time source for inserted entries.
func WithClock(now func() time.Time) Option {
	return func(f *FS) { f.now = now }
}

// New returns an empty FS.
func New(opts ...Option) *FS {
	f := &FS{entries: make(map[string]*Entry), now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open reads archive bytes into an FS. The bytes are retained and must not be
// modified while the FS is in use. Archives naming a member more than once
// are rejected, since one of the members could not be written back.
func Open(data []byte, opts ...Option) (*FS, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	f := New(opts...)
	for _, zf := range r.File {
		if _, dup := f.entries[zf.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate member %q", ErrInvalidArchive, zf.Name)
		}
		f.entries[zf.Name] = &Entry{name: zf.Name, header: zf.FileHeader, src: zf}
		f.order = append(f.order, zf.Name)
	}
	return f, nil
}

func (e *PathError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *PathError) Unwrap() error { return e.Err }

// Name returns the entry's archive path.
func (e *Entry) Name() string { return e.name }

// Kind returns the entry's content class.
func (e *Entry) Kind() Kind { return Classify(e.name) }

// IsDir reports whether the entry is a directory marker.
func (e *Entry) IsDir() bool { return strings.HasSuffix(e.name, "/") }

// Method returns the entry's compression method.
func (e *Entry) Method() uint16 { return e.header.Method }

// Modified returns the entry's modification time.
func (e *Entry) Modified() time.Time { return e.header.Modified }

// Size returns the uncompressed size.
func (e *Entry) Size() int64 {
	if e.src != nil {
		return int64(e.src.UncompressedSize64)
	}
	return int64(len(e.data))
}

// Touched reports whether the entry was written or inserted since Open.
func (e *Entry) Touched() bool { return e.src == nil }

func (e *Entry) read() ([]byte, error) {
	if e.src == nil {
		return bytes.Clone(e.data), nil
	}
	rc, err := e.src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Len returns the number of entries.
func (f *FS) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// Paths returns a snapshot of all entry paths in archive order.
func (f *FS) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...)
}

// Entries yields entries in archive order. The path list is captured when
// iteration starts; entries removed during iteration are skipped and entries
// inserted during iteration are not visited. Each call starts a new pass.
func (f *FS) Entries() iter.Seq[*Entry] {
	return func(yield func(*Entry) bool) {
		for _, p := range f.Paths() {
			e, ok := f.Stat(p)
			if !ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// Stat returns the entry at path.
func (f *FS) Stat(path string) (*Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[path]
	return e, ok
}

// Exists reports whether path has an entry.
func (f *FS) Exists(path string) bool {
	_, ok := f.Stat(path)
	return ok
}

// ReadBinary returns a copy of the content at path.
func (f *FS) ReadBinary(path string) ([]byte, error) {
	f.mu.Lock()
	e, ok := f.entries[path]
	f.mu.Unlock()
	if !ok {
		return nil, &PathError{Op: "read", Path: path, Err: ErrNotExist}
	}
	if e.IsDir() {
		return nil, &PathError{Op: "read", Path: path, Err: ErrIsDir}
	}
	data, err := e.read()
	if err != nil {
		return nil, &PathError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// ReadText returns the content at path as a string. Bytes are not
// re-encoded.
func (f *FS) ReadText(path string) (string, error) {
	data, err := f.ReadBinary(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteBinary replaces the content of an existing entry. The entry keeps its
// path, position, compression method and modification time.
func (f *FS) WriteBinary(path string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[path]
	if !ok {
		return &PathError{Op: "write", Path: path, Err: ErrNotExist}
	}
	if e.IsDir() {
		return &PathError{Op: "write", Path: path, Err: ErrIsDir}
	}
	f.entries[path] = &Entry{name: path, header: e.header, data: bytes.Clone(data)}
	return nil
}

// WriteText replaces the content of an existing entry with s.
func (f *FS) WriteText(path, s string) error {
	return f.WriteBinary(path, []byte(s))
}

// Insert adds a new deflated entry at the end of the archive.
func (f *FS) Insert(path string, data []byte) error {
	if !iofs.ValidPath(path) || path == "." {
		return &PathError{Op: "insert", Path: path, Err: ErrInvalidPath}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[path]; ok {
		return &PathError{Op: "insert", Path: path, Err: ErrExist}
	}
	hdr := zip.FileHeader{Name: path, Method: zip.Deflate, Modified: f.now()}
	f.entries[path] = &Entry{name: path, header: hdr, data: bytes.Clone(data)}
	f.order = append(f.order, path)
	return nil
}

// InsertText adds a new text entry.
func (f *FS) InsertText(path, s string) error {
	return f.Insert(path, []byte(s))
}

// Remove deletes the entry at path.
func (f *FS) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[path]; !ok {
		return &PathError{Op: "remove", Path: path, Err: ErrNotExist}
	}
	delete(f.entries, path)
	for i, p := range f.order {
		if p == path {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// WriteTo serializes the archive to w. Untouched entries are copied as their
// original compressed stream.
func (f *FS) WriteTo(w io.Writer) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, p := range f.order {
		e := f.entries[p]
		if e.src != nil {
			if err := zw.Copy(e.src); err != nil {
				return cw.n, fmt.Errorf("copy %s: %w", p, err)
			}
			continue
		}
		hdr := e.header
		hdr.CRC32, hdr.CompressedSize64, hdr.UncompressedSize64 = 0, 0, 0
		hdr.CompressedSize, hdr.UncompressedSize = 0, 0
		hdr.Extra = nil
		dst, err := zw.CreateHeader(&hdr)
		if err != nil {
			return cw.n, fmt.Errorf("create %s: %w", p, err)
		}
		if _, err := dst.Write(e.data); err != nil {
			return cw.n, fmt.Errorf("write %s: %w", p, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Bytes serializes the archive.
func (f *FS) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
