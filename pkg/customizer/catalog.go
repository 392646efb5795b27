// SPDX-License-Identifier: MPL-2.0

package customizer

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/oreui-customizer/oreui/pkg/decode"
	"github.com/oreui-customizer/oreui/pkg/manifest"
)

type (
	// Catalog indexes encoded plugins found on disk by UUID.
	Catalog struct {
		byUUID map[manifest.UUID]CatalogEntry
		order  []manifest.UUID
	}

	// CatalogEntry is one plugin in a Catalog.
	CatalogEntry struct {
		Path    string
		Encoded *manifest.EncodedPluginData
	}

	// CatalogOption configures LoadCatalog.
	CatalogOption func(*catalogOptions)

	catalogOptions struct {
		logger *log.Logger
	}
)

// WithCatalogLogger sets the logger that reports skipped files.
func WithCatalogLogger(l *log.Logger) CatalogOption {
	return func(o *catalogOptions) { o.logger = l }
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byUUID: make(map[manifest.UUID]CatalogEntry)}
}

// LoadCatalog scans the top level of each directory for plugin files.
// Missing directories are skipped. Files that do not decode as plugins are
// logged and skipped. When two files share a UUID the first one found wins.
func LoadCatalog(dirs []string, opts ...CatalogOption) (*Catalog, error) {
	o := catalogOptions{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}

	c := NewCatalog()
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if errors.Is(err, fs.ErrNotExist) {
			o.logger.Debug("plugin directory does not exist", "dir", dir)
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !decode.IsPluginFile(e.Name()) {
				continue
			}
			p := filepath.Join(dir, e.Name())
			enc, err := decode.EncodeFile(p)
			if err != nil {
				o.logger.Warn("skipping plugin file", "path", p, "err", err)
				continue
			}
			if prev, dup := c.Lookup(enc.UUID); dup {
				o.logger.Warn("duplicate plugin uuid in catalog", "path", p, "kept", prev.Path)
				continue
			}
			c.Add(p, enc)
		}
	}
	return c, nil
}

// Add registers enc, replacing any plugin with the same UUID.
func (c *Catalog) Add(path string, enc *manifest.EncodedPluginData) {
	key := enc.UUID.Normalize()
	if _, ok := c.byUUID[key]; !ok {
		c.order = append(c.order, key)
	}
	c.byUUID[key] = CatalogEntry{Path: path, Encoded: enc}
}

// Lookup returns the plugin with the given UUID.
func (c *Catalog) Lookup(id manifest.UUID) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	e, ok := c.byUUID[id.Normalize()]
	return e, ok
}

// Entries returns the catalog in discovery order.
func (c *Catalog) Entries() []CatalogEntry {
	if c == nil {
		return nil
	}
	out := make([]CatalogEntry, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byUUID[k])
	}
	return slices.Clip(out)
}

// Len returns the number of plugins in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}
