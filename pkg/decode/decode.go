// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/script"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

// ManifestName is the manifest file inside a .mcouicplugin archive.
const ManifestName = "manifest.json"

var (
	// ErrDecode is the sentinel error wrapped by DecodeError.
	ErrDecode = errors.New("plugin decode failed")
	// ErrManifestNotFound is returned when an archive has no manifest.json.
	ErrManifestNotFound = errors.New("manifest.json not found")
	// ErrEntryNotFound is returned when the manifest's entry script is missing.
	ErrEntryNotFound = errors.New("entry script not found")
	// ErrInvalidEntryPath is returned when the entry path leaves the archive.
	ErrInvalidEntryPath = errors.New("entry path escapes the plugin archive")
	// ErrUUIDMismatch is returned when encoded details and manifest disagree
	// on the plugin UUID.
	ErrUUIDMismatch = errors.New("encoded uuid does not match manifest uuid")
)

type (
	// Decoder turns EncodedPluginData into plugins.
	Decoder struct {
		host   *script.Host
		logger *log.Logger
	}

	// Option configures a Decoder.
	Option func(*Decoder)

	// DecodeError reports a malformed payload, a missing entry script or a
	// malformed action.
	DecodeError struct {
		ID        manifest.ID
		Namespace manifest.Namespace
		FileType  manifest.FileType
		Err       error
	}
)

// WithHost sets the script host used to evaluate entry scripts.
func WithHost(h *script.Host) Option {
	return func(d *Decoder) { d.host = h }
}

// WithLogger sets the decoder logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Decoder) { d.logger = l }
}

// New returns a Decoder.
func New(opts ...Option) *Decoder {
	d := &Decoder{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(d)
	}
	if d.host == nil {
		d.host = script.NewHost(script.WithLogger(d.logger))
	}
	return d
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s plugin %s:%s: %v", e.FileType, e.Namespace, e.ID, e.Err)
}

// Unwrap returns ErrDecode and the cause.
func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// Decode materializes enc. Decode failures are *DecodeError; a plugin whose
// decoded identity is invalid yields a *plugin.ValidationError.
func (d *Decoder) Decode(ctx context.Context, enc manifest.EncodedPluginData) (*plugin.Plugin, error) {
	fail := func(err error) error {
		return &DecodeError{ID: enc.ID, Namespace: enc.Namespace, FileType: enc.FileType, Err: err}
	}

	uri, err := manifest.ParseDataURI(enc.DataURI)
	if err != nil {
		return nil, fail(err)
	}

	var p *plugin.Plugin
	switch enc.FileType {
	case manifest.FileTypeJS:
		p, err = d.decodeScript(ctx, enc.PluginDetails, uri.Data)
	case manifest.FileTypeMCOUICPlugin:
		p, err = d.decodeArchive(ctx, enc.PluginDetails, uri.Data)
	default:
		err = &manifest.InvalidFileTypeError{Value: enc.FileType}
	}
	if err != nil {
		return nil, fail(err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	d.logger.Debug("decoded plugin", "plugin", p.Key(), "version", p.Version, "actions", len(p.Actions))
	return p, nil
}

func (d *Decoder) decodeScript(ctx context.Context, details manifest.PluginDetails, code []byte) (*plugin.Plugin, error) {
	actions, err := d.host.Load(ctx, script.Source{Path: string(details.ID) + ".js", Code: string(code)})
	if err != nil {
		return nil, err
	}
	return &plugin.Plugin{PluginDetails: details, Actions: actions}, nil
}

func (d *Decoder) decodeArchive(ctx context.Context, encoded manifest.PluginDetails, data []byte) (*plugin.Plugin, error) {
	pkg, err := vzip.Open(data)
	if err != nil {
		return nil, err
	}
	m, manifestPath, err := ReadManifest(pkg)
	if err != nil {
		return nil, err
	}
	if encoded.UUID != "" && !encoded.UUID.Equal(m.Header.UUID) {
		return nil, fmt.Errorf("%w: %s != %s", ErrUUIDMismatch, encoded.UUID, m.Header.UUID)
	}

	entryPath, err := EntryPath(manifestPath, m.Entry)
	if err != nil {
		return nil, err
	}
	code, err := pkg.ReadText(entryPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryPath)
	}
	actions, err := d.host.Load(ctx, script.Source{Path: entryPath, Code: code, Modules: pkg})
	if err != nil {
		return nil, err
	}

	details := m.Details()
	if details.IconDataURI == "" {
		details.IconDataURI = encoded.IconDataURI
	}
	return &plugin.Plugin{PluginDetails: details, Actions: actions}, nil
}

// ReadManifest finds and parses the shallowest manifest.json in pkg. Ties
// at the same depth go to the first in archive order.
func ReadManifest(pkg *vzip.FS) (*manifest.PluginManifest, string, error) {
	best, bestDepth := "", -1
	for _, p := range pkg.Paths() {
		if path.Base(p) != ManifestName || strings.HasSuffix(p, "/") {
			continue
		}
		depth := strings.Count(p, "/")
		if bestDepth < 0 || depth < bestDepth {
			best, bestDepth = p, depth
		}
	}
	if best == "" {
		return nil, "", ErrManifestNotFound
	}
	data, err := pkg.ReadBinary(best)
	if err != nil {
		return nil, "", err
	}
	m, err := manifest.ParsePluginManifest(data, best)
	if err != nil {
		return nil, "", err
	}
	return m, best, nil
}

// EntryPath resolves entry against the directory holding the manifest.
func EntryPath(manifestPath, entry string) (string, error) {
	if path.IsAbs(entry) || strings.Contains(entry, `\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, entry)
	}
	p := path.Clean(path.Join(path.Dir(manifestPath), entry))
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryPath, entry)
	}
	return p, nil
}
