// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/platform"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

const (
	// ArchiveSuffix is the file extension of packed plugins.
	ArchiveSuffix = ".mcouicplugin"
	// ScriptSuffix is the file extension of bare entry scripts.
	ScriptSuffix = ".js"
	// EncodedSuffix is the file extension of EncodedPluginData documents.
	EncodedSuffix = ".json"
	// DetailsSidecarSuffix names the details file that sits next to a bare
	// script: foo.js -> foo.plugin.json.
	DetailsSidecarSuffix = ".plugin.json"

	mimeJS  = "text/javascript"
	mimeZip = "application/zip"
)

// ErrUnsupportedFile is returned for files that are not a plugin format.
var ErrUnsupportedFile = errors.New("unsupported plugin file")

// IsPluginFile reports whether name has a loadable plugin extension.
func IsPluginFile(name string) bool {
	switch {
	case strings.HasSuffix(name, DetailsSidecarSuffix):
		return false
	case strings.HasSuffix(name, ArchiveSuffix), strings.HasSuffix(name, ScriptSuffix), strings.HasSuffix(name, EncodedSuffix):
		return true
	default:
		return false
	}
}

// EncodeFile reads a plugin from disk into its encoded form. Supported
// inputs are .mcouicplugin archives, bare .js scripts with a details
// sidecar, and .json EncodedPluginData documents.
func EncodeFile(name string) (*manifest.EncodedPluginData, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(name, ArchiveSuffix):
		return EncodeArchive(data, name)
	case strings.HasSuffix(name, DetailsSidecarSuffix):
		return nil, fmt.Errorf("%w: %s is a details sidecar", ErrUnsupportedFile, name)
	case strings.HasSuffix(name, ScriptSuffix):
		sidecar := strings.TrimSuffix(name, ScriptSuffix) + DetailsSidecarSuffix
		raw, err := os.ReadFile(sidecar)
		if err != nil {
			return nil, fmt.Errorf("script plugin %s needs details in %s: %w", name, sidecar, err)
		}
		details, err := manifest.ParsePluginDetails(raw, sidecar)
		if err != nil {
			return nil, err
		}
		return &manifest.EncodedPluginData{
			PluginDetails: *details,
			FileType:      manifest.FileTypeJS,
			DataURI:       manifest.EncodeDataURI(mimeJS, data),
		}, nil
	case strings.HasSuffix(name, EncodedSuffix):
		return manifest.ParseEncodedPluginData(data, name)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, name)
	}
}

// EncodeArchive wraps .mcouicplugin bytes, taking details from the embedded
// manifest.
func EncodeArchive(data []byte, name string) (*manifest.EncodedPluginData, error) {
	pkg, err := vzip.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	m, _, err := ReadManifest(pkg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &manifest.EncodedPluginData{
		PluginDetails: m.Details(),
		FileType:      manifest.FileTypeMCOUICPlugin,
		DataURI:       manifest.EncodeDataURI(mimeZip, data),
	}, nil
}

// Pack validates the plugin directory dir and writes it as a .mcouicplugin
// archive with paths relative to dir. An empty outputPath derives
// "<id>.mcouicplugin" in the working directory.
func Pack(dir, outputPath string) (archivePath string, err error) {
	if dir, err = filepath.Abs(dir); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return "", fmt.Errorf("read manifest: %w", err)
	}
	m, err := manifest.ParsePluginManifest(raw, ManifestName)
	if err != nil {
		return "", err
	}
	entry, err := EntryPath(ManifestName, m.Entry)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(entry))); err != nil {
		return "", fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
	}

	if outputPath == "" {
		outputPath = string(m.Header.ID) + ArchiveSuffix
	}
	absOutputPath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path: %w", err)
	}

	f, err := os.Create(absOutputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(absOutputPath)
		}
	}()

	zw := zip.NewWriter(f)
	walkErr := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() || p == absOutputPath {
			return nil
		}
		if err := platform.CheckPortablePath(filepath.ToSlash(rel)); err != nil {
			return err
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return fmt.Errorf("failed to read %s: %w", p, readErr)
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return infoErr
		}
		header, headerErr := zip.FileInfoHeader(info)
		if headerErr != nil {
			return headerErr
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate
		w, createErr := zw.CreateHeader(header)
		if createErr != nil {
			return fmt.Errorf("failed to create entry %s: %w", header.Name, createErr)
		}
		_, writeErr := w.Write(data)
		return writeErr
	})
	if walkErr != nil {
		_ = zw.Close()
		return "", fmt.Errorf("failed to pack plugin: %w", walkErr)
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return absOutputPath, nil
}
