// SPDX-License-Identifier: MPL-2.0

package decode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/oreui-customizer/oreui/internal/testutil"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/platform"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/script"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

const (
	testUUID  = "6f1c2e9a-3b47-4d2e-9a51-0c8e7f3d2b10"
	otherUUID = "0b6b7d7e-4a3f-4c1e-8d8b-2f7a9e1c5d33"

	testManifest = `{
	"format_version": 1,
	"header": {
		"name": "Demo Plugin",
		"id": "demo-plugin",
		"uuid": "6f1c2e9a-3b47-4d2e-9a51-0c8e7f3d2b10",
		"namespace": "example",
		"version": "1.2.0",
		"format_version": "1.0.0"
	},
	"entry": "scripts/index.js",
	"metadata": {"product_type": "plugin"}
}`

	testScript = `const { suffix } = require("./suffix");
module.exports = { plugin: { actions: [
	{ id: "append", context: "per_text_file", action: (content) => content + suffix },
	{ id: "finish", context: "global", action: (zip) => { zip.addText("done.txt", "ok"); } },
] } };`
)

func buildZip(t *testing.T, files map[string]string, order ...string) []byte {
	t.Helper()
	fs := vzip.New()
	for _, name := range order {
		if err := fs.InsertText(name, files[name]); err != nil {
			t.Fatal(err)
		}
	}
	b, err := fs.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func pluginArchive(t *testing.T, prefix, manifestJSON string) []byte {
	t.Helper()
	files := map[string]string{
		prefix + "manifest.json":       manifestJSON,
		prefix + "scripts/index.js":    testScript,
		prefix + "scripts/suffix.js":   `exports.suffix = "!";`,
		prefix + "other/manifest.json": `not json`,
	}
	return buildZip(t, files,
		prefix+"other/manifest.json", prefix+"scripts/index.js", prefix+"scripts/suffix.js", prefix+"manifest.json")
}

func details() manifest.PluginDetails {
	return manifest.PluginDetails{
		Name:          "Demo Plugin",
		ID:            "demo-plugin",
		UUID:          testUUID,
		Namespace:     "example",
		Version:       "1.2.0",
		FormatVersion: "1.0.0",
	}
}

func encoded(ft manifest.FileType, mime string, payload []byte) manifest.EncodedPluginData {
	return manifest.EncodedPluginData{
		PluginDetails: details(),
		FileType:      ft,
		DataURI:       manifest.EncodeDataURI(mime, payload),
	}
}

func runText(t *testing.T, p *plugin.Plugin, content string) string {
	t.Helper()
	actions := p.ActionsFor(plugin.ContextPerTextFile)
	if len(actions) != 1 {
		t.Fatalf("per_text_file actions = %d, want 1", len(actions))
	}
	out, err := actions[0].(plugin.PerTextFileAction).Fn(context.Background(), content, nil, vzip.New())
	if err != nil {
		t.Fatalf("action error: %v", err)
	}
	return out
}

func TestDecode_Script(t *testing.T) {
	t.Parallel()

	code := `module.exports = { actions: [ { id: "x", context: "per_text_file", action: (c) => c + "x" } ] };`
	p, err := New().Decode(t.Context(), encoded(manifest.FileTypeJS, "text/javascript", []byte(code)))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if p.Key() != "example:demo-plugin" || p.BuiltIn {
		t.Errorf("plugin = %+v", p.PluginDetails)
	}
	if got := runText(t, p, "a"); got != "ax" {
		t.Errorf("action = %q", got)
	}
}

func TestDecode_Archive(t *testing.T) {
	t.Parallel()

	for _, prefix := range []string{"", "demo/"} {
		t.Run("prefix="+prefix, func(t *testing.T) {
			t.Parallel()
			enc := encoded(manifest.FileTypeMCOUICPlugin, "application/zip", pluginArchive(t, prefix, testManifest))
			p, err := New(WithHost(script.NewHost())).Decode(t.Context(), enc)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if len(p.Actions) != 2 || p.Actions[1].Context() != plugin.ContextGlobal {
				t.Fatalf("actions = %v", p.Actions)
			}
			if got := runText(t, p, "a"); got != "a!" {
				t.Errorf("action = %q", got)
			}
			if p.Metadata == nil || p.Metadata.ProductType != "plugin" {
				t.Errorf("metadata = %+v", p.Metadata)
			}
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	t.Parallel()

	archive := func(t *testing.T, m string) []byte { return pluginArchive(t, "", m) }
	tests := []struct {
		name    string
		enc     func(t *testing.T) manifest.EncodedPluginData
		wantErr error
	}{
		{"malformed envelope", func(t *testing.T) manifest.EncodedPluginData {
			e := encoded(manifest.FileTypeJS, "text/javascript", nil)
			e.DataURI = "data:text/javascript,plain"
			return e
		}, manifest.ErrInvalidDataURI},
		{"unknown file type", func(t *testing.T) manifest.EncodedPluginData {
			return encoded("zip", "application/zip", []byte("x"))
		}, manifest.ErrInvalidFileType},
		{"not a zip", func(t *testing.T) manifest.EncodedPluginData {
			return encoded(manifest.FileTypeMCOUICPlugin, "application/zip", []byte("nope"))
		}, vzip.ErrInvalidArchive},
		{"no manifest", func(t *testing.T) manifest.EncodedPluginData {
			b := buildZip(t, map[string]string{"index.js": testScript}, "index.js")
			return encoded(manifest.FileTypeMCOUICPlugin, "application/zip", b)
		}, ErrManifestNotFound},
		{"format version 2", func(t *testing.T) manifest.EncodedPluginData {
			m := strings.Replace(testManifest, `"format_version": 1`, `"format_version": 2`, 1)
			return encoded(manifest.FileTypeMCOUICPlugin, "application/zip", archive(t, m))
		}, manifest.ErrInvalidManifest},
		{"missing entry", func(t *testing.T) manifest.EncodedPluginData {
			m := strings.Replace(testManifest, "scripts/index.js", "scripts/main.js", 1)
			return encoded(manifest.FileTypeMCOUICPlugin, "application/zip", archive(t, m))
		}, ErrEntryNotFound},
		{"escaping entry", func(t *testing.T) manifest.EncodedPluginData {
			m := strings.Replace(testManifest, "scripts/index.js", "../index.js", 1)
			return encoded(manifest.FileTypeMCOUICPlugin, "application/zip", archive(t, m))
		}, ErrInvalidEntryPath},
		{"uuid mismatch", func(t *testing.T) manifest.EncodedPluginData {
			e := encoded(manifest.FileTypeMCOUICPlugin, "application/zip", archive(t, testManifest))
			e.UUID = otherUUID
			return e
		}, ErrUUIDMismatch},
		{"unknown context", func(t *testing.T) manifest.EncodedPluginData {
			code := `module.exports = { actions: [ { id: "x", context: "per_file", action: (c) => c } ] };`
			return encoded(manifest.FileTypeJS, "text/javascript", []byte(code))
		}, script.ErrInvalidAction},
		{"shape mismatch", func(t *testing.T) manifest.EncodedPluginData {
			code := `module.exports = { actions: [ { id: "x", context: "global", action: (c, f, zip) => c } ] };`
			return encoded(manifest.FileTypeJS, "text/javascript", []byte(code))
		}, script.ErrInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New().Decode(t.Context(), tt.enc(t))
			if !errors.Is(err, ErrDecode) || !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode() error = %v, want ErrDecode and %v", err, tt.wantErr)
			}
			var de *DecodeError
			if !errors.As(err, &de) || de.ID != "demo-plugin" {
				t.Errorf("error does not carry plugin identity: %v", err)
			}
		})
	}
}

func TestDecode_ReservedNamespace(t *testing.T) {
	t.Parallel()

	code := `module.exports = { actions: [] };`
	enc := encoded(manifest.FileTypeJS, "text/javascript", []byte(code))
	enc.Namespace = manifest.ReservedNamespace
	_, err := New().Decode(t.Context(), enc)
	if !errors.Is(err, plugin.ErrValidation) || !errors.Is(err, manifest.ErrReservedNamespace) {
		t.Fatalf("Decode() error = %v, want reserved namespace validation error", err)
	}
}

func TestEntryPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		manifest, entry, want string
		wantErr               bool
	}{
		{"manifest.json", "index.js", "index.js", false},
		{"manifest.json", "./scripts/index.js", "scripts/index.js", false},
		{"pkg/manifest.json", "scripts/../index.js", "pkg/index.js", false},
		{"pkg/manifest.json", "../index.js", "index.js", false},
		{"manifest.json", "../index.js", "", true},
		{"manifest.json", "/index.js", "", true},
		{"manifest.json", ".", "", true},
		{"manifest.json", `scripts\index.js`, "", true},
	}
	for _, tt := range tests {
		got, err := EntryPath(tt.manifest, tt.entry)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("EntryPath(%q, %q) = %q, %v", tt.manifest, tt.entry, got, err)
		}
	}
}

func TestPackAndEncodeFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "demo")
	testutil.WriteFile(t, filepath.Join(src, "manifest.json"), testManifest)
	testutil.WriteFile(t, filepath.Join(src, "scripts", "index.js"), testScript)
	testutil.WriteFile(t, filepath.Join(src, "scripts", "suffix.js"), `exports.suffix = "?";`)

	out, err := Pack(src, filepath.Join(dir, "demo"+ArchiveSuffix))
	if err != nil {
		t.Fatalf("Pack() error: %v", err)
	}
	enc, err := EncodeFile(out)
	if err != nil {
		t.Fatalf("EncodeFile() error: %v", err)
	}
	if enc.FileType != manifest.FileTypeMCOUICPlugin || enc.UUID != testUUID {
		t.Errorf("encoded = %+v", enc.PluginDetails)
	}
	p, err := New().Decode(t.Context(), *enc)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got := runText(t, p, "a"); got != "a?" {
		t.Errorf("action = %q", got)
	}

	if _, err := Pack(filepath.Join(dir, "missing"), ""); err == nil {
		t.Error("Pack() of a directory without manifest should fail")
	}
}

func TestPack_RejectsNonPortableNames(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == platform.Windows {
		t.Skip("reserved names cannot be created on Windows")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "demo")
	testutil.WriteFile(t, filepath.Join(src, "manifest.json"), testManifest)
	testutil.WriteFile(t, filepath.Join(src, "scripts", "index.js"), testScript)
	testutil.WriteFile(t, filepath.Join(src, "scripts", "suffix.js"), `exports.suffix = "?";`)
	testutil.WriteFile(t, filepath.Join(src, "scripts", "aux.js"), "")

	out := filepath.Join(dir, "demo"+ArchiveSuffix)
	if _, err := Pack(src, out); !errors.Is(err, platform.ErrNotPortable) {
		t.Fatalf("Pack() error = %v, want ErrNotPortable", err)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Error("failed Pack() should not leave an archive behind")
	}
}

func TestEncodeFile_ScriptWithSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	js := filepath.Join(dir, "mark.js")
	testutil.WriteFile(t, js, `module.exports = { actions: [ { id: "m", context: "per_text_file", action: (c) => c + "m" } ] };`)

	if _, err := EncodeFile(js); err == nil {
		t.Fatal("EncodeFile() without sidecar should fail")
	}
	testutil.WriteFile(t, filepath.Join(dir, "mark"+DetailsSidecarSuffix), `{
		"name": "Mark", "id": "mark", "uuid": "`+testUUID+`", "namespace": "example",
		"version": "0.1.0", "format_version": "1.0.0"
	}`)
	enc, err := EncodeFile(js)
	if err != nil {
		t.Fatalf("EncodeFile() error: %v", err)
	}
	if enc.FileType != manifest.FileTypeJS || enc.ID != "mark" {
		t.Errorf("encoded = %+v", enc.PluginDetails)
	}
	if !IsPluginFile(js) || IsPluginFile(filepath.Join(dir, "mark"+DetailsSidecarSuffix)) {
		t.Error("IsPluginFile misclassified script or sidecar")
	}
}
