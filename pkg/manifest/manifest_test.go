// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

const testUUID = "6f1c2e9a-3b47-4d2e-9a51-0c8e7f3d2b10"

const validPluginManifest = `{
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
	"dependencies": [{"module_name": "facet-spy", "version": "1.0.0"}],
	"metadata": {"product_type": "plugin", "authors": ["someone"]}
}`

func TestParsePluginManifest(t *testing.T) {
	t.Parallel()

	m, err := ParsePluginManifest([]byte(validPluginManifest), "manifest.json")
	if err != nil {
		t.Fatalf("ParsePluginManifest() error: %v", err)
	}
	if m.Entry != "scripts/index.js" {
		t.Errorf("Entry = %q", m.Entry)
	}
	d := m.Details()
	if d.ID != "demo-plugin" || d.Namespace != "example" || d.Version != "1.2.0" {
		t.Errorf("Details() = %+v", d)
	}
	if len(d.Dependencies) != 1 || !d.Dependencies[0].IsModule() {
		t.Errorf("Dependencies = %+v", d.Dependencies)
	}
	if _, ok := d.UpdateSource().(NoUpdateSource); !ok {
		t.Errorf("UpdateSource() = %T, want NoUpdateSource", d.UpdateSource())
	}
}

func TestParsePluginManifest_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		replace [2]string
	}{
		{"format version 2", [2]string{`"format_version": 1,`, `"format_version": 2,`}},
		{"missing entry", [2]string{`"entry": "scripts/index.js",`, ``}},
		{"v prefixed version", [2]string{`"version": "1.2.0"`, `"version": "v1.2.0"`}},
		{"reserved namespace", [2]string{`"namespace": "example"`, `"namespace": "built-in"`}},
		{"bad id characters", [2]string{`"id": "demo-plugin"`, `"id": "demo plugin"`}},
		{"bad uuid", [2]string{`"uuid": "6f1c2e9a-3b47-4d2e-9a51-0c8e7f3d2b10"`, `"uuid": "not-a-uuid"`}},
		{"wrong product type", [2]string{`"product_type": "plugin"`, `"product_type": "theme"`}},
		{"both update sources", [2]string{`"entry":`, `"marketplaceDetails": {"marketplaceId": "a", "originalDownloadURL": "b", "marketplaceURL": "c"}, "checkForUpdatesDetails": {"versionInfoURL": "https://example.com/v.json"}, "entry":`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := strings.Replace(validPluginManifest, tt.replace[0], tt.replace[1], 1)
			if doc == validPluginManifest {
				t.Fatalf("replacement %q did not apply", tt.replace[0])
			}
			_, err := ParsePluginManifest([]byte(doc), "manifest.json")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidManifest) {
				t.Errorf("error should wrap ErrInvalidManifest, got %v", err)
			}
		})
	}
}

func TestMetadata_ExtraKeysSurvive(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(validPluginManifest,
		`"metadata": {"product_type": "plugin", "authors": ["someone"]}`,
		`"metadata": {"product_type": "plugin", "authors": ["someone"], "homepage": "https://example.com", "tags": ["ui", "dark"]}`, 1)
	m, err := ParsePluginManifest([]byte(doc), "manifest.json")
	if err != nil {
		t.Fatalf("ParsePluginManifest() error: %v", err)
	}
	d := m.Details()
	if len(d.Metadata.Authors) != 1 || d.Metadata.ProductType != "plugin" {
		t.Errorf("Metadata = %+v", d.Metadata)
	}
	if len(d.Metadata.Extra) != 2 || string(d.Metadata.Extra["homepage"]) != `"https://example.com"` {
		t.Fatalf("Extra = %v", d.Metadata.Extra)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var back PluginDetails
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if string(back.Metadata.Extra["tags"]) != `["ui","dark"]` || back.Metadata.Authors[0] != "someone" {
		t.Errorf("exported metadata lost keys: %s", out)
	}
}

func TestMetadata_KnownKeysWinOverExtra(t *testing.T) {
	t.Parallel()

	m := Metadata{License: "MIT", Extra: map[string]json.RawMessage{"license": json.RawMessage(`"GPL"`)}}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(out) != `{"license":"MIT"}` {
		t.Errorf("Marshal() = %s", out)
	}
}

func TestParseThemeManifest(t *testing.T) {
	t.Parallel()

	doc := `{
		"format_version": 1,
		"header": {"name": "Blue", "id": "blue", "uuid": "` + testUUID + `", "version": "0.1.0", "format_version": "1.0.0"},
		"dependencies": [{"uuid": "` + testUUID + `", "version": "1.0.0"}],
		"metadata": {"product_type": "theme"},
		"checkForUpdatesDetails": {"versionInfoURL": "https://example.com/theme.json"}
	}`
	m, err := ParseThemeManifest([]byte(doc), "theme.json")
	if err != nil {
		t.Fatalf("ParseThemeManifest() error: %v", err)
	}
	src, ok := m.UpdateSource().(CheckForUpdatesSource)
	if !ok || src.Details.VersionInfoURL != "https://example.com/theme.json" {
		t.Errorf("UpdateSource() = %#v", m.UpdateSource())
	}

	moduleDep := strings.Replace(doc, `{"uuid": "`+testUUID+`", "version": "1.0.0"}`, `{"module_name": "facet-spy", "version": "1.0.0"}`, 1)
	if _, err := ParseThemeManifest([]byte(moduleDep), "theme.json"); err == nil {
		t.Error("themes should only accept uuid dependencies")
	}
}

func TestParseEncodedPluginData(t *testing.T) {
	t.Parallel()

	doc := `{
		"name": "Inline", "id": "inline", "uuid": "` + testUUID + `", "namespace": "example",
		"version": "1.0.0", "format_version": "1.0.0",
		"fileType": "js",
		"dataURI": "` + EncodeDataURI("text/javascript", []byte("exports.plugin = {actions: []};")) + `"
	}`
	e, err := ParseEncodedPluginData([]byte(doc), "inline.json")
	if err != nil {
		t.Fatalf("ParseEncodedPluginData() error: %v", err)
	}
	if e.FileType != FileTypeJS || e.Name != "Inline" {
		t.Errorf("decoded = %+v", e)
	}

	bad := strings.Replace(doc, `"fileType": "js"`, `"fileType": "zip"`, 1)
	if _, err := ParseEncodedPluginData([]byte(bad), "inline.json"); err == nil {
		t.Error("unknown file type should be rejected")
	}
}

func TestNewUpdateSource(t *testing.T) {
	t.Parallel()

	m := &MarketplaceDetails{MarketplaceID: "x"}
	c := &CheckForUpdatesDetails{VersionInfoURL: "https://example.com"}

	if _, err := NewUpdateSource(m, c); !errors.Is(err, ErrConflictingUpdateSources) {
		t.Errorf("both set: got %v, want ErrConflictingUpdateSources", err)
	}
	if src, _ := NewUpdateSource(nil, nil); src != (NoUpdateSource{}) {
		t.Errorf("none set: got %#v", src)
	}
	src, _ := NewUpdateSource(m, nil)
	gotM, gotC := UpdateFields(src)
	if gotM == nil || gotM.MarketplaceID != "x" || gotC != nil {
		t.Errorf("UpdateFields(marketplace) = %v, %v", gotM, gotC)
	}
}

func TestConfigMetadata_IsValid(t *testing.T) {
	t.Parallel()

	if ok, errs := (ConfigMetadata{}).IsValid(); !ok {
		t.Errorf("empty metadata should be valid: %v", errs)
	}
	bad := ConfigMetadata{UUID: "nope", Version: "1.0"}
	ok, errs := bad.IsValid()
	if ok || len(errs) != 2 {
		t.Errorf("IsValid() = %v, %v; want false with 2 errors", ok, errs)
	}
}
