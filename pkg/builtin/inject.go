// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"context"
	"embed"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/settings"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

const (
	documentFiles = "**/*.html"
	// assetDir is created next to every HTML document and holds the
	// injected scripts.
	assetDir = "oreui-customizer"
)

//go:embed assets/*.js
var assets embed.FS

// Asset returns the embedded script of the named feature.
func Asset(name string) ([]byte, bool) {
	b, err := assets.ReadFile("assets/" + name + ".js")
	return b, err == nil
}

// scriptTag is the element that loads src from an HTML document.
func scriptTag(src string) string {
	return `<script defer src="` + src + `"></script>`
}

// injectTag adds tag before </head>, or at the end of the document when it
// has no head. Documents that already carry the tag are returned unchanged.
func injectTag(doc, tag string) string {
	if strings.Contains(doc, tag) {
		return doc
	}
	if i := strings.LastIndex(strings.ToLower(doc), "</head>"); i >= 0 {
		return doc[:i] + tag + doc[i:]
	}
	return doc + tag
}

// scriptFeature installs the feature's asset beside every HTML document and
// references it from the document.
func scriptFeature(name string) func(*settings.Settings) []plugin.Action {
	script, ok := Asset(name)
	if !ok {
		panic("builtin: no asset for " + name)
	}
	rel := assetDir + "/" + name + ".js"
	return func(*settings.Settings) []plugin.Action {
		return []plugin.Action{
			plugin.GlobalBeforeAction{
				ID: "install-script",
				Fn: func(_ context.Context, fs *vzip.FS) error {
					for _, p := range fs.Paths() {
						if ok, _ := doublestar.Match(documentFiles, p); !ok {
							continue
						}
						target := path.Join(path.Dir(p), rel)
						if fs.Exists(target) {
							continue
						}
						if err := fs.Insert(target, script); err != nil {
							return err
						}
					}
					return nil
				},
			},
			plugin.PerTextFileAction{
				ID: "inject-script-tag",
				Fn: func(_ context.Context, content string, entry *vzip.Entry, _ *vzip.FS) (string, error) {
					if ok, _ := doublestar.Match(documentFiles, entry.Name()); !ok {
						return content, nil
					}
					return injectTag(content, scriptTag(rel)), nil
				},
			},
		}
	}
}
