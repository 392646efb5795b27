// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"cmp"
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/settings"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

const (
	// scriptFiles selects the compiled UI bundles.
	scriptFiles = "**/*.js"
	// styledFiles selects every file that can carry a color token.
	styledFiles = "**/*.{css,js,html}"
)

// rule is a regular expression rewrite limited to paths matching files.
type rule struct {
	files   string
	pattern *regexp.Regexp
	replace string
}

// unlock keeps a disabled flag false on the object whose key matches key.
func unlock(key string) rule {
	return rule{
		files:   scriptFiles,
		pattern: regexp.MustCompile(`(\b` + key + `\b[^;{}]{0,400}?\bdisabled:\s*)(?:[^,}]+)`),
		replace: "${1}false",
	}
}

var rules = map[string][]rule{
	"more-default-game-modes": {{
		files:   scriptFiles,
		pattern: regexp.MustCompile(`\[\s*([A-Za-z_$][\w$]*)\.SURVIVAL\s*,\s*([A-Za-z_$][\w$]*)\.CREATIVE\s*,\s*([A-Za-z_$][\w$]*)\.ADVENTURE\s*\]`),
		replace: "[$1.SURVIVAL,$2.CREATIVE,$3.ADVENTURE,$1.DEFAULT,$1.SPECTATOR]",
	}},
	"seed-change-unlock":         {unlock(`seedTextField`), unlock(`seedRandomizeButton`)},
	"flat-world-preset-unlock":   {unlock(`flatWorldPreset`)},
	"hardcore-toggle-unlock":     {unlock(`hardcoreModeToggle`)},
	"experimental-toggle-unlock": {unlock(`experimentalToggle`)},
}

// apply runs every rule that matches name over content.
func apply(rules []rule, name, content string) string {
	for _, r := range rules {
		if ok, _ := doublestar.Match(r.files, name); ok {
			content = r.pattern.ReplaceAllString(content, r.replace)
		}
	}
	return content
}

// rulesAction wraps rules in a per text file action.
func rulesAction(id string, rs []rule) plugin.PerTextFileAction {
	return plugin.PerTextFileAction{
		ID: id,
		Fn: func(_ context.Context, content string, entry *vzip.Entry, _ *vzip.FS) (string, error) {
			return apply(rs, entry.Name(), content), nil
		},
	}
}

func patchFeature(id string) func(*settings.Settings) []plugin.Action {
	rs, ok := rules[id]
	if !ok {
		panic("builtin: no rules for " + id)
	}
	return func(*settings.Settings) []plugin.Action {
		return []plugin.Action{rulesAction("patch", rs)}
	}
}

var maxLengthPattern = regexp.MustCompile(`\bmaxLength:\s*\d+`)

func maxTextLengthActions(s *settings.Settings) []plugin.Action {
	n, ok := s.MaxTextLength()
	if !ok {
		return nil
	}
	return []plugin.Action{rulesAction("override-max-length", []rule{{
		files:   scriptFiles,
		pattern: maxLengthPattern,
		replace: "maxLength:" + strconv.Itoa(n),
	}})}
}

// colorReplacer builds a single pass replacer for the changed colors.
// Longer tokens are tried first at each position so a token is never
// shadowed by one of its prefixes.
func colorReplacer(changed map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, changed[k])
	}
	return strings.NewReplacer(pairs...)
}

func colorActions(s *settings.Settings) []plugin.Action {
	changed := s.ChangedColors()
	if len(changed) == 0 {
		return nil
	}
	r := colorReplacer(changed)
	return []plugin.Action{plugin.PerTextFileAction{
		ID: "replace-colors",
		Fn: func(_ context.Context, content string, entry *vzip.Entry, _ *vzip.FS) (string, error) {
			if ok, _ := doublestar.Match(styledFiles, entry.Name()); !ok {
				return content, nil
			}
			return r.Replace(content), nil
		},
	}}
}
