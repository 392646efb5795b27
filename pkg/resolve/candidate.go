// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/semver"
)

const (
	// KindPlugin is a plugin, built-in or user supplied.
	KindPlugin Kind = "plugin"
	// KindTheme is a theme manifest.
	KindTheme Kind = "theme"
	// KindConfig is the active settings file.
	KindConfig Kind = "config"
)

type (
	// Kind is the product type of a candidate.
	Kind string

	// Candidate is one package taking part in resolution.
	Candidate struct {
		Kind             Kind
		Name             string
		ID               manifest.ID
		Namespace        manifest.Namespace
		UUID             manifest.UUID
		Version          semver.Version
		MinEngineVersion semver.Version
		Dependencies     []manifest.Dependency
		BuiltIn          bool
		// Plugin is set for plugin candidates and carried through to the
		// activation list.
		Plugin *plugin.Plugin
	}
)

// FromPlugin makes a candidate of p.
func FromPlugin(p *plugin.Plugin) Candidate {
	return Candidate{
		Kind:             KindPlugin,
		Name:             p.Name,
		ID:               p.ID,
		Namespace:        p.Namespace,
		UUID:             p.UUID,
		Version:          p.Version,
		MinEngineVersion: p.MinEngineVersion,
		Dependencies:     p.Dependencies,
		BuiltIn:          p.BuiltIn,
		Plugin:           p,
	}
}

// FromTheme makes a candidate of a theme manifest.
func FromTheme(m *manifest.ThemeManifest) Candidate {
	return Candidate{
		Kind:         KindTheme,
		Name:         m.Header.Name,
		ID:           m.Header.ID,
		UUID:         m.Header.UUID,
		Version:      m.Header.Version,
		Dependencies: m.Dependencies,
	}
}

// FromConfig makes a candidate of config metadata. Unset identity fields
// must be filled before resolution.
func FromConfig(c *manifest.ConfigMetadata) Candidate {
	return Candidate{
		Kind:         KindConfig,
		Name:         c.Name,
		ID:           c.ID,
		UUID:         c.UUID,
		Version:      c.Version,
		Dependencies: c.Dependencies,
	}
}

// Label is the diagnostic identity of c: "namespace:id", "kind:id" or,
// for packages without an id, "kind:name".
func (c Candidate) Label() string {
	if c.Namespace != "" {
		return string(c.Namespace) + ":" + string(c.ID)
	}
	if c.ID == "" {
		return string(c.Kind) + ":" + c.Name
	}
	return string(c.Kind) + ":" + string(c.ID)
}
