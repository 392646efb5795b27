// SPDX-License-Identifier: MPL-2.0

package builtin

import (
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/settings"
)

// uuidNamespace prefixes the names built-in UUIDs are derived from.
const uuidNamespace = "oreui-customizer:built-in:"

// Definition describes one built-in plugin.
type Definition struct {
	ID          manifest.ID
	Name        string
	Description string
	// Enabled reports whether the settings turn the plugin on.
	Enabled func(*settings.Settings) bool
	// Actions builds the plugin's actions for the settings.
	Actions func(*settings.Settings) []plugin.Action
}

var catalog = []Definition{
	{
		ID:          "color-replacements",
		Name:        "Color Replacements",
		Description: "Replaces UI color tokens in stylesheets, scripts and HTML.",
		Enabled:     func(s *settings.Settings) bool { return len(s.ChangedColors()) > 0 },
		Actions:     colorActions,
	},
	{
		ID:          "generator-type-dropdown",
		Name:        "Generator Type Dropdown",
		Description: "Adds a world generator type dropdown to the create and edit world screens.",
		Enabled:     func(s *settings.Settings) bool { return s.AddGeneratorTypeDropdown },
		Actions:     scriptFeature("generator-type-dropdown"),
	},
	{
		ID:          "more-default-game-modes",
		Name:        "More Default Game Modes",
		Description: "Adds the Default and Spectator options to the game mode dropdown.",
		Enabled:     func(s *settings.Settings) bool { return s.AddMoreDefaultGameModes },
		Actions:     patchFeature("more-default-game-modes"),
	},
	{
		ID:          "seed-change-unlock",
		Name:        "Seed Change Unlock",
		Description: "Keeps the world seed field editable.",
		Enabled:     func(s *settings.Settings) bool { return s.AllowForChangingSeeds },
		Actions:     patchFeature("seed-change-unlock"),
	},
	{
		ID:          "flat-world-preset-unlock",
		Name:        "Flat World Preset Unlock",
		Description: "Keeps the flat world preset selectable after world creation.",
		Enabled:     func(s *settings.Settings) bool { return s.AllowForChangingFlatWorldPreset },
		Actions:     patchFeature("flat-world-preset-unlock"),
	},
	{
		ID:          "debug-tab",
		Name:        "Debug Tab",
		Description: "Adds the Debug tab to the create and edit world screens.",
		Enabled:     func(s *settings.Settings) bool { return s.AddDebugTab },
		Actions:     scriptFeature("debug-tab"),
	},
	{
		ID:          "max-text-length",
		Name:        "Max Text Length Override",
		Description: "Overrides the max length of every text box.",
		Enabled: func(s *settings.Settings) bool {
			_, ok := s.MaxTextLength()
			return ok
		},
		Actions: maxTextLengthActions,
	},
	{
		ID:          "hardcore-toggle-unlock",
		Name:        "Hardcore Toggle Unlock",
		Description: "Lets hardcore mode be switched on and off at any time.",
		Enabled:     func(s *settings.Settings) bool { return s.HardcoreModeToggleAlwaysClickable },
		Actions:     patchFeature("hardcore-toggle-unlock"),
	},
	{
		ID:          "experimental-toggle-unlock",
		Name:        "Experimental Toggle Unlock",
		Description: "Lets enabled experimental toggles be turned off again.",
		Enabled:     func(s *settings.Settings) bool { return s.AllowDisablingEnabledExperimentalToggles },
		Actions:     patchFeature("experimental-toggle-unlock"),
	},
	{
		ID:          "utilities-menu-button",
		Name:        "Utilities Menu Button",
		Description: "Adds a title bar button that opens the utilities menu.",
		Enabled:     func(s *settings.Settings) bool { return s.AddUtilitiesMainMenuButton },
		Actions:     scriptFeature("utilities-menu-button"),
	},
	{
		ID:          manifest.ID(settings.AddExactPingCount),
		Name:        "Exact Ping Count",
		Description: "Shows the exact ping of each server on the servers tab.",
		Enabled:     func(s *settings.Settings) bool { return s.BuiltInPluginEnabled(settings.AddExactPingCount) },
		Actions:     scriptFeature(string(settings.AddExactPingCount)),
	},
	{
		ID:          manifest.ID(settings.AddMaxPlayerCount),
		Name:        "Max Player Count",
		Description: "Shows the player limit of each server on the servers tab.",
		Enabled:     func(s *settings.Settings) bool { return s.BuiltInPluginEnabled(settings.AddMaxPlayerCount) },
		Actions:     scriptFeature(string(settings.AddMaxPlayerCount)),
	},
	{
		ID:          manifest.ID(settings.FacetSpy),
		Name:        "Facet Spy",
		Description: "Adds an overlay that lists the UI facets and their values.",
		Enabled:     func(s *settings.Settings) bool { return s.BuiltInPluginEnabled(settings.FacetSpy) },
		Actions:     scriptFeature(string(settings.FacetSpy)),
	},
}

// Catalog returns every built-in definition in activation order.
func Catalog() []Definition {
	return append([]Definition(nil), catalog...)
}

// UUID returns the reserved UUID of the built-in plugin id.
func UUID(id manifest.ID) manifest.UUID {
	return manifest.NameUUID(uuidNamespace + string(id))
}

// Plugins returns the built-in plugins enabled by s, in catalog order.
func Plugins(s *settings.Settings) []*plugin.Plugin {
	var out []*plugin.Plugin
	for _, def := range catalog {
		if def.Enabled(s) {
			out = append(out, def.Plugin(s))
		}
	}
	return out
}

// Plugin builds the plugin for def under settings s.
func (def Definition) Plugin(s *settings.Settings) *plugin.Plugin {
	return &plugin.Plugin{
		PluginDetails: manifest.PluginDetails{
			Name:          def.Name,
			ID:            def.ID,
			UUID:          UUID(def.ID),
			Namespace:     manifest.ReservedNamespace,
			Description:   def.Description,
			Version:       plugin.EngineVersion,
			FormatVersion: "1.0.0",
		},
		Actions: def.Actions(s),
		BuiltIn: true,
	}
}
