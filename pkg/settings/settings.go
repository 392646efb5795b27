// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
)

const (
	// AddExactPingCount shows the exact ping on the servers tab.
	AddExactPingCount BuiltInPluginID = "add-exact-ping-count-to-servers-tab"
	// AddMaxPlayerCount shows the player limit on the servers tab.
	AddMaxPlayerCount BuiltInPluginID = "add-max-player-count-to-servers-tab"
	// FacetSpy adds a facet inspection overlay.
	FacetSpy BuiltInPluginID = "facet-spy"
)

// ErrInvalidSettings is returned for settings that fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

type (
	// BuiltInPluginID names a built-in plugin that settings can toggle.
	BuiltInPluginID string

	// Settings is the customizer settings record.
	Settings struct {
		HardcoreModeToggleAlwaysClickable        bool                     `json:"hardcoreModeToggleAlwaysClickable"`
		AllowDisablingEnabledExperimentalToggles bool                     `json:"allowDisablingEnabledExperimentalToggles"`
		AddGeneratorTypeDropdown                 bool                     `json:"addGeneratorTypeDropdown"`
		AddMoreDefaultGameModes                  bool                     `json:"addMoreDefaultGameModes"`
		AllowForChangingSeeds                    bool                     `json:"allowForChangingSeeds"`
		AllowForChangingFlatWorldPreset          bool                     `json:"allowForChangingFlatWorldPreset"`
		MaxTextLengthOverride                    string                   `json:"maxTextLengthOverride"`
		AddDebugTab                              bool                     `json:"addDebugTab"`
		AddUtilitiesMainMenuButton               bool                     `json:"add8CrafterUtilitiesMainMenuButton"`
		EnabledBuiltInPlugins                    map[BuiltInPluginID]bool `json:"enabledBuiltInPlugins"`
		ColorReplacements                        map[string]string        `json:"colorReplacements"`

		// Plugins are encoded plugins to apply.
		Plugins                             []manifest.EncodedPluginData `json:"plugins,omitempty"`
		BundleEncodedPluginDataInConfigFile bool                         `json:"bundleEncodedPluginDataInConfigFile,omitempty"`
		// ActivePluginsDetails names active plugins by identity, for exports
		// that do not bundle plugin data.
		ActivePluginsDetails []manifest.PluginDetails `json:"activePluginsDetails,omitempty"`
		// PreloadedPlugins are plugins already materialized by the caller.
		PreloadedPlugins []*plugin.Plugin `json:"-"`
	}
)

// BuiltInPluginIDs returns the toggleable built-in plugins in a stable order.
func BuiltInPluginIDs() []BuiltInPluginID {
	return []BuiltInPluginID{AddExactPingCount, AddMaxPlayerCount, FacetSpy}
}

// Defaults returns settings with every documented default applied: all
// feature toggles on, no text length override, identity color replacements,
// the servers-tab built-in plugins on and facet-spy off.
func Defaults() Settings {
	colors := make(map[string]string, len(colorKeys))
	for _, k := range colorKeys {
		colors[k] = k
	}
	return Settings{
		HardcoreModeToggleAlwaysClickable:        true,
		AllowDisablingEnabledExperimentalToggles: true,
		AddGeneratorTypeDropdown:                 true,
		AddMoreDefaultGameModes:                  true,
		AllowForChangingSeeds:                    true,
		AllowForChangingFlatWorldPreset:          true,
		AddDebugTab:                              true,
		AddUtilitiesMainMenuButton:               true,
		EnabledBuiltInPlugins: map[BuiltInPluginID]bool{
			AddExactPingCount: true,
			AddMaxPlayerCount: true,
			FacetSpy:          false,
		},
		ColorReplacements: colors,
	}
}

// MaxTextLength returns the parsed override and whether one is set.
func (s *Settings) MaxTextLength() (int, bool) {
	if s.MaxTextLengthOverride == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s.MaxTextLengthOverride)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ChangedColors returns the replacements whose value differs from the key.
func (s *Settings) ChangedColors() map[string]string {
	out := make(map[string]string)
	for k, v := range s.ColorReplacements {
		if k != v {
			out[k] = v
		}
	}
	return out
}

// BuiltInPluginEnabled reports whether a toggleable built-in plugin is on.
func (s *Settings) BuiltInPluginEnabled(id BuiltInPluginID) bool {
	return s.EnabledBuiltInPlugins[id]
}

// Validate checks the fields the schema cannot: numeric range of the text
// length override, color keys, built-in ids and encoded plugin payloads.
func (s *Settings) Validate() error {
	var errs []error
	if s.MaxTextLengthOverride != "" {
		if _, ok := s.MaxTextLength(); !ok {
			errs = append(errs, fmt.Errorf("maxTextLengthOverride %q is not a non-negative integer", s.MaxTextLengthOverride))
		}
	}
	for _, k := range slices.Sorted(maps.Keys(s.ColorReplacements)) {
		if !IsColorKey(k) {
			errs = append(errs, fmt.Errorf("colorReplacements: unknown color key %q", k))
		}
	}
	for _, id := range slices.Sorted(maps.Keys(s.EnabledBuiltInPlugins)) {
		if !slices.Contains(BuiltInPluginIDs(), id) {
			errs = append(errs, fmt.Errorf("enabledBuiltInPlugins: unknown plugin %q", id))
		}
	}
	for i, p := range s.Plugins {
		if ok, pluginErrs := p.IsValid(); !ok {
			errs = append(errs, fmt.Errorf("plugins[%d]: %w", i, errors.Join(pluginErrs...)))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}
