// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"

	"github.com/oreui-customizer/oreui/pkg/semver"
)

// ManifestFormatVersion is the only supported manifest.json format_version.
const ManifestFormatVersion = 1

type (
	// PluginHeader is the identity block of a plugin manifest.
	PluginHeader struct {
		Name             string         `json:"name"`
		ID               ID             `json:"id"`
		UUID             UUID           `json:"uuid"`
		Namespace        Namespace      `json:"namespace"`
		Description      string         `json:"description,omitempty"`
		Version          semver.Version `json:"version"`
		FormatVersion    semver.Version `json:"format_version"`
		MinEngineVersion semver.Version `json:"min_engine_version,omitempty"`
	}

	// PluginManifest is the manifest.json at the root of a .mcouicplugin
	// archive.
	PluginManifest struct {
		FormatVersion          int                     `json:"format_version"`
		Header                 PluginHeader            `json:"header"`
		Entry                  string                  `json:"entry"`
		IconDataURI            string                  `json:"icon_data_uri,omitempty"`
		Dependencies           []Dependency            `json:"dependencies,omitempty"`
		Metadata               Metadata                `json:"metadata"`
		MarketplaceDetails     *MarketplaceDetails     `json:"marketplaceDetails,omitempty"`
		CheckForUpdatesDetails *CheckForUpdatesDetails `json:"checkForUpdatesDetails,omitempty"`
	}

	// ThemeHeader is the identity block of a theme manifest. Themes have no
	// namespace.
	ThemeHeader struct {
		Name          string         `json:"name"`
		ID            ID             `json:"id"`
		UUID          UUID           `json:"uuid"`
		Description   string         `json:"description,omitempty"`
		Version       semver.Version `json:"version"`
		FormatVersion semver.Version `json:"format_version"`
	}

	// ThemeManifest describes a theme. Themes take part in dependency
	// resolution only.
	ThemeManifest struct {
		FormatVersion          int                     `json:"format_version"`
		Header                 ThemeHeader             `json:"header"`
		IconDataURI            string                  `json:"icon_data_uri,omitempty"`
		Dependencies           []Dependency            `json:"dependencies,omitempty"`
		Metadata               Metadata                `json:"metadata"`
		MarketplaceDetails     *MarketplaceDetails     `json:"marketplaceDetails,omitempty"`
		CheckForUpdatesDetails *CheckForUpdatesDetails `json:"checkForUpdatesDetails,omitempty"`
	}

	// ConfigMetadata describes an exported settings file as a package.
	ConfigMetadata struct {
		Name            string         `json:"name,omitempty"`
		ID              ID             `json:"id,omitempty"`
		UUID            UUID           `json:"uuid,omitempty"`
		Description     string         `json:"description,omitempty"`
		Version         semver.Version `json:"version,omitempty"`
		PackIconDataURI string         `json:"pack_icon_data_uri,omitempty"`
		Dependencies    []Dependency   `json:"dependencies,omitempty"`
		Authors         []string       `json:"authors,omitempty"`
		URL             string         `json:"url,omitempty"`
		ProductType     string         `json:"product_type,omitempty"`
		License         string         `json:"license,omitempty"`
	}
)

// Details converts the manifest into the flat PluginDetails form.
func (m PluginManifest) Details() PluginDetails {
	meta := m.Metadata
	return PluginDetails{
		Name:                   m.Header.Name,
		ID:                     m.Header.ID,
		UUID:                   m.Header.UUID,
		Namespace:              m.Header.Namespace,
		Description:            m.Header.Description,
		Version:                m.Header.Version,
		FormatVersion:          m.Header.FormatVersion,
		MinEngineVersion:       m.Header.MinEngineVersion,
		IconDataURI:            m.IconDataURI,
		Dependencies:           m.Dependencies,
		Metadata:               &meta,
		MarketplaceDetails:     m.MarketplaceDetails,
		CheckForUpdatesDetails: m.CheckForUpdatesDetails,
	}
}

// IsValid checks the manifest format version and the plugin details.
func (m PluginManifest) IsValid() (bool, []error) {
	var errs []error
	if m.FormatVersion != ManifestFormatVersion {
		errs = append(errs, fmt.Errorf("format_version must be %d, got %d", ManifestFormatVersion, m.FormatVersion))
	}
	if m.Entry == "" {
		errs = append(errs, errors.New("entry is required"))
	}
	if ok, fieldErrs := m.Details().IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// IsValid checks the theme identity, versions and dependencies.
func (m ThemeManifest) IsValid() (bool, []error) {
	var errs []error
	if m.FormatVersion != ManifestFormatVersion {
		errs = append(errs, fmt.Errorf("format_version must be %d, got %d", ManifestFormatVersion, m.FormatVersion))
	}
	if m.Header.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if ok, fieldErrs := m.Header.ID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := m.Header.UUID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	for _, v := range []semver.Version{m.Header.Version, m.Header.FormatVersion} {
		if ok, fieldErrs := v.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	for _, dep := range m.Dependencies {
		if ok, fieldErrs := dep.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if _, err := NewUpdateSource(m.MarketplaceDetails, m.CheckForUpdatesDetails); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// UpdateSource returns the folded update source of the theme.
func (m ThemeManifest) UpdateSource() UpdateSource {
	src, err := NewUpdateSource(m.MarketplaceDetails, m.CheckForUpdatesDetails)
	if err != nil {
		return NoUpdateSource{}
	}
	return src
}

// IsValid checks the fields that are set. Unset fields are filled in by
// settings.Session before the config takes part in resolution.
func (c ConfigMetadata) IsValid() (bool, []error) {
	var errs []error
	if c.ID != "" {
		if ok, fieldErrs := c.ID.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.UUID != "" {
		if ok, fieldErrs := c.UUID.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.Version != "" {
		if ok, fieldErrs := c.Version.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if c.PackIconDataURI != "" {
		if err := ValidateIconDataURI(c.PackIconDataURI); err != nil {
			errs = append(errs, err)
		}
	}
	for _, dep := range c.Dependencies {
		if ok, fieldErrs := dep.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// ParsePluginManifest decodes and validates a manifest.json document.
func ParsePluginManifest(data []byte, filename string) (*PluginManifest, error) {
	return decodeDocument[PluginManifest](data, "#PluginManifest", filename)
}

// ParseThemeManifest decodes and validates a theme manifest document.
func ParseThemeManifest(data []byte, filename string) (*ThemeManifest, error) {
	return decodeDocument[ThemeManifest](data, "#ThemeManifest", filename)
}

// ParseEncodedPluginData decodes and validates a single encoded plugin
// document.
func ParseEncodedPluginData(data []byte, filename string) (*EncodedPluginData, error) {
	return decodeDocument[EncodedPluginData](data, "#EncodedPluginData", filename)
}

// ParsePluginDetails decodes and validates a standalone details document,
// the sidecar of a bare .js plugin.
func ParsePluginDetails(data []byte, filename string) (*PluginDetails, error) {
	return decodeDocument[PluginDetails](data, "#PluginDetails", filename)
}
