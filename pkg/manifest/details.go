// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	"github.com/oreui-customizer/oreui/pkg/semver"
)

const (
	// FileTypeJS is a bare entry script.
	FileTypeJS FileType = "js"
	// FileTypeMCOUICPlugin is a zip archive holding manifest.json and an
	// entry script.
	FileTypeMCOUICPlugin FileType = "mcouicplugin"
)

var (
	metadataKeys = []string{"authors", "url", "product_type", "license"}

	// ErrInvalidFileType is the sentinel error wrapped by InvalidFileTypeError.
	ErrInvalidFileType = errors.New("invalid plugin file type")
	// ErrInvalidDetails is the sentinel error wrapped by InvalidDetailsError.
	ErrInvalidDetails = errors.New("invalid plugin details")
)

type (
	// FileType is the container format of an encoded plugin.
	FileType string

	// InvalidFileTypeError is returned for an unknown FileType.
	InvalidFileTypeError struct {
		Value FileType
	}

	// Metadata is optional descriptive information about a package.
	Metadata struct {
		Authors     []string `json:"authors,omitempty"`
		URL         string   `json:"url,omitempty"`
		ProductType string   `json:"product_type,omitempty"`
		License     string   `json:"license,omitempty"`
		// Extra holds keys without a field above, kept verbatim for export.
		Extra map[string]json.RawMessage `json:"-"`
	}

	// metadataFields is Metadata without its methods.
	metadataFields Metadata

	// PluginDetails is the identity and descriptive part of a plugin as it
	// appears in settings exports (activePluginsDetails).
	PluginDetails struct {
		Name                   string                  `json:"name"`
		ID                     ID                      `json:"id"`
		UUID                   UUID                    `json:"uuid"`
		Namespace              Namespace               `json:"namespace"`
		Description            string                  `json:"description,omitempty"`
		Version                semver.Version          `json:"version"`
		FormatVersion          semver.Version          `json:"format_version"`
		MinEngineVersion       semver.Version          `json:"min_engine_version,omitempty"`
		IconDataURI            string                  `json:"icon_data_uri,omitempty"`
		Dependencies           []Dependency            `json:"dependencies,omitempty"`
		Metadata               *Metadata               `json:"metadata,omitempty"`
		MarketplaceDetails     *MarketplaceDetails     `json:"marketplaceDetails,omitempty"`
		CheckForUpdatesDetails *CheckForUpdatesDetails `json:"checkForUpdatesDetails,omitempty"`
	}

	// EncodedPluginData is a plugin serialized for transport: its details
	// plus the plugin file as a base64 data URI.
	EncodedPluginData struct {
		PluginDetails
		FileType FileType `json:"fileType"`
		DataURI  string   `json:"dataURI"`
	}

	// InvalidDetailsError collects the field errors of PluginDetails.
	InvalidDetailsError struct {
		ID          ID
		Namespace   Namespace
		FieldErrors []error
	}
)

// UnmarshalJSON decodes the known keys and keeps the rest in Extra.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var known metadataFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range metadataKeys {
		delete(all, k)
	}
	known.Extra = nil
	if len(all) > 0 {
		known.Extra = all
	}
	*m = Metadata(known)
	return nil
}

// MarshalJSON writes the known keys followed by Extra. Known keys win over
// an Extra entry of the same name.
func (m Metadata) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(metadataFields(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}
	out := maps.Clone(m.Extra)
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	maps.Copy(out, fields)
	return json.Marshal(out)
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("invalid plugin file type %q (expected %q or %q)", e.Value, FileTypeJS, FileTypeMCOUICPlugin)
}

func (e *InvalidFileTypeError) Unwrap() error { return ErrInvalidFileType }

// IsValid reports whether ft is a known container format.
func (ft FileType) IsValid() (bool, []error) {
	switch ft {
	case FileTypeJS, FileTypeMCOUICPlugin:
		return true, nil
	default:
		return false, []error{&InvalidFileTypeError{Value: ft}}
	}
}

func (e *InvalidDetailsError) Error() string {
	return fmt.Sprintf("invalid plugin %s:%s: %v", e.Namespace, e.ID, errors.Join(e.FieldErrors...))
}

func (e *InvalidDetailsError) Unwrap() error { return ErrInvalidDetails }

// IsValid checks identity, versions, dependencies and update sources. The
// reserved namespace is rejected.
func (d PluginDetails) IsValid() (bool, []error) {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if ok, fieldErrs := d.ID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := d.Namespace.IsUserNamespace(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := d.UUID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := d.Version.IsValid(); !ok {
		errs = append(errs, fmt.Errorf("version: %w", fieldErrs[0]))
	}
	if ok, fieldErrs := d.FormatVersion.IsValid(); !ok {
		errs = append(errs, fmt.Errorf("format_version: %w", fieldErrs[0]))
	}
	if d.MinEngineVersion != "" {
		if ok, fieldErrs := d.MinEngineVersion.IsValid(); !ok {
			errs = append(errs, fmt.Errorf("min_engine_version: %w", fieldErrs[0]))
		}
	}
	if d.IconDataURI != "" {
		if err := ValidateIconDataURI(d.IconDataURI); err != nil {
			errs = append(errs, err)
		}
	}
	for _, dep := range d.Dependencies {
		if ok, fieldErrs := dep.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if _, err := NewUpdateSource(d.MarketplaceDetails, d.CheckForUpdatesDetails); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidDetailsError{ID: d.ID, Namespace: d.Namespace, FieldErrors: errs}}
	}
	return true, nil
}

// UpdateSource returns the folded update source. Callers should check
// IsValid first; conflicting fields yield NoUpdateSource here.
func (d PluginDetails) UpdateSource() UpdateSource {
	src, err := NewUpdateSource(d.MarketplaceDetails, d.CheckForUpdatesDetails)
	if err != nil {
		return NoUpdateSource{}
	}
	return src
}

// IsValid checks the details plus the file type and data URI envelope.
func (e EncodedPluginData) IsValid() (bool, []error) {
	var errs []error
	if ok, fieldErrs := e.PluginDetails.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := e.FileType.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if _, err := ParseDataURI(e.DataURI); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}
