// SPDX-License-Identifier: MPL-2.0

package manifest

import "errors"

// ErrConflictingUpdateSources is returned when a document carries both
// marketplaceDetails and checkForUpdatesDetails.
var ErrConflictingUpdateSources = errors.New("marketplaceDetails and checkForUpdatesDetails are mutually exclusive")

type (
	// MarketplaceDetails locates a package in the marketplace.
	MarketplaceDetails struct {
		MarketplaceID       string `json:"marketplaceId"`
		OriginalDownloadURL string `json:"originalDownloadURL"`
		MarketplaceURL      string `json:"marketplaceURL"`
	}

	// CheckForUpdatesDetails points at a JSON document of the form
	// {"version": "...", "url": "..."} describing the latest release.
	CheckForUpdatesDetails struct {
		VersionInfoURL string `json:"versionInfoURL"`
	}

	// UpdateSource is where a package looks for newer releases. It is one of
	// NoUpdateSource, MarketplaceSource or CheckForUpdatesSource.
	UpdateSource interface {
		isUpdateSource()
	}

	// NoUpdateSource means the package is never checked for updates.
	NoUpdateSource struct{}

	// MarketplaceSource means updates are tracked by the marketplace.
	MarketplaceSource struct {
		Details MarketplaceDetails
	}

	// CheckForUpdatesSource means updates are discovered by fetching
	// Details.VersionInfoURL.
	CheckForUpdatesSource struct {
		Details CheckForUpdatesDetails
	}
)

func (NoUpdateSource) isUpdateSource()        {}
func (MarketplaceSource) isUpdateSource()     {}
func (CheckForUpdatesSource) isUpdateSource() {}

// NewUpdateSource folds the two optional wire fields into an UpdateSource.
func NewUpdateSource(m *MarketplaceDetails, c *CheckForUpdatesDetails) (UpdateSource, error) {
	switch {
	case m != nil && c != nil:
		return nil, ErrConflictingUpdateSources
	case m != nil:
		return MarketplaceSource{Details: *m}, nil
	case c != nil:
		return CheckForUpdatesSource{Details: *c}, nil
	default:
		return NoUpdateSource{}, nil
	}
}

// UpdateFields returns the wire representation of src.
func UpdateFields(src UpdateSource) (*MarketplaceDetails, *CheckForUpdatesDetails) {
	switch s := src.(type) {
	case MarketplaceSource:
		d := s.Details
		return &d, nil
	case CheckForUpdatesSource:
		d := s.Details
		return nil, &d
	default:
		return nil, nil
	}
}
