// SPDX-License-Identifier: MPL-2.0

// Package updatecheck looks up the latest release of a plugin, theme or
// config through its checkForUpdatesDetails.versionInfoURL. The document at
// that URL is JSON of the form {"version": "1.2.0", "url": "https://..."}
// served as application/json or text/json. Responses are cached per URL.
package updatecheck
