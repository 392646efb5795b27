// SPDX-License-Identifier: MPL-2.0

// Package manifest defines the wire formats that describe plugins, themes
// and configs: encoded plugin payloads, the manifest.json of a
// .mcouicplugin archive, theme manifests, config metadata, dependencies and
// update sources. Documents are validated against the embedded CUE schema
// before decoding; Go-side IsValid methods add the checks CUE does not
// express, such as the reserved namespace and mutually exclusive update
// sources.
package manifest
