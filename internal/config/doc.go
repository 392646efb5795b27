// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/oreui/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/oreui/config.cue on macOS, %APPDATA%\oreui\config.cue
// on Windows), falling back to ./config.cue. It covers the log level, the directories
// scanned for plugin files, the output naming of customized archives, the update
// check and UI settings.
//
// Files are validated against a CUE schema (config_schema.cue) before they are merged
// over the defaults.
package config
