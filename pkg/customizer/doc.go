// SPDX-License-Identifier: MPL-2.0

// Package customizer ties the engine together: it gathers the built-in
// plugins enabled by a settings record, decodes the user's encoded plugins,
// resolves every package against its dependencies and runs the activated
// plugins over an archive.
//
// A Catalog supplies plugin payloads for settings files exported without
// bundled plugin data, whose activePluginsDetails only name the plugins.
package customizer
