// SPDX-License-Identifier: MPL-2.0

// Package builtin is the catalog of settings-driven transforms that ship
// with the engine.
//
// Every behavior is an ordinary plugin in the reserved "built-in" namespace
// with a stable UUID, so it composes with user plugins through the same
// dispatcher and can be named as a dependency. Plugins returns the enabled
// subset for a settings record, in catalog order, ready to be activated
// ahead of user plugins.
//
// Patches are data: each rule scopes a regular expression to a doublestar
// glob of archive paths. Features that add UI ship a small script that is
// inserted into the archive and referenced from every HTML document.
package builtin
