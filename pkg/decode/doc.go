// SPDX-License-Identifier: MPL-2.0

// Package decode materializes executable plugins from their encoded form.
//
// Two container formats are supported. A "js" payload is a single entry
// script. A "mcouicplugin" payload is a zip archive holding manifest.json and
// the entry script named by the manifest's entry field, resolved relative to
// the manifest. Either way only the script's actions are taken from code; all
// identity comes from validated data.
package decode
