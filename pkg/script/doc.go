// SPDX-License-Identifier: MPL-2.0

// Package script hosts plugin entry scripts in an embedded JavaScript
// runtime (goja).
//
// An entry script is evaluated as a CommonJS module; simple `export`
// declarations are rewritten to CommonJS assignments first. The host takes
// the exported `plugin` object (falling back to the default export and then
// the module itself), reads only its `actions` array, and turns every entry
// into a typed plugin.Action after checking that the callback's shape fits
// its declared context. Nothing else exported by the script is trusted.
//
// Each loaded script owns one runtime. Calls into a runtime are serialized,
// and promises returned by actions must settle before the call returns.
package script
