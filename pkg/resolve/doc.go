// SPDX-License-Identifier: MPL-2.0

// Package resolve checks the dependencies of a set of packages and fixes
// their activation order.
//
// Resolution is a gate, not a topological sort: the activation order is the
// declaration order of the input groups (built-ins, encoded plugins,
// preloaded plugins, themes, configs), and every dependency only has to be
// present in the active set with a compatible version. Built-in packages are
// trusted and their own dependencies are not checked.
package resolve
