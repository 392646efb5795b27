// SPDX-License-Identifier: MPL-2.0

// Package plugin defines the executable form of a plugin: its identity and
// an ordered list of actions. Actions are a closed sum type keyed by the
// pipeline stage they run in, each variant carrying its own callback type.
package plugin
