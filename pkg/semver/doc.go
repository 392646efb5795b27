// SPDX-License-Identifier: MPL-2.0

// Package semver implements strict Semantic Versioning 2.0.0 parsing,
// precedence ordering, and the dependency compatibility gate used when
// activating plugins.
//
// Versions are written without a leading "v". Precedence comparison is
// delegated to golang.org/x/mod/semver, which implements the full 2.0.0
// ordering rules including pre-release identifiers; build metadata is
// ignored for ordering.
package semver
