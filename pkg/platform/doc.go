// SPDX-License-Identifier: MPL-2.0

// Package platform holds OS name constants and the portability checks
// applied to files that end up in plugin archives.
package platform
