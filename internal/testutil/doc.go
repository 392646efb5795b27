// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail the test on error
// instead of returning it.
//
// Helpers cover in-memory archives (NewFS, Archive, ReadEntry), files on
// disk (WriteFile) and the platform config directory (SetConfigHome).
package testutil
