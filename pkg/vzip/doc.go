// SPDX-License-Identifier: MPL-2.0

// Package vzip is an in-memory, mutable view of a zip archive.
//
// An FS is opened from archive bytes, edited through path-keyed reads,
// writes, inserts and removals, and serialized back to bytes. Entries that
// were never written are copied to the output as their original compressed
// stream, so untouched content round-trips byte-for-byte and the original
// entry order is preserved. New entries are appended in insertion order.
package vzip
