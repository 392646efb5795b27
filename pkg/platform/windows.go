// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotPortable is returned for archive paths that cannot be extracted on
// every platform.
var ErrNotPortable = errors.New("path is not portable")

// windowsReservedNames are device names Windows refuses as file names,
// with or without an extension.
var windowsReservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// IsWindowsReservedName reports whether name, minus any extensions, is a
// Windows device name. The check is case-insensitive.
func IsWindowsReservedName(name string) bool {
	base, _, _ := strings.Cut(strings.ToUpper(name), ".")
	_, ok := windowsReservedNames[base]
	return ok
}

// CheckPortablePath rejects slash-separated archive paths with a segment
// that is a Windows device name or ends in a dot or space, or that contains
// characters Windows forbids in file names.
func CheckPortablePath(p string) error {
	for seg := range strings.SplitSeq(p, "/") {
		switch {
		case seg == "":
			continue
		case IsWindowsReservedName(seg):
			return fmt.Errorf("%w: %q uses the reserved name %q", ErrNotPortable, p, seg)
		case strings.ContainsAny(seg, `<>:"\|?*`):
			return fmt.Errorf("%w: %q contains a character Windows forbids", ErrNotPortable, p)
		case strings.HasSuffix(seg, ".") || strings.HasSuffix(seg, " "):
			return fmt.Errorf("%w: %q has a segment ending in a dot or space", ErrNotPortable, p)
		}
	}
	return nil
}
