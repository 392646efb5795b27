// SPDX-License-Identifier: MPL-2.0

package semver

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	xsemver "golang.org/x/mod/semver"
)

const (
	// Compatible means the supplied version satisfies the requirement.
	Compatible Compatibility = iota
	// TooLow means the major versions match but the supplied version precedes
	// the required one.
	TooLow
	// IncompatibleMajor means the versions are on different release lines:
	// the majors differ, or a 0.y requirement is met by another minor, or a
	// 0.0.z requirement by anything but that exact version.
	IncompatibleMajor
)

var (
	// ErrInvalidVersion is the sentinel error wrapped by InvalidVersionError.
	ErrInvalidVersion = errors.New("invalid semantic version")

	// versionPattern is the grammar from semver.org with no "v" prefix allowed.
	versionPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
		`(?:-((?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*)(?:\.(?:0|[1-9]\d*|\d*[a-zA-Z-][0-9a-zA-Z-]*))*))?` +
		`(?:\+([0-9a-zA-Z-]+(?:\.[0-9a-zA-Z-]+)*))?$`)
)

type (
	// Version is a semantic version string such as "1.4.0" or "2.0.0-rc.1+build.7".
	Version string

	// InvalidVersionError is returned when a Version does not follow the
	// Semantic Versioning 2.0.0 grammar.
	InvalidVersionError struct {
		Value Version
	}

	// Parsed holds the components of a valid Version.
	Parsed struct {
		Major      uint64
		Minor      uint64
		Patch      uint64
		Prerelease string
		Build      string
	}

	// Compatibility is the outcome of checking a supplied version against a
	// required one.
	Compatibility int
)

// Error implements the error interface.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid semantic version %q", e.Value)
}

// Unwrap returns ErrInvalidVersion for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// Parse splits v into its components.
func Parse(v Version) (Parsed, error) {
	m := versionPattern.FindStringSubmatch(string(v))
	if m == nil {
		return Parsed{}, &InvalidVersionError{Value: v}
	}

	var p Parsed
	var err error
	if p.Major, err = strconv.ParseUint(m[1], 10, 64); err != nil {
		return Parsed{}, &InvalidVersionError{Value: v}
	}
	if p.Minor, err = strconv.ParseUint(m[2], 10, 64); err != nil {
		return Parsed{}, &InvalidVersionError{Value: v}
	}
	if p.Patch, err = strconv.ParseUint(m[3], 10, 64); err != nil {
		return Parsed{}, &InvalidVersionError{Value: v}
	}
	p.Prerelease = m[4]
	p.Build = m[5]
	return p, nil
}

// MustParse is like Parse but panics on invalid input. Intended for
// constants and tests.
func MustParse(v Version) Parsed {
	p, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return p
}

// IsValid returns whether v is a valid semantic version, and the
// validation errors if it is not.
func (v Version) IsValid() (bool, []error) {
	if _, err := Parse(v); err != nil {
		return false, []error{err}
	}
	return true, nil
}

// String returns the version text.
func (v Version) String() string { return string(v) }

// Compare returns -1, 0, or +1 depending on whether a precedes, equals, or
// follows b in semver precedence. Both versions must be valid.
func Compare(a, b Version) (int, error) {
	if _, err := Parse(a); err != nil {
		return 0, err
	}
	if _, err := Parse(b); err != nil {
		return 0, err
	}
	return xsemver.Compare("v"+string(a), "v"+string(b)), nil
}

// Less reports whether a precedes b. Invalid versions sort before valid ones.
func Less(a, b Version) bool {
	c, err := Compare(a, b)
	if err != nil {
		_, aErr := Parse(a)
		_, bErr := Parse(b)
		return aErr != nil && bErr == nil
	}
	return c < 0
}

// Check reports whether supplied satisfies required. The major versions must
// be equal and supplied must not precede required. Major 0 follows caret
// rules: a 0.y.z requirement also pins the minor, and 0.0.z pins the exact
// version.
func Check(supplied, required Version) (Compatibility, error) {
	s, err := Parse(supplied)
	if err != nil {
		return IncompatibleMajor, err
	}
	r, err := Parse(required)
	if err != nil {
		return IncompatibleMajor, err
	}
	if s.Major != r.Major {
		return IncompatibleMajor, nil
	}
	c := xsemver.Compare("v"+string(supplied), "v"+string(required))
	switch {
	case c < 0:
		return TooLow, nil
	case r.Major == 0 && r.Minor > 0 && s.Minor != r.Minor:
		return IncompatibleMajor, nil
	case r.Major == 0 && r.Minor == 0 && c != 0:
		return IncompatibleMajor, nil
	}
	return Compatible, nil
}

// Sort orders versions by ascending precedence. Invalid versions are placed
// first in their original relative order.
func Sort(versions []Version) {
	slices.SortStableFunc(versions, func(a, b Version) int {
		switch {
		case Less(a, b):
			return -1
		case Less(b, a):
			return 1
		default:
			return 0
		}
	})
}

// String returns a human-readable name for the compatibility outcome.
func (c Compatibility) String() string {
	switch c {
	case Compatible:
		return "compatible"
	case TooLow:
		return "version too low"
	case IncompatibleMajor:
		return "incompatible major version"
	default:
		return fmt.Sprintf("Compatibility(%d)", int(c))
	}
}
