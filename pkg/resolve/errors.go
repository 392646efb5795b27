// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/semver"
)

const (
	// Missing means no active package has the required UUID.
	Missing Reason = iota + 1
	// VersionTooLow means the active package is older than required.
	VersionTooLow
	// IncompatibleMajor means the active package is on another release line:
	// a different major, or a different 0.y minor, or not the exact 0.0.z.
	IncompatibleMajor
	// EngineTooOld means the package needs a newer engine.
	EngineTooOld
)

var (
	// ErrDependency is the sentinel error wrapped by DependencyError.
	ErrDependency = errors.New("dependency not satisfied")
	// ErrDuplicateUUID is returned when two candidates share a UUID.
	ErrDuplicateUUID = errors.New("duplicate package uuid")
)

type (
	// Reason classifies a DependencyError.
	Reason int

	// DependencyError names the first unsatisfiable dependency and the
	// package that requested it.
	DependencyError struct {
		Reason     Reason
		Requester  Candidate
		Dependency manifest.Dependency
		// Found is the active version when Reason is VersionTooLow or
		// IncompatibleMajor, and the engine version for EngineTooOld.
		Found semver.Version
	}
)

func (r Reason) String() string {
	switch r {
	case Missing:
		return "missing"
	case VersionTooLow:
		return "version too low"
	case IncompatibleMajor:
		return "incompatible major version"
	case EngineTooOld:
		return "engine too old"
	default:
		return "unknown"
	}
}

func (e *DependencyError) Error() string {
	switch e.Reason {
	case Missing:
		return fmt.Sprintf("%s requires %s, which is not active", e.Requester.Label(), e.Dependency)
	case EngineTooOld:
		return fmt.Sprintf("%s requires engine %s or newer, running %s", e.Requester.Label(), e.Dependency.Version, e.Found)
	default:
		return fmt.Sprintf("%s requires %s, found %s (%s)", e.Requester.Label(), e.Dependency, e.Found, e.Reason)
	}
}

func (e *DependencyError) Unwrap() error { return ErrDependency }
