// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"

	"github.com/oreui-customizer/oreui/pkg/semver"
)

// ErrInvalidDependency is the sentinel error wrapped by InvalidDependencyError.
var ErrInvalidDependency = errors.New("invalid dependency")

type (
	// Dependency names a package that must be active, either by UUID or by
	// built-in module name, and the minimum compatible version.
	Dependency struct {
		UUID       UUID           `json:"uuid,omitempty"`
		ModuleName string         `json:"module_name,omitempty"`
		Version    semver.Version `json:"version"`
	}

	// InvalidDependencyError collects the field errors of a Dependency.
	InvalidDependencyError struct {
		Dependency  Dependency
		FieldErrors []error
	}
)

func (e *InvalidDependencyError) Error() string {
	return fmt.Sprintf("invalid dependency %s: %v", e.Dependency, errors.Join(e.FieldErrors...))
}

func (e *InvalidDependencyError) Unwrap() error { return ErrInvalidDependency }

// IsModule reports whether the dependency targets a built-in module name.
func (d Dependency) IsModule() bool { return d.ModuleName != "" }

// IsValid requires exactly one target and a valid version.
func (d Dependency) IsValid() (bool, []error) {
	var errs []error
	switch {
	case d.UUID != "" && d.ModuleName != "":
		errs = append(errs, errors.New("uuid and module_name are mutually exclusive"))
	case d.UUID == "" && d.ModuleName == "":
		errs = append(errs, errors.New("one of uuid or module_name is required"))
	case d.UUID != "":
		if ok, fieldErrs := d.UUID.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	if ok, fieldErrs := d.Version.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidDependencyError{Dependency: d, FieldErrors: errs}}
	}
	return true, nil
}

// String renders the dependency as "<target>@<version>".
func (d Dependency) String() string {
	target := string(d.UUID)
	if d.IsModule() {
		target = "module:" + d.ModuleName
	}
	return target + "@" + string(d.Version)
}
