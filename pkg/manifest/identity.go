// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ReservedNamespace is the namespace of engine-provided packages. User
// plugins may not claim it.
const ReservedNamespace Namespace = "built-in"

var (
	// ErrInvalidID is the sentinel error wrapped by InvalidIDError.
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidNamespace is the sentinel error wrapped by InvalidNamespaceError.
	ErrInvalidNamespace = errors.New("invalid namespace")
	// ErrReservedNamespace is returned when a user package claims ReservedNamespace.
	ErrReservedNamespace = errors.New("reserved namespace")
	// ErrInvalidUUID is the sentinel error wrapped by InvalidUUIDError.
	ErrInvalidUUID = errors.New("invalid uuid")

	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

type (
	// ID is a package identifier, unique within its namespace.
	ID string

	// Namespace groups package identifiers, usually by author.
	Namespace string

	// UUID is the globally unique identity of a package in canonical
	// 8-4-4-4-12 hex form.
	UUID string

	// InvalidIDError is returned when an ID is empty or uses characters
	// outside [A-Za-z0-9_.-].
	InvalidIDError struct {
		Value ID
	}

	// InvalidNamespaceError is returned when a Namespace is malformed.
	InvalidNamespaceError struct {
		Value Namespace
	}

	// InvalidUUIDError is returned when a UUID is not in canonical form.
	InvalidUUIDError struct {
		Value UUID
	}
)

func (e *InvalidIDError) Error() string { return fmt.Sprintf("invalid id %q", e.Value) }

func (e *InvalidIDError) Unwrap() error { return ErrInvalidID }

func (e *InvalidNamespaceError) Error() string {
	return fmt.Sprintf("invalid namespace %q", e.Value)
}

func (e *InvalidNamespaceError) Unwrap() error { return ErrInvalidNamespace }

func (e *InvalidUUIDError) Error() string { return fmt.Sprintf("invalid uuid %q", e.Value) }

func (e *InvalidUUIDError) Unwrap() error { return ErrInvalidUUID }

// IsValid reports whether the ID matches [A-Za-z0-9_.-]+.
func (id ID) IsValid() (bool, []error) {
	if !identifierPattern.MatchString(string(id)) {
		return false, []error{&InvalidIDError{Value: id}}
	}
	return true, nil
}

func (id ID) String() string { return string(id) }

// IsValid reports whether the namespace matches [A-Za-z0-9_.-]+. The
// reserved namespace is syntactically valid; see IsUserNamespace.
func (ns Namespace) IsValid() (bool, []error) {
	if !identifierPattern.MatchString(string(ns)) {
		return false, []error{&InvalidNamespaceError{Value: ns}}
	}
	return true, nil
}

// IsUserNamespace reports whether ns is valid and not reserved.
func (ns Namespace) IsUserNamespace() (bool, []error) {
	if ok, errs := ns.IsValid(); !ok {
		return false, errs
	}
	if ns == ReservedNamespace {
		return false, []error{fmt.Errorf("namespace %q: %w", ns, ErrReservedNamespace)}
	}
	return true, nil
}

func (ns Namespace) String() string { return string(ns) }

// IsValid reports whether u is a canonical hyphenated UUID.
func (u UUID) IsValid() (bool, []error) {
	if len(u) != 36 {
		return false, []error{&InvalidUUIDError{Value: u}}
	}
	if _, err := uuid.Parse(string(u)); err != nil {
		return false, []error{&InvalidUUIDError{Value: u}}
	}
	return true, nil
}

// Normalize returns the lower-case form used for identity comparison.
func (u UUID) Normalize() UUID { return UUID(strings.ToLower(string(u))) }

// Equal compares two UUIDs case-insensitively.
func (u UUID) Equal(other UUID) bool { return u.Normalize() == other.Normalize() }

func (u UUID) String() string { return string(u) }

// NewUUID returns a random (version 4) UUID.
func NewUUID() UUID { return UUID(uuid.NewString()) }

// NameUUID derives a stable (version 5) UUID from name.
func NameUUID(name string) UUID {
	return UUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String())
}
