// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"testing"
)

func TestID_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   ID
		want bool
	}{
		{"demo", true},
		{"demo_plugin.v2-final", true},
		{"", false},
		{"has space", false},
		{"slash/inside", false},
		{"emoji✨", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			t.Parallel()
			got, errs := tt.id.IsValid()
			if got != tt.want {
				t.Errorf("ID(%q).IsValid() = %v, want %v", tt.id, got, tt.want)
			}
			if !got && !errors.Is(errs[0], ErrInvalidID) {
				t.Errorf("error should wrap ErrInvalidID, got %v", errs[0])
			}
		})
	}
}

func TestNamespace_IsUserNamespace(t *testing.T) {
	t.Parallel()

	if ok, _ := Namespace("example").IsUserNamespace(); !ok {
		t.Error("example should be a user namespace")
	}
	ok, errs := ReservedNamespace.IsUserNamespace()
	if ok || !errors.Is(errs[0], ErrReservedNamespace) {
		t.Errorf("built-in: got %v, %v; want ErrReservedNamespace", ok, errs)
	}
	if ok, _ := ReservedNamespace.IsValid(); !ok {
		t.Error("the reserved namespace is still syntactically valid")
	}
}

func TestUUID(t *testing.T) {
	t.Parallel()

	if ok, _ := UUID(testUUID).IsValid(); !ok {
		t.Errorf("%s should be valid", testUUID)
	}
	for _, bad := range []UUID{"", "6f1c2e9a3b474d2e9a510c8e7f3d2b10", "{6f1c2e9a-3b47-4d2e-9a51-0c8e7f3d2b10}", "zzzzzzzz-3b47-4d2e-9a51-0c8e7f3d2b10"} {
		if ok, errs := bad.IsValid(); ok || !errors.Is(errs[0], ErrInvalidUUID) {
			t.Errorf("UUID(%q).IsValid() = %v, %v", bad, ok, errs)
		}
	}
	if !UUID("6F1C2E9A-3B47-4D2E-9A51-0C8E7F3D2B10").Equal(testUUID) {
		t.Error("UUID comparison should ignore case")
	}
	if NameUUID("a") != NameUUID("a") || NameUUID("a") == NameUUID("b") {
		t.Error("NameUUID should be deterministic and name-dependent")
	}
	if ok, _ := NewUUID().IsValid(); !ok {
		t.Error("NewUUID() should produce a valid UUID")
	}
}

func TestDependency_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dep  Dependency
		want bool
	}{
		{"uuid", Dependency{UUID: testUUID, Version: "1.0.0"}, true},
		{"module", Dependency{ModuleName: "facet-spy", Version: "1.0.0"}, true},
		{"both", Dependency{UUID: testUUID, ModuleName: "facet-spy", Version: "1.0.0"}, false},
		{"neither", Dependency{Version: "1.0.0"}, false},
		{"bad version", Dependency{UUID: testUUID, Version: "1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, errs := tt.dep.IsValid()
			if got != tt.want {
				t.Errorf("IsValid() = %v (%v), want %v", got, errs, tt.want)
			}
			if !got && !errors.Is(errs[0], ErrInvalidDependency) {
				t.Errorf("error should wrap ErrInvalidDependency, got %v", errs[0])
			}
		})
	}
}
