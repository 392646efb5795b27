// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/semver"
)

func uuidFor(n int) manifest.UUID {
	return manifest.UUID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
}

func cand(kind Kind, n int, version semver.Version, deps ...manifest.Dependency) Candidate {
	c := Candidate{
		Kind:         kind,
		Name:         fmt.Sprintf("pkg %d", n),
		ID:           manifest.ID(fmt.Sprintf("pkg-%d", n)),
		UUID:         uuidFor(n),
		Version:      version,
		Dependencies: deps,
	}
	if kind == KindPlugin {
		c.Namespace = "acme"
	}
	return c
}

func dep(n int, version semver.Version) manifest.Dependency {
	return manifest.Dependency{UUID: uuidFor(n), Version: version}
}

func TestResolve_OrderAndSatisfaction(t *testing.T) {
	t.Parallel()

	builtIn := cand(KindPlugin, 1, "1.0.0")
	builtIn.Namespace = manifest.ReservedNamespace
	req := Request{
		BuiltIns:  []Candidate{builtIn},
		Encoded:   []Candidate{cand(KindPlugin, 2, "1.0.0", dep(3, "2.1.0")), cand(KindPlugin, 4, "0.3.0")},
		Preloaded: []Candidate{cand(KindPlugin, 3, "2.1.0-rc.1+b", dep(1, "1.0.0"))},
		Themes:    []Candidate{cand(KindTheme, 5, "1.0.0", dep(4, "0.3.0"))},
		Configs:   []Candidate{cand(KindConfig, 6, "1.0.0", dep(2, "1.0.0"), dep(5, "1.0.0"))},
	}

	// 2.1.0-rc.1 sorts before 2.1.0, so pkg-2's dependency is too low.
	_, err := New().Resolve(req)
	var depErr *DependencyError
	if !errors.As(err, &depErr) || depErr.Reason != VersionTooLow || depErr.Requester.ID != "pkg-2" {
		t.Fatalf("Resolve() error = %v, want VersionTooLow from pkg-2", err)
	}

	req.Preloaded[0].Version = "2.1.0"
	res, err := New().Resolve(req)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	var order []manifest.ID
	for _, c := range res.Activated {
		order = append(order, c.ID)
	}
	want := []manifest.ID{"pkg-1", "pkg-2", "pkg-4", "pkg-3", "pkg-5", "pkg-6"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("activation order = %v, want %v", order, want)
	}
	if !res.Activated[0].BuiltIn {
		t.Error("built-in candidate not marked BuiltIn")
	}
}

func TestResolve_DependencyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		dep    manifest.Dependency
		reason Reason
	}{
		{"missing", dep(99, "1.0.0"), Missing},
		{"too low", dep(2, "1.5.0"), VersionTooLow},
		{"major mismatch", dep(2, "2.0.0"), IncompatibleMajor},
		{"required major zero against one", dep(3, "0.1.0"), IncompatibleMajor},
		{"major zero pins the minor", dep(4, "0.1.0"), IncompatibleMajor},
		{"major zero lower minor", dep(4, "0.3.0"), VersionTooLow},
		{"zero zero pins the patch", dep(5, "0.0.1"), IncompatibleMajor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := Request{Encoded: []Candidate{
				cand(KindPlugin, 1, "1.0.0", tt.dep),
				cand(KindPlugin, 2, "1.4.2"),
				cand(KindPlugin, 3, "1.0.0"),
				cand(KindPlugin, 4, "0.2.0"),
				cand(KindPlugin, 5, "0.0.2"),
			}}
			_, err := New().Resolve(req)
			var depErr *DependencyError
			if !errors.As(err, &depErr) || !errors.Is(err, ErrDependency) {
				t.Fatalf("Resolve() error = %v, want DependencyError", err)
			}
			if depErr.Reason != tt.reason || depErr.Requester.Label() != "acme:pkg-1" {
				t.Errorf("DependencyError = %+v", depErr)
			}
		})
	}
}

func TestResolve_BuiltInsNotChecked(t *testing.T) {
	t.Parallel()

	b := cand(KindPlugin, 1, "1.0.0", dep(42, "9.0.0"))
	b.Namespace = manifest.ReservedNamespace
	if _, err := New().Resolve(Request{BuiltIns: []Candidate{b}}); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
}

func TestResolve_OnlyBuiltInListIsTrusted(t *testing.T) {
	t.Parallel()

	c := cand(KindPlugin, 1, "1.0.0", dep(42, "1.0.0"))
	c.BuiltIn = true
	_, err := New().Resolve(Request{Preloaded: []Candidate{c}})
	var depErr *DependencyError
	if !errors.As(err, &depErr) || depErr.Reason != Missing {
		t.Fatalf("Resolve() error = %v, want missing DependencyError", err)
	}
}

func TestResolve_Validation(t *testing.T) {
	t.Parallel()

	reserved := cand(KindPlugin, 1, "1.0.0")
	reserved.Namespace = manifest.ReservedNamespace
	badVersion := cand(KindPlugin, 1, "v1.0.0")
	dup := []Candidate{cand(KindPlugin, 1, "1.0.0"), cand(KindTheme, 1, "1.0.0")}

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"reserved namespace", Request{Encoded: []Candidate{reserved}}, manifest.ErrReservedNamespace},
		{"bad version", Request{Preloaded: []Candidate{badVersion}}, semver.ErrInvalidVersion},
		{"duplicate uuid", Request{Encoded: dup[:1], Themes: dup[1:]}, ErrDuplicateUUID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New().Resolve(tt.req)
			if !errors.Is(err, plugin.ErrValidation) || !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolve_ModuleDependencyWarns(t *testing.T) {
	t.Parallel()

	c := cand(KindPlugin, 1, "1.0.0", manifest.Dependency{ModuleName: "anything", Version: "5.0.0"})
	res, err := New().Resolve(Request{Encoded: []Candidate{c}})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Dependency.ModuleName != "anything" {
		t.Errorf("Warnings = %+v", res.Warnings)
	}
}

func TestResolve_MinEngineVersion(t *testing.T) {
	t.Parallel()

	c := cand(KindPlugin, 1, "1.0.0")
	c.MinEngineVersion = "2.0.0"
	_, err := New(WithEngineVersion("1.9.9")).Resolve(Request{Encoded: []Candidate{c}})
	var depErr *DependencyError
	if !errors.As(err, &depErr) || depErr.Reason != EngineTooOld {
		t.Fatalf("Resolve() error = %v, want EngineTooOld", err)
	}
	if _, err := New(WithEngineVersion("2.0.0")).Resolve(Request{Encoded: []Candidate{c}}); err != nil {
		t.Fatalf("Resolve() with new engine error: %v", err)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	versions := []semver.Version{"0.1.0", "1.0.0-alpha", "1.0.0", "1.2.3", "2.0.0"}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		var cands []Candidate
		for i := range n {
			var deps []manifest.Dependency
			for range rapid.IntRange(0, 3).Draw(t, "deps") {
				target := rapid.IntRange(0, n).Draw(t, "target")
				deps = append(deps, dep(target, rapid.SampledFrom(versions).Draw(t, "required")))
			}
			cands = append(cands, cand(KindPlugin, i, rapid.SampledFrom(versions).Draw(t, "version"), deps...))
		}
		split := rapid.IntRange(0, n).Draw(t, "split")
		req := Request{Encoded: cands[:split], Preloaded: cands[split:]}

		first, err1 := New().Resolve(req)
		second, err2 := New().Resolve(req)
		if !reflect.DeepEqual(first, second) || fmt.Sprint(err1) != fmt.Sprint(err2) {
			t.Fatalf("resolution differs between runs: %v / %v", err1, err2)
		}
		if err1 != nil {
			return
		}
		byUUID := map[manifest.UUID]semver.Version{}
		for _, c := range first.Activated {
			byUUID[c.UUID] = c.Version
		}
		for _, c := range first.Activated {
			for _, d := range c.Dependencies {
				got, ok := byUUID[d.UUID]
				if !ok {
					t.Fatalf("%s: accepted missing dependency %s", c.Label(), d)
				}
				if compat, _ := semver.Check(got, d.Version); compat != semver.Compatible {
					t.Fatalf("%s: accepted %s against %s", c.Label(), d, got)
				}
			}
		}
	})
}

func TestResolve_ConfigWithoutID(t *testing.T) {
	t.Parallel()

	cfg := FromConfig(&manifest.ConfigMetadata{Name: "Unnamed Config 1", UUID: uuidFor(9), Version: "1.0.0"})
	res, err := New().Resolve(Request{Configs: []Candidate{cfg}})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got := res.Activated[0].Label(); got != "config:Unnamed Config 1" {
		t.Errorf("Label() = %q", got)
	}
}
