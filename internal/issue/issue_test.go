// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(PermissionDeniedId) {
		t.Fatalf("Values() returned %d issues, want %d", len(values), PermissionDeniedId)
	}
	for i, is := range values {
		if is.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, is.Id(), i+1)
		}
		if strings.TrimSpace(string(is.MarkdownMsg())) == "" {
			t.Errorf("issue %d has empty markdown", is.Id())
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	is := Get(DependenciesNotSatisfiedId)
	if is == nil {
		t.Fatal("Get(DependenciesNotSatisfiedId) returned nil")
	}
	if !strings.Contains(string(is.MarkdownMsg()), "Dependencies not satisfied") {
		t.Errorf("unexpected markdown: %q", is.MarkdownMsg())
	}
	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}

func TestIssue_Render(t *testing.T) {
	t.Parallel()

	for _, is := range Values() {
		out, err := is.Render("notty")
		if err != nil {
			t.Errorf("Render(%d) error: %v", is.Id(), err)
			continue
		}
		if strings.TrimSpace(out) == "" {
			t.Errorf("Render(%d) produced empty output", is.Id())
		}
	}
}

func TestIssue_RenderWithLinks(t *testing.T) {
	t.Parallel()

	is := &Issue{id: 1, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/docs"}}
	out, err := is.Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(out, "See also") || !strings.Contains(out, "example.com/docs") {
		t.Errorf("rendered output missing links: %q", out)
	}

	links := is.DocLinks()
	links[0] = "mutated"
	if is.DocLinks()[0] != "https://example.com/docs" {
		t.Error("DocLinks() should return a copy")
	}
}
