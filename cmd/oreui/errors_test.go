// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/oreui-customizer/oreui/internal/issue"
	"github.com/oreui-customizer/oreui/pkg/decode"
	"github.com/oreui-customizer/oreui/pkg/engine"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/resolve"
	"github.com/oreui-customizer/oreui/pkg/settings"
	"github.com/oreui-customizer/oreui/pkg/updatecheck"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	depErr := &resolve.DependencyError{
		Reason:     resolve.Missing,
		Requester:  resolve.Candidate{Kind: resolve.KindPlugin, Namespace: "example", ID: "needy"},
		Dependency: manifest.Dependency{UUID: "6f1c2e9a-3b47-4d2e-9a51-0c8e7f3d2b10", Version: "1.0.0"},
	}
	actErr := &engine.ActionExecutionError{
		PluginID: "p", Namespace: "example", ActionID: "a", Stage: plugin.ContextGlobal,
		Err: fs.ErrNotExist,
	}

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"dependency", depErr, issue.DependenciesNotSatisfiedId},
		{"action wins over its cause", actErr, issue.ActionExecutionFailedId},
		{"decode", &decode.DecodeError{Err: decode.ErrManifestNotFound}, issue.PluginDecodeFailedId},
		{"validation", &plugin.ValidationError{ID: "x", Namespace: "y"}, issue.PluginValidationFailedId},
		{"duplicate uuid", fmt.Errorf("%w: x", resolve.ErrDuplicateUUID), issue.PluginValidationFailedId},
		{"settings", fmt.Errorf("%w: bad", settings.ErrInvalidConfig), issue.SettingsParseErrorId},
		{"archive", fmt.Errorf("%w: truncated", vzip.ErrInvalidArchive), issue.ArchiveInvalidId},
		{"update check", fmt.Errorf("fetching: %w 404", updatecheck.ErrUnexpectedStatus), issue.UpdateCheckFailedId},
		{"permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, issue.PermissionDeniedId},
		{"not found", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, issue.ArchiveNotFoundId},
		{"unclassified", errors.New("odd"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := classifyError(tt.err, "do things", "thing")
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("classifyError() = %T, want *issue.ActionableError", err)
			}
			if ae.Issue != tt.want {
				t.Errorf("Issue = %d, want %d", ae.Issue, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("classified error should wrap the original")
			}
		})
	}
}

func TestClassifyError_KeepsActionable(t *testing.T) {
	t.Parallel()

	orig := issue.NewErrorContext().WithOperation("load configuration").WithIssue(issue.ConfigLoadFailedId).BuildError()
	if got := classifyError(orig, "other", ""); got != orig {
		t.Errorf("classifyError() replaced an actionable error: %v", got)
	}
}
