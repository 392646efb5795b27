// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/oreui-customizer/oreui/internal/issue"
	"github.com/oreui-customizer/oreui/pkg/decode"
	"github.com/oreui-customizer/oreui/pkg/engine"
	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/resolve"
	"github.com/oreui-customizer/oreui/pkg/settings"
	"github.com/oreui-customizer/oreui/pkg/updatecheck"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

// classifyError wraps err in an ActionableError naming the failure class.
// Errors that already are actionable pass through unchanged.
func classifyError(err error, operation, resource string) error {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}

	ec := issue.NewErrorContext().WithOperation(operation).WithResource(resource).Wrap(err)

	var (
		valErr *plugin.ValidationError
		decErr *decode.DecodeError
		depErr *resolve.DependencyError
		actErr *engine.ActionExecutionError
	)
	switch {
	case errors.As(err, &depErr):
		ec.WithIssue(issue.DependenciesNotSatisfiedId).
			WithSuggestion(fmt.Sprintf("Activate a package satisfying %s required by %s", depErr.Dependency, depErr.Requester.Label()))
	case errors.As(err, &actErr):
		ec.WithIssue(issue.ActionExecutionFailedId).
			WithSuggestion("Run with --verbose to see which file the action was processing")
	case errors.As(err, &decErr):
		ec.WithIssue(issue.PluginDecodeFailedId).
			WithSuggestions("Check that the entry script evaluates without errors", "Run 'oreui plugin inspect' on the plugin file")
	case errors.As(err, &valErr), errors.Is(err, resolve.ErrDuplicateUUID):
		ec.WithIssue(issue.PluginValidationFailedId).
			WithSuggestion("Fix the plugin identity fields (id, namespace, uuid, version)")
	case errors.Is(err, settings.ErrInvalidConfig), errors.Is(err, settings.ErrInvalidSettings):
		ec.WithIssue(issue.SettingsParseErrorId).
			WithSuggestion("Run 'oreui config migrate' to upgrade an older settings file")
	case errors.Is(err, vzip.ErrInvalidArchive):
		ec.WithIssue(issue.ArchiveInvalidId).
			WithSuggestion("Use the unmodified gui archive of the game as input")
	case errors.Is(err, updatecheck.ErrNoVersionInfoURL),
		errors.Is(err, updatecheck.ErrUnexpectedStatus),
		errors.Is(err, updatecheck.ErrUnsupportedMediaType),
		errors.Is(err, updatecheck.ErrInvalidVersionInfo):
		ec.WithIssue(issue.UpdateCheckFailedId)
	case errors.Is(err, fs.ErrPermission):
		ec.WithIssue(issue.PermissionDeniedId).
			WithSuggestion("Check the permissions of " + resource)
	case errors.Is(err, fs.ErrNotExist):
		ec.WithIssue(issue.ArchiveNotFoundId).
			WithSuggestion("Verify the path is correct")
	}
	return ec.BuildError()
}

// fail reports err on the command's stderr and returns an ExitError. In
// verbose mode the issue guide is rendered under the message.
func (a *App) fail(cmd *cobra.Command, err error, operation, resource string) error {
	err = classifyError(err, operation, resource)
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))

	var ae *issue.ActionableError
	if a.verbose && errors.As(err, &ae) && ae.Issue != 0 {
		if guide := issue.Get(ae.Issue); guide != nil {
			if rendered, renderErr := guide.Render("dark"); renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: 1, Err: err}
}
