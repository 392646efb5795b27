// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for oreui.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/oreui-customizer/oreui/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oreui",
		Short: "Customize Ore UI archives with plugins",
		Long: TitleStyle.Render("oreui") + SubtitleStyle.Render(" - Ore UI customizer plugin engine") + `

oreui applies the built-in customizations and your plugins to an Ore UI
archive. Plugins are JavaScript entry scripts or .mcouicplugin archives;
their dependencies are resolved before any file is touched.

` + SubtitleStyle.Render("Examples:") + `
  oreui apply gui.zip -s settings.json          Apply settings and plugins
  oreui apply gui.zip -p my.mcouicplugin -n     Show what would run
  oreui plugin inspect my.mcouicplugin          Describe a plugin
  oreui builtins                                List built-in plugins`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			app.init(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default is <config dir>/oreui/config.cue)")

	rootCmd.AddCommand(
		newApplyCommand(app),
		newPluginCommand(app),
		newConfigCommand(app),
		newBuiltinsCommand(app),
		newCheckUpdatesCommand(app),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's exit code.
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
