// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/oreui-customizer/oreui/internal/watch"
	"github.com/oreui-customizer/oreui/pkg/customizer"
	"github.com/oreui-customizer/oreui/pkg/decode"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/settings"
)

type applyOptions struct {
	archive  string
	settings string
	plugins  []string
	themes   []string
	output   string
	dryRun   bool
	watch    bool
}

func newApplyCommand(app *App) *cobra.Command {
	var opts applyOptions
	cmd := &cobra.Command{
		Use:   "apply <archive>",
		Short: "Apply built-ins and plugins to an Ore UI archive",
		Long: `Apply the built-in customizations and plugins to an Ore UI archive.

Plugins come from the settings file, from --plugin flags, and from the
configured plugin directories for plugins the settings only name in
activePluginsDetails. The result is written next to the input unless
--output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.archive = args[0]
			if opts.watch {
				return runApplyWatch(cmd, app, opts)
			}
			if err := runApply(cmd.Context(), app, opts); err != nil {
				return app.fail(cmd, err, "apply customizations", opts.archive)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.settings, "settings", "s", "", "settings file (JSON)")
	cmd.Flags().StringArrayVarP(&opts.plugins, "plugin", "p", nil, "plugin file to activate (.js, .mcouicplugin or encoded .json), repeatable")
	cmd.Flags().StringArrayVar(&opts.themes, "theme", nil, "theme manifest to include in resolution, repeatable")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output archive (default is <archive><output_suffix>.zip)")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "resolve and print the activation order without writing")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-apply when the archive, settings or plugins change")
	return cmd
}

// buildRequest reads every input named by opts.
func buildRequest(app *App, opts applyOptions) (customizer.Request, error) {
	var req customizer.Request

	archive, err := os.ReadFile(opts.archive)
	if err != nil {
		return req, err
	}
	req.Archive = archive

	if opts.settings == "" {
		s := settings.Defaults()
		req.Settings = &s
	} else {
		data, err := os.ReadFile(opts.settings)
		if err != nil {
			return req, err
		}
		cfg, err := settings.NewSession().Load(data, opts.settings)
		if err != nil {
			return req, err
		}
		if cfg.Migrated {
			app.logger.Warn("settings file uses the legacy format", "path", opts.settings, "hint", "oreui config migrate")
		}
		req.Settings = &cfg.Settings
		req.Configs = []*manifest.ConfigMetadata{cfg.Metadata}
	}

	for _, p := range opts.plugins {
		enc, err := decode.EncodeFile(p)
		if err != nil {
			return req, fmt.Errorf("%s: %w", p, err)
		}
		req.Encoded = append(req.Encoded, *enc)
	}

	for _, p := range opts.themes {
		data, err := os.ReadFile(p)
		if err != nil {
			return req, err
		}
		theme, err := manifest.ParseThemeManifest(data, p)
		if err != nil {
			return req, err
		}
		req.Themes = append(req.Themes, theme)
	}

	if len(req.Settings.ActivePluginsDetails) > 0 {
		if req.Catalog, err = app.catalog(); err != nil {
			return req, err
		}
	}
	return req, nil
}

func runApply(ctx context.Context, app *App, opts applyOptions) error {
	req, err := buildRequest(app, opts)
	if err != nil {
		return err
	}
	c := customizer.New(customizer.WithLogger(app.logger))

	if opts.dryRun {
		plan, err := c.Plan(ctx, req)
		if err != nil {
			return err
		}
		printPlan(app.stdout, plan)
		return nil
	}

	res, err := c.Apply(ctx, req)
	if err != nil {
		return err
	}
	out := opts.output
	if out == "" {
		out = outputPath(opts.archive, app.cfg.OutputSuffix)
	}
	if err := os.WriteFile(out, res.Archive, 0o644); err != nil {
		return err
	}

	changed := 0
	for _, st := range res.Stats.Stages {
		changed += st.Changed
	}
	fmt.Fprintf(app.stdout, "%s Applied %d package(s), %d file(s) changed\n",
		SuccessStyle.Render("✓"), len(res.Plan.Resolution.Activated), changed)
	fmt.Fprintf(app.stdout, "  %s\n", CmdStyle.Render(out))
	if app.verbose {
		for _, c := range res.Plan.Resolution.Activated {
			fmt.Fprintf(app.stdout, "  %s\n", VerboseStyle.Render(customizer.Describe(c)))
		}
		for _, st := range res.Stats.Stages {
			fmt.Fprintf(app.stdout, "  %s\n", VerboseStyle.Render(fmt.Sprintf(
				"%s: %d action(s), %d call(s), %d changed in %s", st.Stage, st.Actions, st.Calls, st.Changed, st.Duration)))
		}
	}
	for _, d := range res.Plan.Unavailable {
		fmt.Fprintf(app.stdout, "%s %s %s was not found in the plugin directories\n",
			WarningStyle.Render("!"), d.Name, SubtitleStyle.Render(d.UUID.String()))
	}
	return nil
}

// runApplyWatch applies once and then again every time an input changes.
// Failed runs are reported and the watch continues.
func runApplyWatch(cmd *cobra.Command, app *App, opts applyOptions) error {
	ctx := cmd.Context()
	run := func() {
		if err := runApply(ctx, app, opts); err != nil {
			fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(
				classifyError(err, "apply customizations", opts.archive), app.verbose))
		}
	}
	run()

	files := append([]string{opts.archive}, opts.plugins...)
	files = append(files, opts.themes...)
	if opts.settings != "" {
		files = append(files, opts.settings)
	}
	w, err := watch.New(watch.Config{
		Files:    files,
		Dirs:     existingDirs(app.pluginDirs()),
		Patterns: []string{"*" + decode.ScriptSuffix, "*" + decode.ArchiveSuffix, "*" + decode.EncodedSuffix},
		OnChange: func(context.Context, []string) error {
			run()
			return nil
		},
		Logger: app.logger,
	})
	if err != nil {
		return app.fail(cmd, err, "watch inputs", opts.archive)
	}
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("Watching for changes, press Ctrl+C to stop"))
	if err := w.Run(ctx); err != nil {
		return app.fail(cmd, err, "watch inputs", opts.archive)
	}
	return nil
}

// outputPath inserts suffix before the extension of archive.
func outputPath(archive, suffix string) string {
	ext := filepath.Ext(archive)
	return strings.TrimSuffix(archive, ext) + suffix + ext
}

func existingDirs(dirs []string) []string {
	var out []string
	for _, d := range dirs {
		if info, err := os.Stat(d); err == nil && info.IsDir() {
			out = append(out, d)
		}
	}
	return out
}

// printPlan renders the activation order as a table.
func printPlan(w io.Writer, plan *customizer.Plan) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("#", "NAME", "PACKAGE", "VERSION", "KIND", "SOURCE")

	for i, c := range plan.Resolution.Activated {
		source := "user"
		if c.BuiltIn {
			source = "built-in"
		}
		t.Row(fmt.Sprint(i+1), c.Name, c.Label(), string(c.Version), string(c.Kind), source)
	}

	fmt.Fprintln(w, TitleStyle.Render("Activation order"))
	fmt.Fprintln(w, t.Render())
	for _, warn := range plan.Resolution.Warnings {
		fmt.Fprintf(w, "%s %s: %s\n", WarningStyle.Render("!"), warn.Requester.Label(), warn.Message)
	}
	for _, d := range plan.Unavailable {
		fmt.Fprintf(w, "%s %s (%s) not found in the plugin directories\n", WarningStyle.Render("!"), d.Name, d.UUID)
	}
}
