// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/oreui-customizer/oreui/pkg/decode"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
)

func newPluginCommand(app *App) *cobra.Command {
	pluginCmd := &cobra.Command{
		Use:   "plugin",
		Short: "Inspect, pack and encode plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "inspect <file>",
		Short: "Decode a plugin and describe it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := inspectPlugin(cmd, app, args[0]); err != nil {
				return app.fail(cmd, err, "inspect plugin", args[0])
			}
			return nil
		},
	})

	var output string
	packCmd := &cobra.Command{
		Use:   "pack <dir>",
		Short: "Validate a plugin directory and zip it into a .mcouicplugin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := decode.Pack(args[0], output)
			if err != nil {
				return app.fail(cmd, err, "pack plugin", args[0])
			}
			fmt.Fprintf(app.stdout, "%s Packed %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
			return nil
		},
	}
	packCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default is <id>.mcouicplugin)")
	pluginCmd.AddCommand(packCmd)

	pluginCmd.AddCommand(&cobra.Command{
		Use:   "encode <file>",
		Short: "Print the encoded plugin data of a plugin file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := decode.EncodeFile(args[0])
			if err != nil {
				return app.fail(cmd, err, "encode plugin", args[0])
			}
			out, err := json.MarshalIndent(enc, "", "  ")
			if err != nil {
				return app.fail(cmd, err, "encode plugin", args[0])
			}
			fmt.Fprintln(app.stdout, string(out))
			return nil
		},
	})

	return pluginCmd
}

func inspectPlugin(cmd *cobra.Command, app *App, path string) error {
	enc, err := decode.EncodeFile(path)
	if err != nil {
		return err
	}
	p, err := decode.New(decode.WithLogger(app.logger)).Decode(cmd.Context(), *enc)
	if err != nil {
		return err
	}
	printPlugin(app.stdout, p, enc.FileType)

	if p.Description != "" {
		r, err := glamour.NewTermRenderer(glamour.WithStandardStyle("dark"), glamour.WithWordWrap(80))
		if err != nil {
			return err
		}
		rendered, err := r.Render(p.Description)
		if err != nil {
			return err
		}
		fmt.Fprint(app.stdout, rendered)
	}
	return nil
}

func printPlugin(w io.Writer, p *plugin.Plugin, ft manifest.FileType) {
	field := func(k, v string) {
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render(k), v)
	}

	fmt.Fprintln(w, TitleStyle.Render(p.Name))
	field("id", p.Key())
	field("uuid", p.UUID.String())
	field("version", p.Version.String())
	field("format", string(ft))
	if p.MinEngineVersion != "" {
		field("min engine", p.MinEngineVersion.String())
	}
	switch src := p.UpdateSource().(type) {
	case manifest.MarketplaceSource:
		field("updates", "marketplace "+src.Details.MarketplaceURL)
	case manifest.CheckForUpdatesSource:
		field("updates", src.Details.VersionInfoURL)
	}
	if p.Metadata != nil && len(p.Metadata.Authors) > 0 {
		field("authors", strings.Join(p.Metadata.Authors, ", "))
	}

	fmt.Fprintf(w, "%s:\n", CmdStyle.Render("dependencies"))
	if len(p.Dependencies) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
	}
	for _, d := range p.Dependencies {
		fmt.Fprintf(w, "  - %s\n", d)
	}

	fmt.Fprintf(w, "%s:\n", CmdStyle.Render("actions"))
	for _, c := range plugin.Contexts() {
		for _, a := range p.ActionsFor(c) {
			fmt.Fprintf(w, "  - %s %s\n", SuccessStyle.Render(a.ActionID()), SubtitleStyle.Render(c.String()))
		}
	}
}
