// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oreui-customizer/oreui/internal/config"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/settings"
)

// newConfigCommand creates the `oreui config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage oreui configuration and settings files",
		Long: `Manage oreui configuration and settings files.

Configuration is stored in:
  - Linux: ~/.config/oreui/config.cue
  - macOS: ~/Library/Application Support/oreui/config.cue
  - Windows: %APPDATA%\oreui\config.cue`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: app.configFile})
			if err != nil {
				return app.fail(cmd, err, "load configuration", app.configFile)
			}
			showConfig(app, cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.CreateDefaultConfig("")
			if err != nil {
				return app.fail(cmd, err, "create configuration", path)
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := config.ConfigDir()
			if err != nil {
				return app.fail(cmd, err, "locate configuration", "")
			}
			plugins, _ := config.PluginsDir("")
			fmt.Fprintf(app.stdout, "Config directory: %s\n", dir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt))
			fmt.Fprintf(app.stdout, "Plugins directory: %s\n", plugins)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: app.configFile})
			if err != nil {
				return app.fail(cmd, err, "load configuration", app.configFile)
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	var migrateOut string
	migrateCmd := &cobra.Command{
		Use:   "migrate <settings.json>",
		Short: "Upgrade a settings file to the current format",
		Long: `Upgrade a settings file to the current format.

Legacy flat settings are wrapped, unset fields take their defaults and
missing metadata is filled in. The result goes to stdout unless --output
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, migrated, err := migrateSettings(args[0])
			if err != nil {
				return app.fail(cmd, err, "migrate settings", args[0])
			}
			if !migrated {
				app.logger.Info("settings file is already in the current format", "path", args[0])
			}
			if migrateOut == "" {
				fmt.Fprintln(app.stdout, string(out))
				return nil
			}
			if err := os.WriteFile(migrateOut, append(out, '\n'), 0o644); err != nil {
				return app.fail(cmd, err, "write settings", migrateOut)
			}
			fmt.Fprintf(app.stdout, "%s Wrote %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(migrateOut))
			return nil
		},
	}
	migrateCmd.Flags().StringVarP(&migrateOut, "output", "o", "", "write the upgraded file here instead of stdout")
	cfgCmd.AddCommand(migrateCmd)

	return cfgCmd
}

// migrateSettings loads path and exports it in the current format. Every
// encoded plugin and every listed active plugin stays active.
func migrateSettings(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	cfg, err := settings.NewSession().Load(data, path)
	if err != nil {
		return nil, false, err
	}

	var active []manifest.PluginDetails
	seen := make(map[manifest.UUID]bool)
	for _, p := range cfg.Settings.Plugins {
		seen[p.UUID.Normalize()] = true
		active = append(active, p.PluginDetails)
	}
	for _, d := range cfg.Settings.ActivePluginsDetails {
		if !seen[d.UUID.Normalize()] {
			seen[d.UUID.Normalize()] = true
			active = append(active, d)
		}
	}

	out, err := cfg.Export(active)
	if err != nil {
		return nil, false, err
	}
	return out, cfg.Migrated, nil
}

func showConfig(app *App, cfg *config.Config, path string) {
	w := app.stdout
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("log_level"), valueStyle.Render(string(cfg.LogLevel)))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("output_suffix"), valueStyle.Render(cfg.OutputSuffix))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("plugin_paths"))
	if len(cfg.PluginPaths) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, p := range cfg.PluginPaths {
		fmt.Fprintf(w, "  - %s\n", valueStyle.Render(p))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("update_check"))
	fmt.Fprintf(w, "  timeout: %s\n", valueStyle.Render(cfg.UpdateCheck.Timeout.String()))
	fmt.Fprintf(w, "  cache_ttl: %s\n", valueStyle.Render(cfg.UpdateCheck.CacheTTL.String()))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
}
