// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oreui-customizer/oreui/internal/config"
	"github.com/oreui-customizer/oreui/pkg/decode"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/semver"
	"github.com/oreui-customizer/oreui/pkg/settings"
	"github.com/oreui-customizer/oreui/pkg/updatecheck"
)

// updateTarget is a package that can be checked for updates.
type updateTarget struct {
	name    string
	version semver.Version
	source  manifest.UpdateSource
}

func newCheckUpdatesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check-updates <file>",
		Short: "Check a plugin, theme or settings file for a newer release",
		Long: `Check a package for a newer release.

The file can be a plugin (.js with details sidecar, .mcouicplugin or
encoded .json), a plugin or theme manifest, or a settings file. Only
packages with checkForUpdatesDetails can be checked here; marketplace
packages are updated through the marketplace.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := readUpdateTarget(args[0])
			if err != nil {
				return app.fail(cmd, err, "read package", args[0])
			}
			if _, ok := target.source.(manifest.MarketplaceSource); ok {
				fmt.Fprintf(app.stdout, "%s %s is updated through the marketplace\n", SubtitleStyle.Render("-"), target.name)
				return nil
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.UpdateCheck.Timeout)
			defer cancel()
			checker := updatecheck.New(
				updatecheck.WithCacheTTL(app.cfg.UpdateCheck.CacheTTL),
				updatecheck.WithUserAgent(config.AppName+"/"+Version),
				updatecheck.WithLogger(app.logger),
			)
			res, err := checker.Check(ctx, target.source, target.version)
			if err != nil {
				return app.fail(cmd, err, "check for updates", target.name)
			}

			if !res.Available {
				fmt.Fprintf(app.stdout, "%s %s %s is up to date\n", SuccessStyle.Render("✓"), target.name, res.Current)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s %s %s -> %s\n", WarningStyle.Render("↑"), target.name, res.Current, SuccessStyle.Render(res.Latest.String()))
			fmt.Fprintf(app.stdout, "  %s\n", CmdStyle.Render(res.URL))
			return nil
		},
	}
}

// readUpdateTarget reads the identity and update source of the package in
// path. JSON documents are tried as plugin manifest, theme manifest,
// encoded plugin and settings file in that order.
func readUpdateTarget(path string) (updateTarget, error) {
	if !strings.HasSuffix(path, decode.EncodedSuffix) || strings.HasSuffix(path, decode.DetailsSidecarSuffix) {
		if strings.HasSuffix(path, decode.DetailsSidecarSuffix) {
			path = strings.TrimSuffix(path, decode.DetailsSidecarSuffix) + decode.ScriptSuffix
		}
		enc, err := decode.EncodeFile(path)
		if err != nil {
			return updateTarget{}, err
		}
		return updateTarget{name: enc.Name, version: enc.Version, source: enc.UpdateSource()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return updateTarget{}, err
	}
	var errs []error
	pm, err := manifest.ParsePluginManifest(data, path)
	if err == nil {
		d := pm.Details()
		return updateTarget{name: d.Name, version: d.Version, source: d.UpdateSource()}, nil
	}
	errs = append(errs, err)

	tm, err := manifest.ParseThemeManifest(data, path)
	if err == nil {
		return updateTarget{name: tm.Header.Name, version: tm.Header.Version, source: tm.UpdateSource()}, nil
	}
	errs = append(errs, err)

	enc, err := manifest.ParseEncodedPluginData(data, path)
	if err == nil {
		return updateTarget{name: enc.Name, version: enc.Version, source: enc.UpdateSource()}, nil
	}
	errs = append(errs, err)

	cfg, err := settings.NewSession().Load(data, path)
	if err != nil {
		return updateTarget{}, errors.Join(append(errs, err)...)
	}
	return updateTarget{name: cfg.Metadata.Name, version: cfg.Metadata.Version, source: cfg.UpdateSource()}, nil
}
