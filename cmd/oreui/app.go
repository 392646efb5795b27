// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/oreui-customizer/oreui/internal/config"
	"github.com/oreui-customizer/oreui/pkg/customizer"
)

type (
	// App wires CLI services and shared state. Command handlers receive an
	// App and read configuration, the logger and output streams from it.
	App struct {
		Config config.Provider
		stdout io.Writer
		stderr io.Writer

		// set by persistent flags
		verbose    bool
		configFile string

		cfg     *config.Config
		cfgPath string
		logger  *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
	}
)

// NewApp builds an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		cfg:    config.DefaultConfig(),
		logger: log.New(io.Discard),
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// init loads the application config and builds the logger. A config that
// fails to load is reported and defaults are used instead.
func (a *App) init(ctx context.Context) {
	cfg, path, err := config.LoadWithPath(ctx, config.LoadOptions{ConfigFilePath: a.configFile})
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg, path = config.DefaultConfig(), ""
	}
	a.cfg, a.cfgPath = cfg, path
	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}

	level := cfg.LogLevel.Level()
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix:          config.AppName,
		Level:           level,
		ReportTimestamp: a.verbose,
	})
}

// pluginDirs returns the configured plugin directories followed by the
// default one inside the config directory.
func (a *App) pluginDirs() []string {
	dirs := slices.Clone(a.cfg.PluginPaths)
	if def, err := config.PluginsDir(""); err == nil && !slices.Contains(dirs, def) {
		dirs = append(dirs, def)
	}
	return dirs
}

func (a *App) catalog() (*customizer.Catalog, error) {
	return customizer.LoadCatalog(a.pluginDirs(), customizer.WithCatalogLogger(a.logger))
}
