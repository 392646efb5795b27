// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/oreui-customizer/oreui/pkg/builtin"
	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/settings"
)

func newBuiltinsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List the built-in plugins and their reserved UUIDs",
		Long: `List the built-in plugins in the order they run.

Built-ins live in the "` + string(manifest.ReservedNamespace) + `" namespace and always run before
user plugins. User plugins can depend on them by UUID.`,
		Args: cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			printBuiltins(app.stdout)
			return nil
		},
	}
}

func printBuiltins(w io.Writer) {
	defaults := settings.Defaults()
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("ID", "UUID", "DEFAULT", "DESCRIPTION")

	for _, def := range builtin.Catalog() {
		state := "off"
		if def.Enabled(&defaults) {
			state = "on"
		}
		t.Row(string(def.ID), builtin.UUID(def.ID).String(), state, def.Description)
	}
	fmt.Fprintln(w, TitleStyle.Render("Built-in plugins"))
	fmt.Fprintln(w, t.Render())
}
