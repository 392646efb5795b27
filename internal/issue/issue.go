// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	ArchiveNotFoundId Id = iota + 1
	ArchiveInvalidId
	SettingsParseErrorId
	PluginValidationFailedId
	PluginDecodeFailedId
	DependenciesNotSatisfiedId
	ActionExecutionFailedId
	ConfigLoadFailedId
	UpdateCheckFailedId
	PermissionDeniedId
)

type (
	// Id identifies a well-known failure class.
	Id int

	// MarkdownMsg is the Markdown body of an Issue.
	MarkdownMsg string

	// HttpLink is an external reference shown under an Issue.
	HttpLink string

	// Issue is a long-form guide for a failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Render renders the guide with glamour using the given style
// ("dark", "light", "notty", "auto", or a JSON style path).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	archiveNotFoundIssue = &Issue{
		id: ArchiveNotFoundId,
		mdMsg: `
# Resource pack not found!

The UI resource pack archive could not be opened.

## Things you can try:
- Check the path passed to ` + "`oreui apply`" + `
- Export the ` + "`gui`" + ` folder of the game as a zip file and pass that`,
	}

	archiveInvalidIssue = &Issue{
		id: ArchiveInvalidId,
		mdMsg: `
# The resource pack is not a valid zip archive!

## Things you can try:
- Re-create the archive with a standard zip tool
- Make sure the file was not truncated during download`,
	}

	settingsParseErrorIssue = &Issue{
		id: SettingsParseErrorId,
		mdMsg: `
# Failed to read customizer settings!

The settings file must be either a current config export:

~~~json
{
  "oreUICustomizerConfig": { "hardcoreModeToggleAlwaysClickable": true },
  "oreUICustomizerVersion": "1.0.0"
}
~~~

or a legacy flat settings record with a ` + "`format_version`" + ` field.

## Things you can try:
- Run ` + "`oreui config migrate <file>`" + ` to upgrade a legacy file
- Validate the JSON syntax of the file`,
	}

	pluginValidationFailedIssue = &Issue{
		id: PluginValidationFailedId,
		mdMsg: `
# Plugin identity is invalid!

Every plugin needs a name, an ` + "`id`" + ` and ` + "`namespace`" + ` made of letters,
digits, ` + "`_`" + `, ` + "`.`" + ` and ` + "`-`" + `, a valid UUID, and semantic versions
without a leading ` + "`v`" + `. The ` + "`built-in`" + ` namespace is reserved.`,
	}

	pluginDecodeFailedIssue = &Issue{
		id: PluginDecodeFailedId,
		mdMsg: `
# Failed to decode a plugin!

## Things you can try:
- Check that the data URI is ` + "`data:<mime>;base64,<payload>`" + `
- For ` + "`.mcouicplugin`" + ` files, check that ` + "`manifest.json`" + ` has
  ` + "`format_version: 1`" + ` and that ` + "`entry`" + ` points at a script inside the archive
- Check that the entry script exports ` + "`plugin`" + ` with an ` + "`actions`" + ` array`,
	}

	dependenciesNotSatisfiedIssue = &Issue{
		id: DependenciesNotSatisfiedId,
		mdMsg: `
# Dependencies not satisfied!

A plugin, theme or config depends on a package that is missing or has an
incompatible version. A dependency is met when the supplied package has the
same major version and is at least the required version.

## Things you can try:
- Add the missing plugin with ` + "`--plugin`" + `
- Enable the required built-in plugin in the settings
- Update the dependency to a compatible release`,
	}

	actionExecutionFailedIssue = &Issue{
		id: ActionExecutionFailedId,
		mdMsg: `
# A plugin action failed!

The customization pass was aborted and no archive was written.

## Things you can try:
- Disable the failing plugin and retry
- Run with ` + "`--verbose`" + ` to see the full error chain
- Report the failure to the plugin author`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the CUE syntax of your config file
- Run ` + "`oreui config show`" + ` to see the effective configuration`,
	}

	updateCheckFailedIssue = &Issue{
		id: UpdateCheckFailedId,
		mdMsg: `
# Update check failed!

The version info URL must answer with ` + "`application/json`" + ` or ` + "`text/json`" + `
and a body shaped like:

~~~json
{ "version": "1.2.0", "url": "https://example.com/download" }
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

## Things you can try:
- Check that the output directory is writable
- Choose another output path with ` + "`--output`" + ``,
	}

	issues = map[Id]*Issue{
		archiveNotFoundIssue.Id():          archiveNotFoundIssue,
		archiveInvalidIssue.Id():           archiveInvalidIssue,
		settingsParseErrorIssue.Id():       settingsParseErrorIssue,
		pluginValidationFailedIssue.Id():   pluginValidationFailedIssue,
		pluginDecodeFailedIssue.Id():       pluginDecodeFailedIssue,
		dependenciesNotSatisfiedIssue.Id(): dependenciesNotSatisfiedIssue,
		actionExecutionFailedIssue.Id():    actionExecutionFailedIssue,
		configLoadFailedIssue.Id():         configLoadFailedIssue,
		updateCheckFailedIssue.Id():        updateCheckFailedIssue,
		permissionDeniedIssue.Id():         permissionDeniedIssue,
	}
)

// Values returns every registered issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
