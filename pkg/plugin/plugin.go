// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"fmt"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/semver"
)

// EngineVersion is the version plugins and configs declare
// min_engine_version and oreUICustomizerVersion against.
const EngineVersion semver.Version = "1.0.0"

// ErrValidation is the sentinel error wrapped by ValidationError.
var ErrValidation = errors.New("plugin validation failed")

type (
	// Plugin is a decoded, executable plugin.
	Plugin struct {
		manifest.PluginDetails
		Actions []Action
		// BuiltIn marks plugins shipped with the engine. Only built-ins may use
		// the reserved namespace.
		BuiltIn bool
	}

	// ValidationError reports malformed identity fields, bad versions, a
	// reserved namespace or malformed actions.
	ValidationError struct {
		ID          manifest.ID
		Namespace   manifest.Namespace
		FieldErrors []error
	}
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("plugin %s:%s is invalid: %v", e.Namespace, e.ID, errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrValidation followed by the field errors.
func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrValidation}, e.FieldErrors...)
}

// Key returns "namespace:id", the identity used in diagnostics.
func (p *Plugin) Key() string { return string(p.Namespace) + ":" + string(p.ID) }

// ActionsFor returns the plugin's actions of one context in declared order.
func (p *Plugin) ActionsFor(c Context) []Action {
	var out []Action
	for _, a := range p.Actions {
		if a.Context() == c {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks identity and actions. Built-in plugins must use the
// reserved namespace; user plugins must not.
func (p *Plugin) Validate() error {
	var errs []error
	if p.BuiltIn {
		errs = append(errs, validateBuiltInDetails(p.PluginDetails)...)
	} else if ok, fieldErrs := p.PluginDetails.IsValid(); !ok {
		errs = append(errs, unwrapDetails(fieldErrs)...)
	}
	errs = append(errs, validateActions(p.Actions)...)
	if len(errs) > 0 {
		return &ValidationError{ID: p.ID, Namespace: p.Namespace, FieldErrors: errs}
	}
	return nil
}

func unwrapDetails(errs []error) []error {
	var out []error
	for _, err := range errs {
		var detailsErr *manifest.InvalidDetailsError
		if errors.As(err, &detailsErr) {
			out = append(out, detailsErr.FieldErrors...)
			continue
		}
		out = append(out, err)
	}
	return out
}

func validateBuiltInDetails(d manifest.PluginDetails) []error {
	var errs []error
	if d.Namespace != manifest.ReservedNamespace {
		errs = append(errs, fmt.Errorf("built-in plugin namespace must be %q", manifest.ReservedNamespace))
	}
	if ok, fieldErrs := d.ID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	if ok, fieldErrs := d.UUID.IsValid(); !ok {
		errs = append(errs, fieldErrs...)
	}
	for _, v := range []semver.Version{d.Version, d.FormatVersion} {
		if ok, fieldErrs := v.IsValid(); !ok {
			errs = append(errs, fieldErrs...)
		}
	}
	return errs
}

func validateActions(actions []Action) []error {
	var errs []error
	seen := make(map[string]struct{}, len(actions))
	for i, a := range actions {
		if a == nil {
			errs = append(errs, fmt.Errorf("actions[%d] is nil", i))
			continue
		}
		id := a.ActionID()
		if !ValidActionID(id) {
			errs = append(errs, &InvalidActionIDError{Value: id, Reason: "must match [A-Za-z0-9_.-]+"})
		} else if _, dup := seen[id]; dup {
			errs = append(errs, &InvalidActionIDError{Value: id, Reason: "duplicate"})
		}
		seen[id] = struct{}{}
		if !hasCallback(a) {
			errs = append(errs, fmt.Errorf("action %q has no callback", id))
		}
	}
	return errs
}
