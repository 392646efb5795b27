// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"errors"
	"fmt"

	"github.com/oreui-customizer/oreui/pkg/manifest"
	"github.com/oreui-customizer/oreui/pkg/plugin"
)

// ErrActionExecution is the sentinel error wrapped by ActionExecutionError.
var ErrActionExecution = errors.New("plugin action failed")

// ActionExecutionError attributes a failed pass to one action.
type ActionExecutionError struct {
	PluginID  manifest.ID
	Namespace manifest.Namespace
	ActionID  string
	Stage     plugin.Context
	// Path is the entry being processed; empty for global stages.
	Path string
	Err  error
}

func (e *ActionExecutionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s action %s:%s/%s failed on %s: %v", e.Stage, e.Namespace, e.PluginID, e.ActionID, e.Path, e.Err)
	}
	return fmt.Sprintf("%s action %s:%s/%s failed: %v", e.Stage, e.Namespace, e.PluginID, e.ActionID, e.Err)
}

// Unwrap returns ErrActionExecution and the cause.
func (e *ActionExecutionError) Unwrap() []error { return []error{ErrActionExecution, e.Err} }
