// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved, and
// remediation hints. Issues are longer Markdown guides, rendered with
// glamour, that the CLI prints for well-known failure classes such as an
// unsatisfied plugin dependency or a failing plugin action.
package issue
