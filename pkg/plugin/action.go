// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/oreui-customizer/oreui/pkg/vzip"
)

const (
	// ContextPerTextFile runs once per text entry with the text accumulator.
	ContextPerTextFile Context = "per_text_file"
	// ContextPerBinaryFile runs once per binary entry with the byte
	// accumulator.
	ContextPerBinaryFile Context = "per_binary_file"
	// ContextGlobalBefore runs once before the per-file stages.
	ContextGlobalBefore Context = "global_before"
	// ContextGlobal runs once after the per-file stages.
	ContextGlobal Context = "global"
)

var (
	// ErrInvalidContext is the sentinel error wrapped by InvalidContextError.
	ErrInvalidContext = errors.New("invalid action context")
	// ErrInvalidActionID is the sentinel error wrapped by InvalidActionIDError.
	ErrInvalidActionID = errors.New("invalid action id")

	actionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

type (
	// Context names the stage an action runs in.
	Context string

	// InvalidContextError is returned for an unknown action context.
	InvalidContextError struct {
		Value Context
	}

	// InvalidActionIDError is returned for a malformed or duplicate action id.
	InvalidActionIDError struct {
		Value  string
		Reason string
	}

	// TextFunc transforms the text content of one entry.
	TextFunc func(ctx context.Context, content string, entry *vzip.Entry, fs *vzip.FS) (string, error)

	// BinaryFunc transforms the binary content of one entry.
	BinaryFunc func(ctx context.Context, content []byte, entry *vzip.Entry, fs *vzip.FS) ([]byte, error)

	// GlobalFunc operates on the whole filesystem.
	GlobalFunc func(ctx context.Context, fs *vzip.FS) error

	// Action is one of PerTextFileAction, PerBinaryFileAction,
	// GlobalBeforeAction or GlobalAction.
	Action interface {
		ActionID() string
		Context() Context
		isAction()
	}

	// PerTextFileAction runs in the per_text_file stage.
	PerTextFileAction struct {
		ID string
		Fn TextFunc
	}

	// PerBinaryFileAction runs in the per_binary_file stage.
	PerBinaryFileAction struct {
		ID string
		Fn BinaryFunc
	}

	// GlobalBeforeAction runs in the global_before stage.
	GlobalBeforeAction struct {
		ID string
		Fn GlobalFunc
	}

	// GlobalAction runs in the global stage.
	GlobalAction struct {
		ID string
		Fn GlobalFunc
	}
)

// Contexts returns the action contexts in stage order.
func Contexts() []Context {
	return []Context{ContextGlobalBefore, ContextPerBinaryFile, ContextPerTextFile, ContextGlobal}
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("invalid action context %q (expected one of %q)", e.Value, Contexts())
}

func (e *InvalidContextError) Unwrap() error { return ErrInvalidContext }

func (e *InvalidActionIDError) Error() string {
	return fmt.Sprintf("invalid action id %q: %s", e.Value, e.Reason)
}

func (e *InvalidActionIDError) Unwrap() error { return ErrInvalidActionID }

// IsValid reports whether c is one of the four stage contexts.
func (c Context) IsValid() (bool, []error) {
	switch c {
	case ContextPerTextFile, ContextPerBinaryFile, ContextGlobalBefore, ContextGlobal:
		return true, nil
	default:
		return false, []error{&InvalidContextError{Value: c}}
	}
}

func (c Context) String() string { return string(c) }

// ValidActionID reports whether id is a well-formed action id.
func ValidActionID(id string) bool { return actionIDPattern.MatchString(id) }

func (a PerTextFileAction) ActionID() string   { return a.ID }
func (a PerBinaryFileAction) ActionID() string { return a.ID }
func (a GlobalBeforeAction) ActionID() string  { return a.ID }
func (a GlobalAction) ActionID() string        { return a.ID }

func (PerTextFileAction) Context() Context   { return ContextPerTextFile }
func (PerBinaryFileAction) Context() Context { return ContextPerBinaryFile }
func (GlobalBeforeAction) Context() Context  { return ContextGlobalBefore }
func (GlobalAction) Context() Context        { return ContextGlobal }

func (PerTextFileAction) isAction()   {}
func (PerBinaryFileAction) isAction() {}
func (GlobalBeforeAction) isAction()  {}
func (GlobalAction) isAction()        {}

func hasCallback(a Action) bool {
	switch a := a.(type) {
	case PerTextFileAction:
		return a.Fn != nil
	case PerBinaryFileAction:
		return a.Fn != nil
	case GlobalBeforeAction:
		return a.Fn != nil
	case GlobalAction:
		return a.Fn != nil
	default:
		return false
	}
}
