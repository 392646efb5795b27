// SPDX-License-Identifier: MPL-2.0

package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dop251/goja"

	"github.com/oreui-customizer/oreui/pkg/plugin"
)

// DefaultLoadTimeout bounds the top-level evaluation of an entry script.
const DefaultLoadTimeout = 10 * time.Second

var (
	// ErrScript is the sentinel error wrapped by ScriptError.
	ErrScript = errors.New("script error")
	// ErrInvalidExport is returned when a script exports no actions array.
	ErrInvalidExport = errors.New("script does not export a plugin with an actions array")
	// ErrInvalidAction is the sentinel error wrapped by InvalidActionError.
	ErrInvalidAction = errors.New("invalid plugin action")
	// ErrModuleNotFound is returned by require for unresolvable specifiers.
	ErrModuleNotFound = errors.New("module not found")
)

type (
	// Host loads entry scripts.
	Host struct {
		logger      *log.Logger
		loadTimeout time.Duration
	}

	// Option configures a Host.
	Option func(*Host)

	// ModuleReader reads sibling modules for require. vzip.FS satisfies it.
	ModuleReader interface {
		ReadText(path string) (string, error)
	}

	// Source is an entry script to load.
	Source struct {
		// Path is the script's path inside its package; relative require
		// specifiers resolve against its directory.
		Path string
		Code string
		// Modules serves require; nil disables require.
		Modules ModuleReader
	}

	// ScriptError is a JavaScript exception or evaluation failure.
	ScriptError struct {
		Path string
		Err  error
	}

	// InvalidActionError describes a malformed element of the actions array.
	InvalidActionError struct {
		Index  int
		ID     string
		Reason string
	}

	// runtime is one goja VM with its call lock.
	runtime struct {
		mu     sync.Mutex
		vm     *goja.Runtime
		path   string
		logger *log.Logger
	}
)

// WithLogger sets the logger used for script console output.
func WithLogger(l *log.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithLoadTimeout bounds top-level script evaluation. Zero disables the bound.
func WithLoadTimeout(d time.Duration) Option {
	return func(h *Host) { h.loadTimeout = d }
}

// NewHost returns a Host.
func NewHost(opts ...Option) *Host {
	h := &Host{logger: log.New(io.Discard), loadTimeout: DefaultLoadTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (e *ScriptError) Error() string { return fmt.Sprintf("script %s: %v", e.Path, e.Err) }

// Unwrap returns ErrScript and the underlying cause.
func (e *ScriptError) Unwrap() []error { return []error{ErrScript, e.Err} }

func (e *InvalidActionError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("actions[%d] (%s): %s", e.Index, e.ID, e.Reason)
	}
	return fmt.Sprintf("actions[%d]: %s", e.Index, e.Reason)
}

func (e *InvalidActionError) Unwrap() error { return ErrInvalidAction }

// Load evaluates src in a fresh runtime and returns its validated actions.
// Evaluation is interrupted when ctx is done or the load timeout elapses.
func (h *Host) Load(ctx context.Context, src Source) ([]plugin.Action, error) {
	rt := &runtime{vm: goja.New(), path: src.Path, logger: h.logger.With("script", src.Path)}
	rt.vm.SetFieldNameMapper(goja.UncapFieldNameMapper())
	rt.installConsole()

	if h.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.loadTimeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, func() { rt.vm.Interrupt(context.Cause(ctx)) })
	defer func() {
		stop()
		rt.vm.ClearInterrupt()
	}()

	loader := newModuleLoader(rt, src.Modules)
	exports, err := loader.evaluate(src.Path, src.Code)
	if err != nil {
		return nil, &ScriptError{Path: src.Path, Err: err}
	}
	return rt.extractActions(exports)
}
