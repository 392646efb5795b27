// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

type (
	// Engine runs application passes.
	Engine struct {
		logger *log.Logger
	}

	// Option configures an Engine.
	Option func(*Engine)

	// Result is the outcome of a successful pass.
	Result struct {
		Archive []byte
		Stats   Stats
	}

	// Stats counts the work of one pass.
	Stats struct {
		Stages []StageStats
	}

	// StageStats counts the work of one stage.
	StageStats struct {
		Stage    plugin.Context
		Actions  int
		Calls    int
		Visited  int
		Changed  int
		Duration time.Duration
	}

	// boundAction is an action with the plugin that declared it.
	boundAction struct {
		plugin *plugin.Plugin
		action plugin.Action
	}
)

// WithLogger sets the engine logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply opens archive, runs one pass and serializes the result. On failure
// no archive is returned.
func (e *Engine) Apply(ctx context.Context, archive []byte, plugins []*plugin.Plugin) (*Result, error) {
	fs, err := vzip.Open(archive)
	if err != nil {
		return nil, err
	}
	stats, err := e.Run(ctx, fs, plugins)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := fs.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("serialize archive: %w", err)
	}
	return &Result{Archive: buf.Bytes(), Stats: stats}, nil
}

// Run applies plugins to fs in place. fs is left partially modified when an
// action fails.
func (e *Engine) Run(ctx context.Context, fs *vzip.FS, plugins []*plugin.Plugin) (Stats, error) {
	var stats Stats
	for _, stage := range plugin.Contexts() {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("before %s stage: %w", stage, err)
		}
		bound := collect(plugins, stage)
		st := StageStats{Stage: stage, Actions: len(bound)}
		start := time.Now()
		e.logger.Debug("stage start", "stage", stage, "actions", len(bound))

		var err error
		switch stage {
		case plugin.ContextGlobalBefore, plugin.ContextGlobal:
			err = e.runGlobal(ctx, fs, stage, bound, &st)
		case plugin.ContextPerBinaryFile:
			err = runPerFile(ctx, e, fs, stage, vzip.Binary, bound, &st, fs.ReadBinary, fs.WriteBinary, bytes.Equal, callBinary)
		case plugin.ContextPerTextFile:
			err = runPerFile(ctx, e, fs, stage, vzip.Text, bound, &st, fs.ReadText, fs.WriteText, func(a, b string) bool { return a == b }, callText)
		}
		st.Duration = time.Since(start)
		stats.Stages = append(stats.Stages, st)
		if err != nil {
			return stats, err
		}
		e.logger.Debug("stage done", "stage", stage, "visited", st.Visited, "changed", st.Changed, "duration", st.Duration)
	}
	return stats, nil
}

func collect(plugins []*plugin.Plugin, stage plugin.Context) []boundAction {
	var out []boundAction
	for _, p := range plugins {
		for _, a := range p.ActionsFor(stage) {
			out = append(out, boundAction{plugin: p, action: a})
		}
	}
	return out
}

func (e *Engine) runGlobal(ctx context.Context, fs *vzip.FS, stage plugin.Context, bound []boundAction, st *StageStats) error {
	for _, b := range bound {
		e.logger.Debug("run action", "stage", stage, "plugin", b.plugin.Key(), "action", b.action.ActionID())
		st.Calls++
		err := guard(func() error {
			switch a := b.action.(type) {
			case plugin.GlobalBeforeAction:
				return a.Fn(ctx, fs)
			case plugin.GlobalAction:
				return a.Fn(ctx, fs)
			default:
				return fmt.Errorf("action of type %T in %s stage", a, stage)
			}
		})
		if err != nil {
			return failure(b, stage, "", err)
		}
	}
	return nil
}

// runPerFile visits every entry of kind present when the stage starts and
// threads its content through bound.
func runPerFile[T any](
	ctx context.Context,
	e *Engine,
	fs *vzip.FS,
	stage plugin.Context,
	kind vzip.Kind,
	bound []boundAction,
	st *StageStats,
	read func(string) (T, error),
	write func(string, T) error,
	equal func(a, b T) bool,
	call func(context.Context, plugin.Action, T, *vzip.Entry, *vzip.FS) (T, error),
) error {
	if len(bound) == 0 {
		return nil
	}
	for _, p := range fs.Paths() {
		entry, ok := fs.Stat(p)
		if !ok || entry.IsDir() || entry.Kind() != kind {
			continue
		}
		original, err := read(p)
		if err != nil {
			return fmt.Errorf("%s stage: %w", stage, err)
		}
		st.Visited++

		acc := original
		for _, b := range bound {
			st.Calls++
			var next T
			err := guard(func() error {
				var callErr error
				next, callErr = call(ctx, b.action, acc, entry, fs)
				return callErr
			})
			if err != nil {
				return failure(b, stage, p, err)
			}
			acc = next
		}

		if equal(acc, original) || !fs.Exists(p) {
			continue
		}
		if err := write(p, acc); err != nil {
			return fmt.Errorf("%s stage: %w", stage, err)
		}
		st.Changed++
		e.logger.Debug("entry updated", "stage", stage, "path", p)
	}
	return nil
}

func callText(ctx context.Context, a plugin.Action, content string, entry *vzip.Entry, fs *vzip.FS) (string, error) {
	t, ok := a.(plugin.PerTextFileAction)
	if !ok {
		return "", fmt.Errorf("action of type %T in %s stage", a, plugin.ContextPerTextFile)
	}
	return t.Fn(ctx, content, entry, fs)
}

func callBinary(ctx context.Context, a plugin.Action, content []byte, entry *vzip.Entry, fs *vzip.FS) ([]byte, error) {
	b, ok := a.(plugin.PerBinaryFileAction)
	if !ok {
		return nil, fmt.Errorf("action of type %T in %s stage", a, plugin.ContextPerBinaryFile)
	}
	return b.Fn(ctx, content, entry, fs)
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func failure(b boundAction, stage plugin.Context, path string, err error) error {
	return &ActionExecutionError{
		PluginID:  b.plugin.ID,
		Namespace: b.plugin.Namespace,
		ActionID:  b.action.ActionID(),
		Stage:     stage,
		Path:      path,
		Err:       err,
	}
}
