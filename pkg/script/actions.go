// SPDX-License-Identifier: MPL-2.0

package script

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/oreui-customizer/oreui/pkg/plugin"
	"github.com/oreui-customizer/oreui/pkg/vzip"
)

// pluginObject picks the exported plugin: `plugin`, then `default`, then the
// module exports themselves.
func (rt *runtime) pluginObject(exports goja.Value) *goja.Object {
	if !isObject(exports) {
		return nil
	}
	obj := exports.ToObject(rt.vm)
	for _, name := range []string{"plugin", "default"} {
		if v := obj.Get(name); isObject(v) {
			return v.ToObject(rt.vm)
		}
	}
	return obj
}

func (rt *runtime) extractActions(exports goja.Value) ([]plugin.Action, error) {
	obj := rt.pluginObject(exports)
	if obj == nil {
		return nil, ErrInvalidExport
	}
	list := obj.Get("actions")
	if !isObject(list) || list.ToObject(rt.vm).ClassName() != "Array" {
		return nil, ErrInvalidExport
	}
	arr := list.ToObject(rt.vm)
	n := int(arr.Get("length").ToInteger())

	actions := make([]plugin.Action, 0, n)
	for i := range n {
		a, err := rt.toAction(i, arr.Get(fmt.Sprint(i)))
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// toAction validates one actions[] element. The callback's declared
// parameter count must fit its context: per-file callbacks take the content
// first, global callbacks take at most the filesystem.
func (rt *runtime) toAction(i int, v goja.Value) (plugin.Action, error) {
	if !isObject(v) {
		return nil, &InvalidActionError{Index: i, Reason: "not an object"}
	}
	obj := v.ToObject(rt.vm)

	idVal := obj.Get("id")
	if !isString(idVal) || !plugin.ValidActionID(idVal.String()) {
		return nil, &InvalidActionError{Index: i, Reason: "id must be a string matching [A-Za-z0-9_.-]+"}
	}
	id := idVal.String()

	ctxVal := obj.Get("context")
	if !isString(ctxVal) {
		return nil, &InvalidActionError{Index: i, ID: id, Reason: "context must be a string"}
	}
	actionCtx := plugin.Context(ctxVal.String())
	if ok, errs := actionCtx.IsValid(); !ok {
		return nil, &InvalidActionError{Index: i, ID: id, Reason: errs[0].Error()}
	}

	fnVal := obj.Get("action")
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, &InvalidActionError{Index: i, ID: id, Reason: "action must be a function"}
	}
	arity := fnVal.ToObject(rt.vm).Get("length").ToInteger()

	switch actionCtx {
	case plugin.ContextPerTextFile:
		if arity < 1 {
			return nil, &InvalidActionError{Index: i, ID: id, Reason: "per_text_file action must accept the file content"}
		}
		return plugin.PerTextFileAction{ID: id, Fn: rt.textFunc(fn)}, nil
	case plugin.ContextPerBinaryFile:
		if arity < 1 {
			return nil, &InvalidActionError{Index: i, ID: id, Reason: "per_binary_file action must accept the file content"}
		}
		return plugin.PerBinaryFileAction{ID: id, Fn: rt.binaryFunc(fn)}, nil
	case plugin.ContextGlobalBefore:
		if arity > 1 {
			return nil, &InvalidActionError{Index: i, ID: id, Reason: "global_before action takes only the filesystem"}
		}
		return plugin.GlobalBeforeAction{ID: id, Fn: rt.globalFunc(fn)}, nil
	default:
		if arity > 1 {
			return nil, &InvalidActionError{Index: i, ID: id, Reason: "global action takes only the filesystem"}
		}
		return plugin.GlobalAction{ID: id, Fn: rt.globalFunc(fn)}, nil
	}
}

func (rt *runtime) textFunc(fn goja.Callable) plugin.TextFunc {
	return func(_ context.Context, content string, entry *vzip.Entry, fs *vzip.FS) (string, error) {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		res, err := rt.call(fn, rt.vm.ToValue(content), rt.entryValue(entry), rt.fsValue(fs))
		if err != nil {
			return "", err
		}
		if !isString(res) {
			return "", fmt.Errorf("per_text_file action returned %s, want string", typeOf(res))
		}
		return res.String(), nil
	}
}

func (rt *runtime) binaryFunc(fn goja.Callable) plugin.BinaryFunc {
	return func(_ context.Context, content []byte, entry *vzip.Entry, fs *vzip.FS) ([]byte, error) {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		buf := rt.vm.NewArrayBuffer(append([]byte(nil), content...))
		res, err := rt.call(fn, rt.vm.ToValue(buf), rt.entryValue(entry), rt.fsValue(fs))
		if err != nil {
			return nil, err
		}
		out, ok := toBytes(res)
		if !ok {
			return nil, fmt.Errorf("per_binary_file action returned %s, want ArrayBuffer or Uint8Array", typeOf(res))
		}
		return out, nil
	}
}

func (rt *runtime) globalFunc(fn goja.Callable) plugin.GlobalFunc {
	return func(_ context.Context, fs *vzip.FS) error {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		_, err := rt.call(fn, rt.fsValue(fs))
		return err
	}
}

// call invokes fn and settles a returned promise. goja drains its job queue
// when the outermost call returns, so a promise that is still pending here
// can never settle.
func (rt *runtime) call(fn goja.Callable, args ...goja.Value) (goja.Value, error) {
	res, err := fn(goja.Undefined(), args...)
	if err != nil {
		return nil, &ScriptError{Path: rt.path, Err: err}
	}
	p, ok := res.Export().(*goja.Promise)
	if !ok {
		return res, nil
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return p.Result(), nil
	case goja.PromiseStateRejected:
		return nil, &ScriptError{Path: rt.path, Err: fmt.Errorf("promise rejected: %s", describeRejection(p.Result()))}
	default:
		return nil, &ScriptError{Path: rt.path, Err: fmt.Errorf("promise did not settle")}
	}
}
