// SPDX-License-Identifier: MPL-2.0

package script

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/oreui-customizer/oreui/pkg/vzip"
)

// entryInfo is the read-only view of an entry handed to per-file actions.
// Field names are exposed lower-cased.
type entryInfo struct {
	Name      string
	Directory bool
	Kind      string
	Size      int64
}

func (rt *runtime) entryValue(e *vzip.Entry) goja.Value {
	if e == nil {
		return goja.Undefined()
	}
	return rt.vm.ToValue(entryInfo{Name: e.Name(), Directory: e.IsDir(), Kind: e.Kind().String(), Size: e.Size()})
}

// fsValue exposes the filesystem's mutation surface to scripts. Go errors
// surface as JavaScript exceptions.
func (rt *runtime) fsValue(fs *vzip.FS) goja.Value {
	vm := rt.vm
	obj := vm.NewObject()
	set := func(name string, fn any) {
		if err := obj.Set(name, fn); err != nil {
			panic(err)
		}
	}
	set("readText", fs.ReadText)
	set("readBinary", func(p string) (goja.Value, error) {
		b, err := fs.ReadBinary(p)
		if err != nil {
			return nil, err
		}
		return vm.ToValue(vm.NewArrayBuffer(b)), nil
	})
	set("writeText", fs.WriteText)
	set("writeBinary", func(p string, data goja.Value) error {
		b, ok := toBytes(data)
		if !ok {
			return fmt.Errorf("writeBinary %s: unsupported content %s", p, typeOf(data))
		}
		return fs.WriteBinary(p, b)
	})
	set("exists", fs.Exists)
	set("remove", fs.Remove)
	set("addText", fs.InsertText)
	set("addBinary", func(p string, data goja.Value) error {
		b, ok := toBytes(data)
		if !ok {
			return fmt.Errorf("addBinary %s: unsupported content %s", p, typeOf(data))
		}
		return fs.Insert(p, b)
	})
	set("list", func(prefix string) []string {
		var out []string
		for _, p := range fs.Paths() {
			if strings.HasPrefix(p, prefix) {
				out = append(out, p)
			}
		}
		return out
	})
	return obj
}

func (rt *runtime) installConsole() {
	console := rt.vm.NewObject()
	logAt := func(fn func(any, ...any)) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, a := range call.Arguments {
				parts[i] = a.String()
			}
			fn(strings.Join(parts, " "))
			return goja.Undefined()
		}
	}
	_ = console.Set("log", logAt(rt.logger.Info))
	_ = console.Set("info", logAt(rt.logger.Info))
	_ = console.Set("debug", logAt(rt.logger.Debug))
	_ = console.Set("warn", logAt(rt.logger.Warn))
	_ = console.Set("error", logAt(rt.logger.Error))
	_ = rt.vm.Set("console", console)
}
