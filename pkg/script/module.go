// SPDX-License-Identifier: MPL-2.0

package script

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/dop251/goja"
)

var (
	exportDefaultPattern = regexp.MustCompile(`(?m)^(\s*)export\s+default\s+`)
	exportDeclPattern    = regexp.MustCompile(`(?m)^(\s*)export\s+(const|let|var)\s+([A-Za-z_$][\w$]*)\s*=`)
	exportFuncPattern    = regexp.MustCompile(`(?m)^(\s*)export\s+(async\s+)?function(\s*\*?\s*)([A-Za-z_$][\w$]*)`)
	exportListPattern    = regexp.MustCompile(`(?m)^(\s*)export\s*\{([^}]*)\}\s*;?`)
)

type moduleLoader struct {
	rt      *runtime
	modules ModuleReader
	cache   map[string]*goja.Object
}

func newModuleLoader(rt *runtime, modules ModuleReader) *moduleLoader {
	return &moduleLoader{rt: rt, modules: modules, cache: make(map[string]*goja.Object)}
}

// rewriteESM turns top-level export statements into CommonJS assignments.
// Only the forms plugin entry scripts use in practice are handled.
func rewriteESM(code string) string {
	code = exportDeclPattern.ReplaceAllString(code, "${1}${2} ${3} = exports.${3} =")
	code = exportFuncPattern.ReplaceAllString(code, "${1}exports.${4} = ${2}function${3}${4}")
	code = exportDefaultPattern.ReplaceAllString(code, "${1}exports.default = ")
	return exportListPattern.ReplaceAllStringFunc(code, func(stmt string) string {
		m := exportListPattern.FindStringSubmatch(stmt)
		var b strings.Builder
		b.WriteString(m[1])
		for _, item := range strings.Split(m[2], ",") {
			local, exported, found := strings.Cut(strings.TrimSpace(item), " as ")
			local = strings.TrimSpace(local)
			if local == "" {
				continue
			}
			if !found {
				exported = local
			}
			fmt.Fprintf(&b, "exports.%s = %s; ", strings.TrimSpace(exported), local)
		}
		return b.String()
	})
}

// evaluate runs code as the module at modPath and returns module.exports.
func (l *moduleLoader) evaluate(modPath, code string) (goja.Value, error) {
	vm := l.rt.vm
	wrapped := "(function (exports, module, require) {\n" + rewriteESM(code) + "\n})"
	prog, err := goja.Compile(modPath, wrapped, false)
	if err != nil {
		return nil, err
	}
	fnVal, err := vm.RunProgram(prog)
	if err != nil {
		return nil, err
	}
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return nil, errors.New("module wrapper is not callable")
	}

	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}
	l.cache[modPath] = module
	require := func(call goja.FunctionCall) goja.Value {
		spec := call.Argument(0).String()
		v, err := l.require(modPath, spec)
		if err != nil {
			panic(vm.NewGoError(err))
		}
		return v
	}
	if _, err := fn(goja.Undefined(), exports, module, vm.ToValue(require)); err != nil {
		delete(l.cache, modPath)
		return nil, err
	}
	return module.Get("exports"), nil
}

// require resolves spec relative to the requiring module. Only relative
// specifiers inside the package are supported.
func (l *moduleLoader) require(from, spec string) (goja.Value, error) {
	if l.modules == nil || !(strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")) {
		return nil, fmt.Errorf("%w: %q", ErrModuleNotFound, spec)
	}
	base := path.Clean(path.Join(path.Dir(from), spec))
	if base == ".." || strings.HasPrefix(base, "../") {
		return nil, fmt.Errorf("%w: %q escapes the package", ErrModuleNotFound, spec)
	}
	for _, candidate := range []string{base, base + ".js", base + ".json", path.Join(base, "index.js")} {
		if mod, ok := l.cache[candidate]; ok {
			return mod.Get("exports"), nil
		}
		code, err := l.modules.ReadText(candidate)
		if err != nil {
			continue
		}
		if strings.HasSuffix(candidate, ".json") {
			return l.parseJSON(candidate, code)
		}
		return l.evaluate(candidate, code)
	}
	return nil, fmt.Errorf("%w: %q from %s", ErrModuleNotFound, spec, from)
}

func (l *moduleLoader) parseJSON(modPath, code string) (goja.Value, error) {
	vm := l.rt.vm
	parse, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("parse"))
	if !ok {
		return nil, errors.New("JSON.parse unavailable")
	}
	v, err := parse(goja.Undefined(), vm.ToValue(code))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", modPath, err)
	}
	module := vm.NewObject()
	if err := module.Set("exports", v); err != nil {
		return nil, err
	}
	l.cache[modPath] = module
	return v, nil
}
