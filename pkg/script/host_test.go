// SPDX-License-Identifier: MPL-2.0

package script

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oreui-customizer/oreui/internal/testutil"
	"github.com/oreui-customizer/oreui/pkg/plugin"
)

func load(t *testing.T, code string) []plugin.Action {
	t.Helper()
	actions, err := NewHost().Load(t.Context(), Source{Path: "index.js", Code: code})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return actions
}

func runText(t *testing.T, a plugin.Action, content string) (string, error) {
	t.Helper()
	text, ok := a.(plugin.PerTextFileAction)
	if !ok {
		t.Fatalf("action %s is %T, want PerTextFileAction", a.ActionID(), a)
	}
	fs := testutil.NewFS(t, map[string]string{"a.css": content})
	entry, _ := fs.Stat("a.css")
	return text.Fn(context.Background(), content, entry, fs)
}

func TestLoad_ExportForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		code string
	}{
		{"module.exports plugin", `module.exports = { plugin: { actions: [
			{ id: "mark", context: "per_text_file", action: (c) => c + "!" } ] } };`},
		{"exports.plugin", `exports.plugin = { actions: [
			{ id: "mark", context: "per_text_file", action: function (c, file, zip) { return c + "!"; } } ] };`},
		{"export const", `export const plugin = { actions: [
			{ id: "mark", context: "per_text_file", action: (c) => c + "!" } ] };`},
		{"export default", `export default { actions: [
			{ id: "mark", context: "per_text_file", action: (c) => c + "!" } ] };`},
		{"bare module", `exports.actions = [ { id: "mark", context: "per_text_file", action: (c) => c + "!" } ];`},
		{"export list", `const plugin = { actions: [
			{ id: "mark", context: "per_text_file", action: (c) => c + "!" } ] };
export { plugin };`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			actions := load(t, tt.code)
			if len(actions) != 1 || actions[0].ActionID() != "mark" {
				t.Fatalf("actions = %v", actions)
			}
			got, err := runText(t, actions[0], "a")
			if err != nil || got != "a!" {
				t.Errorf("action = %q, %v; want %q", got, err, "a!")
			}
		})
	}
}

func TestLoad_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    string
		wantErr error
	}{
		{"syntax error", `module.exports = {`, ErrScript},
		{"throws at load", `throw new Error("boom");`, ErrScript},
		{"no actions", `module.exports = { plugin: { name: "x" } };`, ErrInvalidExport},
		{"actions not array", `module.exports = { actions: {} };`, ErrInvalidExport},
		{"unknown context", `module.exports = { actions: [
			{ id: "a", context: "per_file", action: (c) => c } ] };`, ErrInvalidAction},
		{"bad id", `module.exports = { actions: [
			{ id: "a b", context: "global", action: () => {} } ] };`, ErrInvalidAction},
		{"not callable", `module.exports = { actions: [
			{ id: "a", context: "global", action: "nope" } ] };`, ErrInvalidAction},
		{"per-file without content", `module.exports = { actions: [
			{ id: "a", context: "per_text_file", action: () => "x" } ] };`, ErrInvalidAction},
		{"global with per-file shape", `module.exports = { actions: [
			{ id: "a", context: "global", action: (content, file, zip) => content } ] };`, ErrInvalidAction},
		{"require outside package", `require("fs"); module.exports = { actions: [] };`, ErrScript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewHost().Load(t.Context(), Source{Path: "index.js", Code: tt.code})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_Timeout(t *testing.T) {
	t.Parallel()

	h := NewHost(WithLoadTimeout(50 * time.Millisecond))
	_, err := h.Load(t.Context(), Source{Path: "spin.js", Code: `while (true) {}`})
	if !errors.Is(err, ErrScript) {
		t.Fatalf("Load() error = %v, want ErrScript", err)
	}
}

func TestActions_Promises(t *testing.T) {
	t.Parallel()

	actions := load(t, `module.exports = { actions: [
		{ id: "async", context: "per_text_file", action: async (c) => c.toUpperCase() },
		{ id: "reject", context: "per_text_file", action: async (c) => { throw new Error("nope " + c); } },
		{ id: "pending", context: "per_text_file", action: (c) => new Promise(() => {}) },
		{ id: "number", context: "per_text_file", action: (c) => 42 },
	] };`)

	if got, err := runText(t, actions[0], "abc"); err != nil || got != "ABC" {
		t.Errorf("async = %q, %v", got, err)
	}
	for _, a := range actions[1:3] {
		if _, err := runText(t, a, "abc"); !errors.Is(err, ErrScript) {
			t.Errorf("%s error = %v, want ErrScript", a.ActionID(), err)
		}
	}
	if _, err := runText(t, actions[3], "abc"); err == nil {
		t.Error("non-string result should fail")
	}
}

func TestActions_BinaryAndGlobal(t *testing.T) {
	t.Parallel()

	actions := load(t, `module.exports = { actions: [
		{ id: "invert", context: "per_binary_file", action(content) {
			const bytes = new Uint8Array(content);
			return bytes.map((b) => 255 - b);
		} },
		{ id: "setup", context: "global_before", action(zip) {
			zip.addText("added.txt", zip.readText("a.txt") + "+");
			zip.remove("gone.txt");
		} },
		{ id: "count", context: "global", action: async (zip) => {
			zip.writeText("a.txt", String(zip.list("").length));
		} },
	] };`)

	fs := testutil.NewFS(t, map[string]string{"a.txt": "a", "gone.txt": "x"})
	bin := actions[0].(plugin.PerBinaryFileAction)
	out, err := bin.Fn(context.Background(), []byte{0, 1, 255}, nil, fs)
	if err != nil || !bytes.Equal(out, []byte{255, 254, 0}) {
		t.Fatalf("invert = %v, %v", out, err)
	}

	if err := actions[1].(plugin.GlobalBeforeAction).Fn(context.Background(), fs); err != nil {
		t.Fatalf("setup error: %v", err)
	}
	if got, _ := fs.ReadText("added.txt"); got != "a+" {
		t.Errorf("added.txt = %q", got)
	}
	if fs.Exists("gone.txt") {
		t.Error("gone.txt should be removed")
	}
	if err := actions[2].(plugin.GlobalAction).Fn(context.Background(), fs); err != nil {
		t.Fatalf("count error: %v", err)
	}
	if got, _ := fs.ReadText("a.txt"); got != "2" {
		t.Errorf("a.txt = %q, want 2", got)
	}
}

func TestActions_FSErrorsThrow(t *testing.T) {
	t.Parallel()

	actions := load(t, `module.exports = { actions: [
		{ id: "missing", context: "global", action(zip) { zip.readText("nope.txt"); } },
		{ id: "caught", context: "global", action(zip) {
			try { zip.readText("nope.txt"); } catch (e) { zip.addText("caught.txt", "yes"); }
		} },
	] };`)
	fs := testutil.NewFS(t, nil)
	if err := actions[0].(plugin.GlobalAction).Fn(context.Background(), fs); !errors.Is(err, ErrScript) {
		t.Errorf("missing error = %v, want ErrScript", err)
	}
	if err := actions[1].(plugin.GlobalAction).Fn(context.Background(), fs); err != nil {
		t.Fatalf("caught error: %v", err)
	}
	if !fs.Exists("caught.txt") {
		t.Error("exception was not catchable in script")
	}
}

func TestLoad_Require(t *testing.T) {
	t.Parallel()

	pkg := testutil.NewFS(t, map[string]string{
		"src/lib/marker.js": `exports.marker = require("../data.json").marker;`,
		"src/data.json":     `{"marker": "#"}`,
	})
	code := `const { marker } = require("./lib/marker");
module.exports = { actions: [ { id: "m", context: "per_text_file", action: (c) => c + marker } ] };`
	actions, err := NewHost().Load(t.Context(), Source{Path: "src/index.js", Code: code, Modules: pkg})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, _ := runText(t, actions[0], "x"); got != "x#" {
		t.Errorf("action = %q, want x#", got)
	}

	_, err = NewHost().Load(t.Context(), Source{Path: "src/index.js", Code: `require("../../etc/passwd")`, Modules: pkg})
	if !errors.Is(err, ErrScript) {
		t.Errorf("escaping require error = %v, want ErrScript", err)
	}
}

func TestRewriteESM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"export const plugin = {};", "const plugin = exports.plugin = {};"},
		{"export default plugin;", "exports.default = plugin;"},
		{"export function f() {}", "exports.f = function f() {}"},
		{"export async function g() {}", "exports.g = async function g() {}"},
		{"export { a, b as c };", "exports.a = a; exports.c = b; "},
		{"const x = 'export default';", "const x = 'export default';"},
	}
	for _, tt := range tests {
		if got := rewriteESM(tt.in); got != tt.want {
			t.Errorf("rewriteESM(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
