// SPDX-License-Identifier: MPL-2.0

package script

import (
	"github.com/dop251/goja"
)

func isObject(v goja.Value) bool {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return false
	}
	_, ok := v.(*goja.Object)
	return ok
}

func isString(v goja.Value) bool {
	if v == nil {
		return false
	}
	_, ok := v.Export().(string)
	return ok && !isObject(v)
}

func typeOf(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	case isObject(v):
		return v.(*goja.Object).ClassName()
	default:
		return v.ExportType().String()
	}
}

// toBytes accepts an ArrayBuffer, a typed array or a string.
func toBytes(v goja.Value) ([]byte, bool) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, false
	}
	switch x := v.Export().(type) {
	case goja.ArrayBuffer:
		return append([]byte(nil), x.Bytes()...), true
	case []byte:
		return append([]byte(nil), x...), true
	case string:
		return []byte(x), true
	default:
		return nil, false
	}
}

func describeRejection(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	if v == nil {
		return "undefined"
	}
	return v.String()
}
