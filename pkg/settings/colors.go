// SPDX-License-Identifier: MPL-2.0

package settings

// colorKeys is the fixed domain of replaceable UI colors in declaration
// order. Keys are matched literally and case-sensitively.
var colorKeys = []string{
	"#a0e081",
	"#86d562",
	"#6cc349",
	"#52a535",
	"#3c8527",
	"#2a641c",
	"#1d4d13",
	"#153a0e",
	"#112f0b",
	"#0f2b0a",
	"#ffffff",
	"#000000",
	"#f4f6f9",
	"#e6e8eb",
	"#d0d1d4",
	"#b1b2b5",
	"#8c8d90",
	"#58585a",
	"#48494a",
	"#313233",
	"#242425",
	"#1e1e1f",
	"#ff8080",
	"#d93636",
	"#b31b1b",
	"#d54242",
	"#ca3636",
	"#c02d2d",
	"#b62525",
	"#ad1d1d",
	"#a31616",
	"#990f0f",
	"#ffb366",
	"#d3791f",
	"#a65b11",
	"#ffe866",
	"#e5c317",
	"#8a7500",
	"#fff0c5",
	"#ffd783",
	"#f8af2b",
	"#ce8706",
	"#ae7100",
	"#8cb3ff",
	"#2e6be5",
	"#1452cc",
	"rgba(0, 0, 0, 0.1)",
	"rgba(0, 0, 0, 0.2)",
	"rgba(0, 0, 0, 0.25)",
	"rgba(0, 0, 0, 0.3)",
	"rgba(0, 0, 0, 0.4)",
	"rgba(0, 0, 0, 0.5)",
	"rgba(0, 0, 0, 0.6)",
	"rgba(0, 0, 0, 0.7)",
	"rgba(0, 0, 0, 0.8)",
	"rgba(0, 0, 0, 0.9)",
	"rgba(0, 0, 0, 1)",
	"rgba(255, 255, 255, 0.1)",
	"rgba(255, 255, 255, 0.2)",
	"rgba(255, 255, 255, 0.3)",
	"rgba(255, 255, 255, 0.4)",
	"rgba(255, 255, 255, 0.5)",
	"rgba(255, 255, 255, 0.6)",
	"rgba(255, 255, 255, 0.7)",
	"rgba(255, 255, 255, 0.8)",
	"rgba(255, 255, 255, 0.9)",
	"#FB95E2",
	"#FFB1EC",
	"#E833C2",
	"#F877DC",
	"#643ACB",
	"#AC90F3",
	"#9471E0",
	"#8557F8",
	"#7345E5",
	"#5D2CC6",
	"#4A1CAC",
	"#050029",
	"rgba(5, 0, 41, 0.5)",
}

// ColorKeys returns the replaceable color tokens in declaration order.
func ColorKeys() []string {
	return append([]string(nil), colorKeys...)
}

// IsColorKey reports whether key is a replaceable color token.
func IsColorKey(key string) bool {
	_, ok := colorKeySet[key]
	return ok
}

var colorKeySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(colorKeys))
	for _, k := range colorKeys {
		m[k] = struct{}{}
	}
	return m
}()
