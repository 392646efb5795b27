// SPDX-License-Identifier: MPL-2.0

package vzip

import (
	"path"
	"strings"
)

const (
	// Binary is any entry whose extension is not on the text allow-list.
	Binary Kind = iota
	// Text is an entry with a text extension.
	Text
)

// textExtensions is the fixed allow-list of text file extensions (lower case).
var textExtensions = map[string]struct{}{
	".txt":   {},
	".md":    {},
	".js":    {},
	".jsx":   {},
	".html":  {},
	".css":   {},
	".json":  {},
	".jsonc": {},
	".jsonl": {},
}

// Kind is the content class of an entry.
type Kind int

// Classify returns the Kind of an entry name from its extension alone. The
// extension match is case-insensitive; content is never inspected.
func Classify(name string) Kind {
	if _, ok := textExtensions[strings.ToLower(path.Ext(name))]; ok {
		return Text
	}
	return Binary
}

// TextExtensions returns the text allow-list in a stable order.
func TextExtensions() []string {
	return []string{".txt", ".md", ".js", ".jsx", ".html", ".css", ".json", ".jsonc", ".jsonl"}
}

func (k Kind) String() string {
	if k == Text {
		return "text"
	}
	return "binary"
}
