// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type (
	// ParseResult contains the result of a successful decode.
	ParseResult[T any] struct {
		// Value is the decoded Go struct.
		Value *T

		// Unified is the unified CUE value, for callers that need to inspect
		// fields the Go struct does not carry.
		Unified cue.Value
	}

	// Schema is a compiled CUE schema. Values compiled from one cue.Context
	// cannot be shared across goroutines, so every decode against the schema
	// is serialized.
	Schema struct {
		mu    sync.Mutex
		ctx   *cue.Context
		value cue.Value
	}
)

// CompileSchema compiles CUE schema source.
func CompileSchema(src []byte) (*Schema, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src)
	if v.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", v.Err())
	}
	return &Schema{ctx: ctx, value: v}, nil
}

// MustCompileSchema is like CompileSchema but panics on error. It is meant
// for package-level schema variables built from embedded files.
func MustCompileSchema(src []byte) *Schema {
	s, err := CompileSchema(src)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode validates data against the definition at schemaPath (for example
// "#PluginManifest") and decodes the unified value into T.
func Decode[T any](s *Schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userValue := s.ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return nil, FormatError(userValue.Err(), filename)
	}

	schemaRoot := s.value.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(userValue)

	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}

	return &ParseResult[T]{
		Value:   &result,
		Unified: unified,
	}, nil
}

// ParseAndDecode compiles schema and decodes data against it in one call.
// Prefer a package-level Schema with Decode when the same schema is used
// repeatedly.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	s, err := CompileSchema(schema)
	if err != nil {
		return nil, err
	}
	return Decode[T](s, data, schemaPath, opts...)
}

// DecodeJSON validates a JSON document against schemaPath and then decodes
// the original bytes with encoding/json, so embedded structs and custom
// UnmarshalJSON methods on T behave as they do everywhere else.
func DecodeJSON[T any](s *Schema, data []byte, schemaPath string, opts ...Option) (*T, error) {
	var result T
	if err := DecodeJSONInto(s, data, schemaPath, &result, opts...); err != nil {
		return nil, err
	}
	return &result, nil
}

// DecodeJSONInto is DecodeJSON onto an existing value. Fields absent from
// data keep their current values in dst, which makes it the way to apply a
// partial document over defaults.
func DecodeJSONInto(s *Schema, data []byte, schemaPath string, dst any, opts ...Option) error {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if _, err := Decode[map[string]any](s, data, schemaPath, opts...); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		filename := options.filename
		if filename == "" {
			filename = "<input>"
		}
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}
