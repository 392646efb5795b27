// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the shared CUE validation flow used for plugin
// manifests, theme manifests, customizer settings, and the application
// config file.
//
// JSON documents are valid CUE, so every JSON input is validated the same
// way as a CUE file:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with a schema definition
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed schema.cue
//	var schemaSource []byte
//
//	var schema = cueutil.MustCompileSchema(schemaSource)
//
//	result, err := cueutil.Decode[PluginManifest](schema, data, "#PluginManifest",
//	    cueutil.WithFilename("manifest.json"))
//	if err != nil {
//	    return nil, err // includes the JSON path of the offending field
//	}
//	return result.Value, nil
package cueutil
