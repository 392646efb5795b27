// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/oreui-customizer/oreui/pkg/cueutil"
)

// ErrInvalidManifest wraps every schema or semantic failure from the Parse
// functions in this package.
var ErrInvalidManifest = errors.New("invalid manifest")

var (
	// SchemaSource is the CUE source of the manifest definitions. Other
	// packages append their own definitions to it to reference these.
	//
	//go:embed schema.cue
	SchemaSource []byte

	schema = cueutil.MustCompileSchema(SchemaSource)
)

// decodeDocument runs the CUE schema check and the Go-side validation.
func decodeDocument[T interface{ IsValid() (bool, []error) }](data []byte, def, filename string) (*T, error) {
	v, err := cueutil.DecodeJSON[T](schema, data, def, cueutil.WithFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if ok, errs := (*v).IsValid(); !ok {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidManifest, filename, errors.Join(errs...))
	}
	return v, nil
}
