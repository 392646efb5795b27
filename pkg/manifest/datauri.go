// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDataURI is the sentinel error wrapped by InvalidDataURIError.
var ErrInvalidDataURI = errors.New("invalid data URI")

type (
	// DataURI is a decoded "data:<mime>[;param]*;base64,<payload>" URI.
	DataURI struct {
		MediaType string
		Params    []string
		Data      []byte
	}

	// InvalidDataURIError describes why a data URI could not be decoded.
	InvalidDataURIError struct {
		Reason string
		Err    error
	}
)

func (e *InvalidDataURIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid data URI: %s: %v", e.Reason, e.Err)
	}
	return "invalid data URI: " + e.Reason
}

func (e *InvalidDataURIError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidDataURI, e.Err}
	}
	return []error{ErrInvalidDataURI}
}

// ParseDataURI decodes a base64 data URI. Percent-encoded (non-base64) data
// URIs are rejected.
func ParseDataURI(s string) (DataURI, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return DataURI{}, &InvalidDataURIError{Reason: `missing "data:" scheme`}
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, &InvalidDataURIError{Reason: "missing ',' separator"}
	}

	parts := strings.Split(header, ";")
	if parts[len(parts)-1] != "base64" {
		return DataURI{}, &InvalidDataURIError{Reason: "payload is not base64 encoded"}
	}
	parts = parts[:len(parts)-1]

	uri := DataURI{MediaType: strings.ToLower(parts[0])}
	if len(parts) > 1 {
		uri.Params = parts[1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return DataURI{}, &InvalidDataURIError{Reason: "malformed base64 payload", Err: err}
		}
	}
	uri.Data = data
	return uri, nil
}

// EncodeDataURI builds a base64 data URI for data.
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ValidateIconDataURI requires an image/* base64 data URI.
func ValidateIconDataURI(s string) error {
	uri, err := ParseDataURI(s)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(uri.MediaType, "image/") {
		return &InvalidDataURIError{Reason: fmt.Sprintf("icon media type %q is not image/*", uri.MediaType)}
	}
	return nil
}
