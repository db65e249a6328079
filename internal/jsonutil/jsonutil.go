// Package jsonutil provides the single jsoniter instance used for every JSON
// decode in this module (currently just NCA weight files), so call sites
// never reach for encoding/json directly.
package jsonutil

import jsoniter "github.com/json-iterator/go"

var (
	// JSON is the jsoniter configuration used throughout the codebase.
	JSON = jsoniter.ConfigCompatibleWithStandardLibrary

	// Marshal is a shorthand for JSON.Marshal.
	Marshal = JSON.Marshal

	// Unmarshal is a shorthand for JSON.Unmarshal.
	Unmarshal = JSON.Unmarshal

	// NewDecoder is a shorthand for JSON.NewDecoder.
	NewDecoder = JSON.NewDecoder
)
