// Package jsonutil wraps sonic with the handful of helpers the service needs.
// Output matches encoding/json (sorted map keys, escaped HTML) so payloads
// stay stable across architectures where sonic falls back to the standard
// library.
package jsonutil

import (
	"bytes"
	"errors"
	"io"

	"github.com/bytedance/sonic"
)

var (
	api = sonic.ConfigStd

	// numberAPI keeps numeric literals as json.Number so callers can apply
	// their own coercion rules without losing precision.
	numberAPI = sonic.Config{
		EscapeHTML:       true,
		SortMapKeys:      true,
		CompactMarshaler: true,
		CopyString:       true,
		ValidateString:   true,
		UseNumber:        true,
	}.Froze()
)

// Marshal encodes v to JSON.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent encodes v to indented JSON.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Encode streams v as JSON to w, followed by a newline.
func Encode(w io.Writer, v any) error {
	return api.NewEncoder(w).Encode(v)
}

// Decode reads a single JSON value from r into v.
func Decode(r io.Reader, v any) error {
	return api.NewDecoder(r).Decode(v)
}

// DecodeNumber behaves like Decode but decodes numbers into json.Number
// when the destination is an interface value.
func DecodeNumber(r io.Reader, v any) error {
	return numberAPI.NewDecoder(r).Decode(v)
}

// ErrTrailingData reports bytes other than whitespace after the first JSON
// value of a payload.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// DecodeNumberStrict behaves like DecodeNumber but requires r to hold exactly
// one JSON value.
func DecodeNumberStrict(r io.Reader, v any) error {
	dec := numberAPI.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	rest, err := io.ReadAll(io.MultiReader(dec.Buffered(), r))
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		return ErrTrailingData
	}
	return nil
}
