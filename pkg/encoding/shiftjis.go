// Package encoding provides text encoding utilities for stage data strings.
package encoding

import (
	"bytes"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ShiftJISToUTF8 converts Shift-JIS encoded bytes to a UTF-8 string.
// Returns the original bytes as a string if conversion fails.
func ShiftJISToUTF8(data []byte) string {
	decoder := japanese.ShiftJIS.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// CString returns the bytes of data up to, not including, the first NUL.
// ok is false when data has no terminator.
func CString(data []byte) (s []byte, ok bool) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return data, false
	}
	return data[:i], true
}

// DisplayString decodes a NUL-terminated Shift-JIS string for display.
func DisplayString(data []byte) string {
	s, _ := CString(data)
	return ShiftJISToUTF8(s)
}
