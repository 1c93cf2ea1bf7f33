package report

import (
	"bytes"
	"fmt"
	stdmath "math"
	"strconv"

	json "github.com/goccy/go-json"
)

// Stage floats are kept bit-exact, so NaN and infinities reach the report.
// JSON has no literal for them; they are written as the strings "NaN",
// "+Inf" and "-Inf" and read back from the same spelling.

// Float is a scalar that survives JSON encoding when non-finite.
type Float float32

// Vec2 is a 2D value in world units.
type Vec2 [2]float32

// Vec3 is a position or scale in world units.
type Vec3 [3]float32

func appendFloat(b []byte, f float32) []byte {
	v := float64(f)
	switch {
	case stdmath.IsNaN(v):
		return append(b, `"NaN"`...)
	case stdmath.IsInf(v, 1):
		return append(b, `"+Inf"`...)
	case stdmath.IsInf(v, -1):
		return append(b, `"-Inf"`...)
	}
	return strconv.AppendFloat(b, v, 'g', -1, 32)
}

func parseFloat(data []byte) (float32, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		switch s {
		case "NaN":
			return float32(stdmath.NaN()), nil
		case "+Inf", "Inf":
			return float32(stdmath.Inf(1)), nil
		case "-Inf":
			return float32(stdmath.Inf(-1)), nil
		}
		return 0, fmt.Errorf("invalid float %q", s)
	}
	v, err := strconv.ParseFloat(string(data), 32)
	if err != nil {
		return 0, fmt.Errorf("invalid float %s: %w", data, err)
	}
	return float32(v), nil
}

func marshalFloats(fs []float32) []byte {
	b := make([]byte, 0, 16*len(fs))
	b = append(b, '[')
	for i, f := range fs {
		if i > 0 {
			b = append(b, ',')
		}
		b = appendFloat(b, f)
	}
	return append(b, ']')
}

func unmarshalFloats(data []byte, dst []float32) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("want %d components, got %d", len(dst), len(raw))
	}
	for i, r := range raw {
		f, err := parseFloat(r)
		if err != nil {
			return err
		}
		dst[i] = f
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	return appendFloat(nil, float32(f)), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	v, err := parseFloat(data)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Vec2) MarshalJSON() ([]byte, error) { return marshalFloats(v[:]), nil }

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vec2) UnmarshalJSON(data []byte) error { return unmarshalFloats(data, v[:]) }

// MarshalJSON implements json.Marshaler.
func (v Vec3) MarshalJSON() ([]byte, error) { return marshalFloats(v[:]), nil }

// UnmarshalJSON implements json.Unmarshaler.
func (v *Vec3) UnmarshalJSON(data []byte) error { return unmarshalFloats(data, v[:]) }
