package stagedef

import (
	"errors"
	"fmt"
)

// Stagedef load errors. Every failure returned by the loader wraps exactly
// one of these; use errors.Is to classify and errors.As with *DecodeError for
// the offending field and offsets.
var (
	ErrBadMagic                = errors.New("invalid stagedef magic")
	ErrTruncated               = errors.New("truncated stagedef data")
	ErrOffsetOutOfRange        = errors.New("stagedef offset out of range")
	ErrInvalidGridDimensions   = errors.New("invalid collision grid dimensions")
	ErrDegenerateTriangleTable = errors.New("degenerate collision triangle table")
	ErrIndexOutOfRange         = errors.New("index out of range")

	// ErrTooLarge is returned when a blob exceeds the loader's size limit.
	ErrTooLarge = errors.New("stagedef blob exceeds size limit")
)

// DecodeError describes where a load failed.
type DecodeError struct {
	Kind  error  // one of the Err* sentinels
	Field string // dotted path of the field being decoded

	Offset uint32 // absolute blob offset involved
	Needed uint64 // bytes required at Offset (ErrTruncated)

	Index uint32 // offending index (ErrIndexOutOfRange)
	Bound uint32 // exclusive bound the index violated
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case ErrTruncated:
		return fmt.Sprintf("%v: %s needs %d bytes at 0x%x", e.Kind, e.Field, e.Needed, e.Offset)
	case ErrOffsetOutOfRange:
		return fmt.Sprintf("%v: %s = 0x%x", e.Kind, e.Field, e.Offset)
	case ErrIndexOutOfRange:
		if e.Index == 0 && e.Bound == 0 && e.Offset != 0 {
			return fmt.Sprintf("%v: %s has no record at 0x%x", e.Kind, e.Field, e.Offset)
		}
		return fmt.Sprintf("%v: %s index %d, bound %d", e.Kind, e.Field, e.Index, e.Bound)
	case ErrBadMagic, ErrInvalidGridDimensions, ErrDegenerateTriangleTable:
		if e.Field == "" {
			return e.Kind.Error()
		}
		return fmt.Sprintf("%v: %s", e.Kind, e.Field)
	default:
		return fmt.Sprintf("%v: %s at 0x%x", e.Kind, e.Field, e.Offset)
	}
}

func (e *DecodeError) Unwrap() error {
	return e.Kind
}

func truncated(field string, off uint32, needed uint64) error {
	return &DecodeError{Kind: ErrTruncated, Field: field, Offset: off, Needed: needed}
}

func outOfRange(field string, off uint32) error {
	return &DecodeError{Kind: ErrOffsetOutOfRange, Field: field, Offset: off}
}

func indexOutOfRange(field string, index, bound uint32) error {
	return &DecodeError{Kind: ErrIndexOutOfRange, Field: field, Index: index, Bound: bound}
}

func invalidGrid(field string, x, y int32) error {
	return &DecodeError{Kind: ErrInvalidGridDimensions, Field: fmt.Sprintf("%s (%dx%d)", field, x, y)}
}

func degenerate(field string) error {
	return &DecodeError{Kind: ErrDegenerateTriangleTable, Field: field}
}

var errorKinds = []struct {
	err  error
	name string
}{
	{ErrBadMagic, "bad_magic"},
	{ErrTruncated, "truncated"},
	{ErrOffsetOutOfRange, "offset_out_of_range"},
	{ErrInvalidGridDimensions, "invalid_grid_dimensions"},
	{ErrDegenerateTriangleTable, "degenerate_triangle_table"},
	{ErrIndexOutOfRange, "index_out_of_range"},
	{ErrTooLarge, "too_large"},
}

// ErrorKind returns a stable snake_case name for the load error kind wrapped
// by err, or "" when err is not a load error.
func ErrorKind(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
