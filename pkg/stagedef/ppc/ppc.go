// Package ppc describes the stagedef records exactly as they are laid out in
// the original big-endian binary: 32-bit offsets relative to the start of the
// blob, packed fields, and unknown bytes kept verbatim.
//
// Every record has a Size constant, a Decode method that reads the record
// from a byte slice through explicit byte copies (no unaligned typed loads)
// and an Encode method that writes it back in big-endian order. Both methods
// require len(b) >= Size; callers validate bounds before decoding.
package ppc

import (
	"github.com/Faultbox/stagedef/pkg/endian"
	"github.com/Faultbox/stagedef/pkg/math"
)

// Magic numbers expected in the first 8 bytes of a stagedef.
const (
	MagicA uint32 = 0x00000000
	MagicB uint32 = 0x447A0000 // 1000.0f
)

// TriIndexListEnd terminates every collision grid cell list.
const TriIndexListEnd uint16 = 0xFFFF

// Offset is a byte offset from the start of the blob. Zero means absent.
type Offset uint32

// IsNull reports whether the offset is the absent sentinel.
func (o Offset) IsNull() bool { return o == 0 }

// List is a (count, offset) pair locating an array of records.
type List struct {
	Count  uint32
	Offset Offset
}

// ListSize is the encoded size of a List.
const ListSize = 8

// reader decodes consecutive big-endian fields from a record slice.
type reader struct {
	b []byte
	n int
}

func (r *reader) u8() uint8 {
	v := r.b[r.n]
	r.n++
	return v
}

func (r *reader) u16() uint16 {
	v := endian.U16(r.b[r.n:])
	r.n += 2
	return v
}

func (r *reader) s16() int16 {
	v := endian.S16(r.b[r.n:])
	r.n += 2
	return v
}

func (r *reader) u32() uint32 {
	v := endian.U32(r.b[r.n:])
	r.n += 4
	return v
}

func (r *reader) f32() float32 {
	v := endian.F32(r.b[r.n:])
	r.n += 4
	return v
}

func (r *reader) offset() Offset { return Offset(r.u32()) }

func (r *reader) list() List {
	return List{Count: r.u32(), Offset: r.offset()}
}

func (r *reader) lists(dst []List) {
	for i := range dst {
		dst[i] = r.list()
	}
}

func (r *reader) vec2() math.Vec2 {
	return math.Vec2{X: r.f32(), Y: r.f32()}
}

func (r *reader) vec3() math.Vec3 {
	return math.Vec3{X: r.f32(), Y: r.f32(), Z: r.f32()}
}

func (r *reader) vec3s() math.Vec3s {
	return math.Vec3s{X: r.s16(), Y: r.s16(), Z: r.s16()}
}

func (r *reader) vec2i() math.Vec2i {
	return math.Vec2i{X: int32(r.u32()), Y: int32(r.u32())}
}

// raw copies len(dst) unknown bytes verbatim.
func (r *reader) raw(dst []byte) {
	r.n += copy(dst, r.b[r.n:r.n+len(dst)])
}

// writer encodes consecutive big-endian fields into a record slice.
type writer struct {
	b []byte
	n int
}

func (w *writer) u8(v uint8) {
	w.b[w.n] = v
	w.n++
}

func (w *writer) u16(v uint16) {
	endian.PutU16(w.b[w.n:], v)
	w.n += 2
}

func (w *writer) s16(v int16) {
	endian.PutS16(w.b[w.n:], v)
	w.n += 2
}

func (w *writer) u32(v uint32) {
	endian.PutU32(w.b[w.n:], v)
	w.n += 4
}

func (w *writer) f32(v float32) {
	endian.PutF32(w.b[w.n:], v)
	w.n += 4
}

func (w *writer) offset(o Offset) { w.u32(uint32(o)) }

func (w *writer) list(l List) {
	w.u32(l.Count)
	w.offset(l.Offset)
}

func (w *writer) lists(src []List) {
	for _, l := range src {
		w.list(l)
	}
}

func (w *writer) vec2(v math.Vec2) {
	w.f32(v.X)
	w.f32(v.Y)
}

func (w *writer) vec3(v math.Vec3) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

func (w *writer) vec3s(v math.Vec3s) {
	w.s16(v.X)
	w.s16(v.Y)
	w.s16(v.Z)
}

func (w *writer) vec2i(v math.Vec2i) {
	w.u32(uint32(v.X))
	w.u32(uint32(v.Y))
}

func (w *writer) raw(src []byte) {
	w.n += copy(w.b[w.n:w.n+len(src)], src)
}
