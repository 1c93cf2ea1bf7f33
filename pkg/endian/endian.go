// Package endian converts values between the big-endian stagedef wire format
// and the host byte order.
//
// The BigToNative functions take a value exactly as it was loaded from wire
// memory by a native-order load and return the host value. They are
// identities on big-endian hosts. Float conversions operate on the IEEE-754
// bit pattern, so NaN payloads survive unchanged.
package endian

import (
	"encoding/binary"
	"math"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// swap is true when the host byte order differs from the wire byte order.
var swap = !cpu.IsBigEndian

// HostIsBigEndian reports whether the host uses big-endian byte order.
func HostIsBigEndian() bool {
	return !swap
}

// BigToNativeU16 converts a big-endian uint16 to host order.
func BigToNativeU16(v uint16) uint16 {
	if swap {
		return bits.ReverseBytes16(v)
	}
	return v
}

// BigToNativeS16 converts a big-endian int16 to host order.
func BigToNativeS16(v int16) int16 {
	return int16(BigToNativeU16(uint16(v)))
}

// BigToNativeU32 converts a big-endian uint32 to host order.
func BigToNativeU32(v uint32) uint32 {
	if swap {
		return bits.ReverseBytes32(v)
	}
	return v
}

// BigToNativeS32 converts a big-endian int32 to host order.
func BigToNativeS32(v int32) int32 {
	return int32(BigToNativeU32(uint32(v)))
}

// BigToNativeF32 converts a big-endian float32 to host order.
func BigToNativeF32(v float32) float32 {
	return math.Float32frombits(BigToNativeU32(math.Float32bits(v)))
}

// NativeToBigU16 converts a host uint16 to big-endian order.
func NativeToBigU16(v uint16) uint16 { return BigToNativeU16(v) }

// NativeToBigU32 converts a host uint32 to big-endian order.
func NativeToBigU32(v uint32) uint32 { return BigToNativeU32(v) }

// NativeToBigF32 converts a host float32 to big-endian order.
func NativeToBigF32(v float32) float32 { return BigToNativeF32(v) }

// U16 reads a big-endian uint16 from the first two bytes of b.
func U16(b []byte) uint16 {
	return BigToNativeU16(binary.NativeEndian.Uint16(b))
}

// S16 reads a big-endian int16 from the first two bytes of b.
func S16(b []byte) int16 {
	return int16(U16(b))
}

// U32 reads a big-endian uint32 from the first four bytes of b.
func U32(b []byte) uint32 {
	return BigToNativeU32(binary.NativeEndian.Uint32(b))
}

// S32 reads a big-endian int32 from the first four bytes of b.
func S32(b []byte) int32 {
	return int32(U32(b))
}

// F32 reads a big-endian float32 from the first four bytes of b.
func F32(b []byte) float32 {
	return math.Float32frombits(U32(b))
}

// PutU16 writes v to b in big-endian order.
func PutU16(b []byte, v uint16) {
	binary.NativeEndian.PutUint16(b, NativeToBigU16(v))
}

// PutS16 writes v to b in big-endian order.
func PutS16(b []byte, v int16) {
	PutU16(b, uint16(v))
}

// PutU32 writes v to b in big-endian order.
func PutU32(b []byte, v uint32) {
	binary.NativeEndian.PutUint32(b, NativeToBigU32(v))
}

// PutS32 writes v to b in big-endian order.
func PutS32(b []byte, v int32) {
	PutU32(b, uint32(v))
}

// PutF32 writes v to b in big-endian order.
func PutF32(b []byte, v float32) {
	PutU32(b, math.Float32bits(v))
}
