// Package math provides the vector and matrix types used by stage geometry.
package math

// Vec2 is a 2D float vector (Vec2f in stage data).
type Vec2 struct {
	X, Y float32
}

// Vec2i is a 2D signed 32-bit integer vector.
type Vec2i struct {
	X, Y int32
}

// Area returns X*Y as int64, so that it cannot overflow.
func (v Vec2i) Area() int64 {
	return int64(v.X) * int64(v.Y)
}
