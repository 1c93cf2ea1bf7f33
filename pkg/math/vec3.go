package math

import "math"

// Vec3 is a 3D float vector (Vec3f in stage data).
type Vec3 struct {
	X, Y, Z float32
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the magnitude.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y + v.Z*v.Z)))
}

// Vec3s is a rotation stored as three signed 16-bit binary angles,
// where 0x10000 is one full turn.
type Vec3s struct {
	X, Y, Z int16
}

// Radians returns the angles converted to radians.
func (v Vec3s) Radians() Vec3 {
	return Vec3{AngleToRadians(v.X), AngleToRadians(v.Y), AngleToRadians(v.Z)}
}

// AngleToRadians converts a 16-bit binary angle to radians.
func AngleToRadians(a int16) float32 {
	return float32(float64(a) * math.Pi / 32768.0)
}
