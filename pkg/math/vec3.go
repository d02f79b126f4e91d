// Package math provides small float32 vector types used for mesh attribute storage.
package math

import gomath "math"

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float32 {
	return float32(v.length64())
}

// length64 squares in float64 so components near the float32 limits
// neither overflow nor underflow.
func (v Vec3) length64() float64 {
	x, y, z := float64(v.X), float64(v.Y), float64(v.Z)
	return gomath.Sqrt(x*x + y*y + z*z)
}

// Normalize returns a unit vector and false when v has zero or non-finite length.
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.length64()
	if l == 0 || gomath.IsInf(l, 0) || gomath.IsNaN(l) {
		return Vec3{}, false
	}
	return Vec3{
		float32(float64(v.X) / l),
		float32(float64(v.Y) / l),
		float32(float64(v.Z) / l),
	}, true
}

// AppendPadded appends the components to dst followed by zeros up to width floats.
// Widths below 3 still emit all three components.
func (v Vec3) AppendPadded(dst []float32, width int) []float32 {
	dst = append(dst, v.X, v.Y, v.Z)
	for i := 3; i < width; i++ {
		dst = append(dst, 0)
	}
	return dst
}
