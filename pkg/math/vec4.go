package math

// Vec4 is a homogeneous 4D vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// XYZ drops the W component.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Append appends all four components to dst.
func (v Vec4) Append(dst []float32) []float32 {
	return append(dst, v.X, v.Y, v.Z, v.W)
}
