// Package camera provides the orbit camera used by the mesh viewer.
package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-obj/pkg/math"
)

// OrbitCamera orbits around a center point.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance  float32 // Distance from center
	RotationX float32 // Pitch (vertical angle, radians)
	RotationY float32 // Yaw (horizontal angle, radians)

	// Constraints
	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	// Sensitivity
	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates a new orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        5.0,
		RotationX:       0.5,
		MinDistance:     0.01,
		MaxDistance:     1e6,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	sinX, cosX := math32.Sincos(c.RotationX)
	sinY, cosY := math32.Sincos(c.RotationY)

	return c.Center.Add(math.Vec3{
		X: c.Distance * cosX * sinY,
		Y: c.Distance * sinX,
		Z: c.Distance * cosX * cosY,
	})
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// HandleDrag updates rotation based on mouse drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.RotationY -= deltaX * c.DragSensitivity
	c.RotationX += deltaY * c.DragSensitivity
	c.RotationX = min(max(c.RotationX, c.MinPitch), c.MaxPitch)
}

// HandleZoom updates distance based on scroll wheel delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance -= delta * c.Distance * c.ZoomSensitivity
	c.Distance = min(max(c.Distance, c.MinDistance), c.MaxDistance)
}

// FitToBounds centers the camera on a box and backs off far enough to see
// all of it with the given vertical field of view (radians).
func (c *OrbitCamera) FitToBounds(minB, maxB math.Vec3, fovY float32) {
	c.Center = minB.Add(maxB).Scale(0.5)

	radius := maxB.Sub(minB).Length() / 2
	if radius == 0 {
		radius = 1
	}
	c.Distance = radius / math32.Sin(fovY/2)
	c.MinDistance = radius * 0.05
	c.MaxDistance = c.Distance * 20

	c.RotationX = 0.4
	c.RotationY = 0.0
}
