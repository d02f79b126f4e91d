// Package model builds GPU-ready meshes from parsed OBJ data.
package model

import (
	"github.com/Faultbox/midgard-obj/pkg/formats"
	"github.com/Faultbox/midgard-obj/pkg/math"
)

// Vertex attribute locations shared with the viewer shaders.
const (
	LocationPosition uint32 = 0
	LocationNormal   uint32 = 1
	LocationTexCoord uint32 = 2
)

// MaxComponents is the largest component count a single vertex attribute
// pointer can describe. Wider padding only grows the stride.
const MaxComponents = 4

// Attribute describes one interleaved attribute inside Mesh.Vertices.
type Attribute struct {
	Kind     formats.OBJAttribute
	Location uint32
	// Size is the component count handed to the attribute pointer.
	Size int32
	// Offset is the byte offset within a vertex.
	Offset int
}

// Mesh holds interleaved vertex data and an encoded index buffer ready for GPU upload.
type Mesh struct {
	Vertices   []float32
	Indices    []byte
	IndexType  formats.IndexType
	IndexCount int32
	// Stride is the byte size of one vertex.
	Stride     int32
	Attributes []Attribute
	Bounds     Bounds
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Center returns the midpoint of the box.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Radius returns half the box diagonal.
func (b Bounds) Radius() float32 {
	return b.Max.Sub(b.Min).Length() / 2
}

// BuildOptions contains options for mesh building.
type BuildOptions struct {
	// Layout is the attribute order. Nil uses every attribute the mesh carries.
	Layout []formats.OBJAttribute
	// IndexType overrides automatic index width selection.
	IndexType formats.IndexType
	// CenterXZ moves the mesh so its bounds are centered on the Y axis.
	CenterXZ bool
}
