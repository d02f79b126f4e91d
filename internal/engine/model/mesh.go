package model

import (
	"fmt"

	"github.com/Faultbox/midgard-obj/pkg/formats"
)

const floatSize = 4

// AvailableLayout returns position followed by every attribute the mesh's face format carries.
func AvailableLayout(obj *formats.OBJ) []formats.OBJAttribute {
	layout := []formats.OBJAttribute{formats.AttrPosition}
	if obj.HasNormals() {
		layout = append(layout, formats.AttrNormal)
	}
	if obj.HasTexCoords() {
		layout = append(layout, formats.AttrTexCoord)
	}
	return layout
}

// BuildMesh interleaves the OBJ attributes and encodes its indices.
func BuildMesh(obj *formats.OBJ, opts BuildOptions) (*Mesh, error) {
	layout := opts.Layout
	if layout == nil {
		layout = AvailableLayout(obj)
	}

	vb, ib, err := obj.IndexedBuffer(layout, opts.IndexType)
	if err != nil {
		return nil, fmt.Errorf("building mesh: %w", err)
	}

	ob := obj.Bounds()
	mesh := &Mesh{
		Vertices:   vb.Data,
		Indices:    ib.Bytes(),
		IndexType:  ib.Type,
		IndexCount: int32(len(ib.Indices)),
		Stride:     int32(vb.Stride * floatSize),
		Attributes: make([]Attribute, len(vb.Layout)),
		Bounds:     Bounds{Min: ob.Min, Max: ob.Max},
	}

	for i, kind := range vb.Layout {
		mesh.Attributes[i] = Attribute{
			Kind:     kind,
			Location: location(kind),
			Size:     int32(min(obj.AttributeWidth(kind), MaxComponents)),
			Offset:   vb.Offsets[i] * floatSize,
		}
	}

	if opts.CenterXZ {
		CenterMeshXZ(mesh)
	}

	return mesh, nil
}

// Attribute returns the attribute of the given kind, if the mesh carries it.
func (m *Mesh) Attribute(kind formats.OBJAttribute) (Attribute, bool) {
	for _, a := range m.Attributes {
		if a.Kind == kind {
			return a, true
		}
	}
	return Attribute{}, false
}

// VertexCount returns the number of vertices in the interleaved buffer.
func (m *Mesh) VertexCount() int {
	if m.Stride == 0 {
		return 0
	}
	return len(m.Vertices) * floatSize / int(m.Stride)
}

// CenterMeshXZ centers the mesh horizontally (X/Z) but preserves Y offset.
// Every position entry of the layout is moved. Returns the centering offset applied.
func CenterMeshXZ(mesh *Mesh) (centerX, centerZ float32) {
	if _, ok := mesh.Attribute(formats.AttrPosition); !ok || mesh.Stride == 0 {
		return 0, 0
	}

	centerX = (mesh.Bounds.Min.X + mesh.Bounds.Max.X) / 2
	centerZ = (mesh.Bounds.Min.Z + mesh.Bounds.Max.Z) / 2

	stride := int(mesh.Stride) / floatSize
	for _, attr := range mesh.Attributes {
		if attr.Kind != formats.AttrPosition {
			continue
		}
		for i := attr.Offset / floatSize; i+2 < len(mesh.Vertices); i += stride {
			mesh.Vertices[i] -= centerX
			mesh.Vertices[i+2] -= centerZ
		}
	}

	// Update bounds after centering
	mesh.Bounds.Min.X -= centerX
	mesh.Bounds.Max.X -= centerX
	mesh.Bounds.Min.Z -= centerZ
	mesh.Bounds.Max.Z -= centerZ

	return centerX, centerZ
}

func location(kind formats.OBJAttribute) uint32 {
	switch kind {
	case formats.AttrNormal:
		return LocationNormal
	case formats.AttrTexCoord:
		return LocationTexCoord
	default:
		return LocationPosition
	}
}
