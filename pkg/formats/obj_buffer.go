package formats

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// OBJAttribute selects a vertex attribute for an interleaved buffer layout.
type OBJAttribute uint8

// Vertex attributes.
const (
	AttrPosition OBJAttribute = iota
	AttrNormal
	AttrTexCoord
)

// String returns the attribute name.
func (a OBJAttribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrNormal:
		return "normal"
	case AttrTexCoord:
		return "texcoord"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(a))
	}
}

// ParseOBJAttribute accepts an attribute name or its OBJ keyword.
func ParseOBJAttribute(s string) (OBJAttribute, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "position", "pos", "v":
		return AttrPosition, nil
	case "normal", "vn":
		return AttrNormal, nil
	case "texcoord", "uv", "vt":
		return AttrTexCoord, nil
	}
	return 0, fmt.Errorf("unknown vertex attribute %q", s)
}

// DefaultOBJLayout is position followed by normal.
var DefaultOBJLayout = []OBJAttribute{AttrPosition, AttrNormal}

// IndexType is the integer width of an index buffer.
type IndexType uint8

// Index types. IndexAuto picks the narrowest type for the vertex count.
const (
	IndexAuto IndexType = iota
	IndexUint8
	IndexUint16
	IndexUint32
)

// String returns the index type name.
func (t IndexType) String() string {
	switch t {
	case IndexAuto:
		return "auto"
	case IndexUint8:
		return "uint8"
	case IndexUint16:
		return "uint16"
	case IndexUint32:
		return "uint32"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// ParseIndexType parses "auto", "uint8", "uint16" or "uint32".
func ParseIndexType(s string) (IndexType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return IndexAuto, nil
	case "uint8", "u8":
		return IndexUint8, nil
	case "uint16", "u16":
		return IndexUint16, nil
	case "uint32", "u32":
		return IndexUint32, nil
	}
	return 0, fmt.Errorf("unknown index type %q", s)
}

// Size returns the byte width of one index. IndexAuto has no size.
func (t IndexType) Size() int {
	switch t {
	case IndexUint8:
		return 1
	case IndexUint16:
		return 2
	case IndexUint32:
		return 4
	default:
		return 0
	}
}

// maxVertices is the largest vertex count the type can address.
func (t IndexType) maxVertices() uint64 {
	switch t {
	case IndexUint8:
		return 1 << 8
	case IndexUint16:
		return 1 << 16
	default:
		return 1 << 32
	}
}

// SelectIndexType returns the narrowest type able to address vertexCount vertices.
func SelectIndexType(vertexCount int) IndexType {
	switch {
	case vertexCount < 1<<8:
		return IndexUint8
	case vertexCount < 1<<16:
		return IndexUint16
	default:
		return IndexUint32
	}
}

// VertexBuffer holds interleaved vertex data.
type VertexBuffer struct {
	Data   []float32
	Layout []OBJAttribute
	// Offsets holds the float offset of each layout entry within a vertex.
	Offsets []int
	// Stride is the number of floats per vertex.
	Stride int
	Count  int
}

// IndexBuffer holds a triangle list. Indices are kept as uint32 regardless of Type.
type IndexBuffer struct {
	Type    IndexType
	Indices []uint32
}

// Bytes encodes the indices little-endian at the buffer's width.
func (b *IndexBuffer) Bytes() []byte {
	size := b.Type.Size()
	out := make([]byte, len(b.Indices)*size)
	for i, idx := range b.Indices {
		switch b.Type {
		case IndexUint8:
			out[i] = uint8(idx)
		case IndexUint16:
			binary.LittleEndian.PutUint16(out[i*2:], uint16(idx))
		case IndexUint32:
			binary.LittleEndian.PutUint32(out[i*4:], idx)
		}
	}
	return out
}

// AttributeWidth returns how many floats an attribute occupies per vertex.
func (o *OBJ) AttributeWidth(a OBJAttribute) int {
	switch a {
	case AttrPosition:
		return 4
	case AttrNormal:
		return o.NormalWidth
	case AttrTexCoord:
		return o.TexCoordWidth
	default:
		return 0
	}
}

// IndexedBuffer interleaves the attributes named in layout, in that order,
// for every vertex and emits three indices per face. IndexAuto selects the
// narrowest index type. The mesh is not modified.
func (o *OBJ) IndexedBuffer(layout []OBJAttribute, indexType IndexType) (*VertexBuffer, *IndexBuffer, error) {
	vb := &VertexBuffer{
		Layout:  append([]OBJAttribute(nil), layout...),
		Offsets: make([]int, len(layout)),
		Count:   o.VertexCount(),
	}
	for i, attr := range layout {
		switch attr {
		case AttrPosition:
		case AttrNormal:
			if !o.HasNormals() {
				return nil, nil, fmt.Errorf("%w: %s", ErrMissingAttribute, attr)
			}
		case AttrTexCoord:
			if !o.HasTexCoords() {
				return nil, nil, fmt.Errorf("%w: %s", ErrMissingAttribute, attr)
			}
		default:
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingAttribute, attr)
		}
		vb.Offsets[i] = vb.Stride
		vb.Stride += o.AttributeWidth(attr)
	}

	if indexType > IndexUint32 {
		return nil, nil, fmt.Errorf("unknown index type %d", uint8(indexType))
	}
	if indexType == IndexAuto {
		indexType = SelectIndexType(vb.Count)
	} else if uint64(vb.Count) > indexType.maxVertices() {
		return nil, nil, fmt.Errorf("%w: %d vertices with %s", ErrIndexOverflow, vb.Count, indexType)
	}

	vb.Data = make([]float32, 0, vb.Count*vb.Stride)
	for i := 0; i < vb.Count; i++ {
		for _, attr := range layout {
			switch attr {
			case AttrPosition:
				vb.Data = o.Positions[i].Append(vb.Data)
			case AttrNormal:
				vb.Data = o.Normals[i].AppendPadded(vb.Data, o.NormalWidth)
			case AttrTexCoord:
				vb.Data = o.TexCoords[i].AppendPadded(vb.Data, o.TexCoordWidth)
			}
		}
	}

	ib := &IndexBuffer{
		Type:    indexType,
		Indices: make([]uint32, 0, len(o.Faces)*3),
	}
	for _, face := range o.Faces {
		for _, v := range face {
			ib.Indices = append(ib.Indices, uint32(v.Position))
		}
	}

	return vb, ib, nil
}
