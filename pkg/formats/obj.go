package formats

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-obj/pkg/math"
)

// OBJ format errors.
var (
	ErrMalformedStatement = errors.New("malformed OBJ statement")
	ErrDegenerateNormal   = errors.New("invalid OBJ normal")
	ErrNotImplemented     = errors.New("not implemented")
	ErrIndexOutOfRange    = errors.New("OBJ index out of range")
	ErrFaceFormatMismatch = errors.New("all faces must have the same face format")
	ErrMissingAttribute   = errors.New("attribute not present in OBJ mesh")
	ErrIndexOverflow      = errors.New("index type too narrow for vertex count")
	ErrParserFinished     = errors.New("OBJ parser already finished")
)

// OBJ pad width limits for normals and texture coordinates.
const (
	DefaultOBJPadWidth = 4
	MinOBJPadWidth     = 3
)

// OBJParseError reports the line a statement handler failed on.
type OBJParseError struct {
	Line int
	Err  error
}

func (e *OBJParseError) Error() string {
	return fmt.Sprintf("parsing error at line %d: %v", e.Line, e.Err)
}

func (e *OBJParseError) Unwrap() error {
	return e.Err
}

// OBJFaceFormat is the set of attributes every face in a file references.
// Positions are always referenced, so V is the zero value.
type OBJFaceFormat uint8

// Face format bits.
const (
	FaceHasNormal OBJFaceFormat = 1 << iota
	FaceHasTexCoord
)

// Face formats.
const (
	FaceFormatV   OBJFaceFormat = 0
	FaceFormatVN                = FaceHasNormal
	FaceFormatVT                = FaceHasTexCoord
	FaceFormatVTN               = FaceHasNormal | FaceHasTexCoord
)

// String returns the face format as written in OBJ terms ("V", "VT", "VN", "VTN").
func (f OBJFaceFormat) String() string {
	switch f {
	case FaceFormatV:
		return "V"
	case FaceFormatVN:
		return "VN"
	case FaceFormatVT:
		return "VT"
	case FaceFormatVTN:
		return "VTN"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(f))
	}
}

// noIndex marks an attribute a face vertex does not reference.
const noIndex = -1

// FaceVertex is one corner of a face. Indices are zero-based, -1 when absent.
// Shared is set when every present index equals Position, so Position alone
// addresses the whole vertex.
type FaceVertex struct {
	Position int
	Normal   int
	TexCoord int
	Shared   bool
}

// OBJFace is a triangle.
type OBJFace [3]FaceVertex

// OBJOptions configures attribute padding for the OBJ parser.
type OBJOptions struct {
	// NormalWidth is the number of floats each normal occupies in vertex buffers (>= 3).
	NormalWidth int
	// TexCoordWidth is the number of floats each texture coordinate occupies (>= 3).
	TexCoordWidth int
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// DefaultOBJOptions returns the default pad widths.
func DefaultOBJOptions() OBJOptions {
	return OBJOptions{
		NormalWidth:   DefaultOBJPadWidth,
		TexCoordWidth: DefaultOBJPadWidth,
	}
}

func (o *OBJOptions) validate() error {
	if o.NormalWidth == 0 {
		o.NormalWidth = DefaultOBJPadWidth
	}
	if o.TexCoordWidth == 0 {
		o.TexCoordWidth = DefaultOBJPadWidth
	}
	if o.NormalWidth < MinOBJPadWidth {
		return fmt.Errorf("normal width %d: must be at least %d", o.NormalWidth, MinOBJPadWidth)
	}
	if o.TexCoordWidth < MinOBJPadWidth {
		return fmt.Errorf("texcoord width %d: must be at least %d", o.TexCoordWidth, MinOBJPadWidth)
	}
	return nil
}

// OBJ is a parsed and normalized Wavefront OBJ mesh.
// It must not be modified after parsing, including the exported slices and
// the Skipped map; all queries are safe for concurrent use.
type OBJ struct {
	Positions []math.Vec4
	Normals   []math.Vec3
	TexCoords []math.Vec3
	Faces     []OBJFace
	Format    OBJFaceFormat

	NormalWidth   int
	TexCoordWidth int

	// Rebuilt is true when divergent attribute indices forced a vertex rebuild.
	Rebuilt bool
	// Skipped counts statements with unsupported keywords (o, g, usemtl, ...).
	Skipped map[string]int
}

// OBJStats summarizes a parsed mesh.
type OBJStats struct {
	Positions int
	Normals   int
	TexCoords int
	Faces     int
	Vertices  int
	Format    OBJFaceFormat
	Rebuilt   bool
}

// OBJBounds is the axis-aligned bounding box of the mesh positions.
type OBJBounds struct {
	Min math.Vec3
	Max math.Vec3
}

// ParseOBJ parses OBJ text from r.
func ParseOBJ(r io.Reader, opts OBJOptions) (*OBJ, error) {
	p, err := NewOBJParser(opts)
	if err != nil {
		return nil, err
	}
	if err := p.Parse(r); err != nil {
		return nil, err
	}
	return p.Finish()
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string, opts OBJOptions) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	defer f.Close()

	return ParseOBJ(f, opts)
}

// HasNormals reports whether faces reference normals.
func (o *OBJ) HasNormals() bool {
	return o.Format&FaceHasNormal != 0
}

// HasTexCoords reports whether faces reference texture coordinates.
func (o *OBJ) HasTexCoords() bool {
	return o.Format&FaceHasTexCoord != 0
}

// VertexCount returns the number of addressable vertex rows: the length
// shared by every attribute sequence the face format carries.
func (o *OBJ) VertexCount() int {
	n := len(o.Positions)
	if o.HasNormals() && len(o.Normals) < n {
		n = len(o.Normals)
	}
	if o.HasTexCoords() && len(o.TexCoords) < n {
		n = len(o.TexCoords)
	}
	return n
}

// Stats returns element counts for the mesh.
func (o *OBJ) Stats() OBJStats {
	return OBJStats{
		Positions: len(o.Positions),
		Normals:   len(o.Normals),
		TexCoords: len(o.TexCoords),
		Faces:     len(o.Faces),
		Vertices:  o.VertexCount(),
		Format:    o.Format,
		Rebuilt:   o.Rebuilt,
	}
}

// Bounds returns the bounding box of the emitted vertex rows, ignoring W.
// An empty mesh yields a zero box.
func (o *OBJ) Bounds() OBJBounds {
	positions := o.Positions[:o.VertexCount()]
	if len(positions) == 0 {
		return OBJBounds{}
	}

	b := OBJBounds{Min: positions[0].XYZ(), Max: positions[0].XYZ()}
	for _, p := range positions[1:] {
		b.Min.X = min(b.Min.X, p.X)
		b.Min.Y = min(b.Min.Y, p.Y)
		b.Min.Z = min(b.Min.Z, p.Z)
		b.Max.X = max(b.Max.X, p.X)
		b.Max.Y = max(b.Max.Y, p.Y)
		b.Max.Z = max(b.Max.Z, p.Z)
	}
	return b
}
