package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-obj/pkg/math"
)

// maxOBJLineSize bounds a single OBJ statement.
const maxOBJLineSize = 1 << 20

// objHandler parses the fields following a statement keyword.
type objHandler func(p *OBJParser, args []string) error

// objHandlers maps statement keywords to their handlers. Other keywords are skipped.
var objHandlers = map[string]objHandler{
	"v":  (*OBJParser).parsePosition,
	"vn": (*OBJParser).parseNormal,
	"vt": (*OBJParser).parseTexCoord,
	"f":  (*OBJParser).parseFace,
	"vp": (*OBJParser).parseParamVertex,
}

// OBJParser accumulates OBJ statements. Call Finish to obtain the mesh.
// A parser is not safe for concurrent use.
type OBJParser struct {
	opts OBJOptions
	log  *zap.Logger

	positions []math.Vec4
	normals   []math.Vec3
	texCoords []math.Vec3
	faces     []OBJFace

	format    OBJFaceFormat
	formatSet bool
	dirty     bool

	line     int
	skipped  map[string]int
	err      error
	finished bool
}

// NewOBJParser creates a parser. Zero pad widths take the default.
func NewOBJParser(opts OBJOptions) (*OBJParser, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &OBJParser{
		opts:    opts,
		log:     log,
		skipped: make(map[string]int),
	}, nil
}

// Parse feeds every line of r to the parser, stopping at the first error.
func (p *OBJParser) Parse(r io.Reader) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxOBJLineSize)

	for s.Scan() {
		if err := p.ParseLine(s.Text()); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		p.err = fmt.Errorf("reading OBJ data: %w", err)
		return p.err
	}
	return nil
}

// ParseLine parses a single statement. Line numbers count calls.
// After the first failure every call returns that failure.
func (p *OBJParser) ParseLine(line string) error {
	if p.finished {
		return ErrParserFinished
	}
	if p.err != nil {
		return p.err
	}
	p.line++

	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	handler, ok := objHandlers[fields[0]]
	if !ok {
		p.skipped[fields[0]]++
		return nil
	}
	if err := handler(p, fields[1:]); err != nil {
		p.err = &OBJParseError{Line: p.line, Err: err}
		return p.err
	}
	return nil
}

// Finish ends the parse, rebuilding vertices if any face vertex had
// divergent attribute indices. The parser cannot be used afterwards.
func (p *OBJParser) Finish() (*OBJ, error) {
	if p.err != nil {
		return nil, p.err
	}
	if p.finished {
		return nil, ErrParserFinished
	}
	p.finished = true

	obj := &OBJ{
		Positions:     p.positions,
		Normals:       p.normals,
		TexCoords:     p.texCoords,
		Faces:         p.faces,
		Format:        p.format,
		NormalWidth:   p.opts.NormalWidth,
		TexCoordWidth: p.opts.TexCoordWidth,
		Skipped:       p.skipped,
	}
	if p.dirty && obj.Format != FaceFormatV {
		rebuildVertices(obj)
	}

	if len(p.skipped) > 0 {
		p.log.Debug("skipped unsupported OBJ statements", zap.Any("keywords", p.skipped))
	}
	p.log.Debug("parsed OBJ",
		zap.Int("lines", p.line),
		zap.Int("positions", len(obj.Positions)),
		zap.Int("normals", len(obj.Normals)),
		zap.Int("texcoords", len(obj.TexCoords)),
		zap.Int("faces", len(obj.Faces)),
		zap.Stringer("format", obj.Format),
		zap.Bool("rebuilt", obj.Rebuilt))

	return obj, nil
}

func (p *OBJParser) parsePosition(args []string) error {
	if len(args) != 3 && len(args) != 4 {
		return fmt.Errorf("%w: vertex must have 3 or 4 parameters, got %d", ErrMalformedStatement, len(args))
	}
	f, err := parseOBJFloats(args)
	if err != nil {
		return err
	}

	v := math.Vec4{X: f[0], Y: f[1], Z: f[2], W: 1}
	if len(f) == 4 {
		v.W = f[3]
	}
	p.positions = append(p.positions, v)
	return nil
}

func (p *OBJParser) parseNormal(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("%w: normal must have 3 parameters, got %d", ErrMalformedStatement, len(args))
	}
	f, err := parseOBJFloats(args)
	if err != nil {
		return err
	}

	n, ok := math.Vec3{X: f[0], Y: f[1], Z: f[2]}.Normalize()
	if !ok {
		return fmt.Errorf("%w: zero-length normal", ErrDegenerateNormal)
	}
	p.normals = append(p.normals, n)
	return nil
}

func (p *OBJParser) parseTexCoord(args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return fmt.Errorf("%w: texture coordinate must have 2 or 3 parameters, got %d", ErrMalformedStatement, len(args))
	}
	f, err := parseOBJFloats(args)
	if err != nil {
		return err
	}

	t := math.Vec3{X: f[0], Y: f[1]}
	if len(f) == 3 {
		t.Z = f[2]
	}
	p.texCoords = append(p.texCoords, t)
	return nil
}

func (p *OBJParser) parseParamVertex([]string) error {
	return fmt.Errorf("%w: parameter space vertices", ErrNotImplemented)
}

func (p *OBJParser) parseFace(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: a face must have at least 3 vertices", ErrMalformedStatement)
	}
	if len(args) > 3 {
		return fmt.Errorf("%w: faces with %d vertices, only triangles are supported", ErrNotImplemented, len(args))
	}

	format, err := detectFaceFormat(args[0])
	if err != nil {
		return err
	}

	var face OBJFace
	for i, tok := range args {
		if face[i], err = parseFaceVertex(tok, format); err != nil {
			return err
		}
	}

	if p.formatSet && format != p.format {
		return fmt.Errorf("%w: face is %s, file is %s", ErrFaceFormatMismatch, format, p.format)
	}
	p.format = format
	p.formatSet = true

	for i := range face {
		v := &face[i]
		if v.Position >= len(p.positions) {
			return fmt.Errorf("%w: invalid vertex position index %d", ErrIndexOutOfRange, v.Position+1)
		}
		if v.Normal != noIndex && v.Normal >= len(p.normals) {
			return fmt.Errorf("%w: invalid vertex normal index %d", ErrIndexOutOfRange, v.Normal+1)
		}
		if v.TexCoord != noIndex && v.TexCoord >= len(p.texCoords) {
			return fmt.Errorf("%w: invalid vertex texture coordinate index %d", ErrIndexOutOfRange, v.TexCoord+1)
		}

		v.Shared = (v.Normal == noIndex || v.Normal == v.Position) &&
			(v.TexCoord == noIndex || v.TexCoord == v.Position)
		if !v.Shared {
			p.dirty = true
		}
	}

	p.faces = append(p.faces, face)
	return nil
}

// detectFaceFormat infers the reference syntax from a face's first token.
func detectFaceFormat(tok string) (OBJFaceFormat, error) {
	switch {
	case strings.Contains(tok, "//"):
		return FaceFormatVN, nil
	case strings.Contains(tok, "/"):
		switch strings.Count(tok, "/") {
		case 2:
			return FaceFormatVTN, nil
		case 1:
			return FaceFormatVT, nil
		}
		return 0, fmt.Errorf("%w: invalid face vertex %q", ErrMalformedStatement, tok)
	default:
		return FaceFormatV, nil
	}
}

// parseFaceVertex parses "i", "i/j", "i//k" or "i/j/k" according to format.
func parseFaceVertex(tok string, format OBJFaceFormat) (FaceVertex, error) {
	v := FaceVertex{Normal: noIndex, TexCoord: noIndex}

	var pos, tex, norm string
	parts := strings.Split(tok, "/")
	switch {
	case format == FaceFormatV && len(parts) == 1:
		pos = parts[0]
	case format == FaceFormatVT && len(parts) == 2:
		pos, tex = parts[0], parts[1]
	case format == FaceFormatVN && len(parts) == 3 && parts[1] == "":
		pos, norm = parts[0], parts[2]
	case format == FaceFormatVTN && len(parts) == 3 && parts[1] != "":
		pos, tex, norm = parts[0], parts[1], parts[2]
	default:
		return v, fmt.Errorf("%w: face vertex %q does not match face format %s", ErrMalformedStatement, tok, format)
	}

	var err error
	if v.Position, err = parseOBJIndex(pos, "vertex position"); err != nil {
		return v, err
	}
	if format&FaceHasTexCoord != 0 {
		if v.TexCoord, err = parseOBJIndex(tex, "vertex texture coordinate"); err != nil {
			return v, err
		}
	}
	if format&FaceHasNormal != 0 {
		if v.Normal, err = parseOBJIndex(norm, "vertex normal"); err != nil {
			return v, err
		}
	}
	return v, nil
}

// parseOBJIndex converts a one-based OBJ index to zero-based.
func parseOBJIndex(s, kind string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s index %q", ErrMalformedStatement, kind, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: relative %s index %d", ErrNotImplemented, kind, n)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: invalid %s index 0", ErrIndexOutOfRange, kind)
	}
	return n - 1, nil
}

func parseOBJFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid number %q", ErrMalformedStatement, s)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// vertexKey identifies one combination of attribute indices.
type vertexKey struct {
	position, normal, texCoord int
}

// rebuildVertices replaces the attribute sequences with one row per distinct
// attribute combination referenced by a face, in first-reference order, and
// rewrites every face vertex to a shared index.
func rebuildVertices(obj *OBJ) {
	hasNormals, hasTexCoords := obj.HasNormals(), obj.HasTexCoords()

	var (
		positions []math.Vec4
		normals   []math.Vec3
		texCoords []math.Vec3
	)
	remap := make(map[vertexKey]int)

	for fi := range obj.Faces {
		face := &obj.Faces[fi]
		for vi := range face {
			key := canonicalKey(face[vi], hasNormals, hasTexCoords)

			idx, ok := remap[key]
			if !ok {
				idx = len(positions)
				remap[key] = idx
				positions = append(positions, obj.Positions[key.position])
				if hasNormals {
					normals = append(normals, obj.Normals[key.normal])
				}
				if hasTexCoords {
					texCoords = append(texCoords, obj.TexCoords[key.texCoord])
				}
			}
			face[vi] = sharedVertex(idx, hasNormals, hasTexCoords)
		}
	}

	obj.Positions = positions
	obj.Normals = normals
	obj.TexCoords = texCoords
	obj.Rebuilt = true
}

func canonicalKey(v FaceVertex, hasNormals, hasTexCoords bool) vertexKey {
	if !v.Shared {
		return vertexKey{v.Position, v.Normal, v.TexCoord}
	}
	return sharedIndices(v.Position, hasNormals, hasTexCoords)
}

func sharedVertex(idx int, hasNormals, hasTexCoords bool) FaceVertex {
	k := sharedIndices(idx, hasNormals, hasTexCoords)
	return FaceVertex{Position: k.position, Normal: k.normal, TexCoord: k.texCoord, Shared: true}
}

func sharedIndices(idx int, hasNormals, hasTexCoords bool) vertexKey {
	k := vertexKey{idx, noIndex, noIndex}
	if hasNormals {
		k.normal = idx
	}
	if hasTexCoords {
		k.texCoord = idx
	}
	return k
}
