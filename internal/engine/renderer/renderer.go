// Package renderer uploads meshes to OpenGL and draws them.
package renderer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-obj/internal/engine/model"
	"github.com/Faultbox/midgard-obj/internal/engine/shader"
	"github.com/Faultbox/midgard-obj/internal/logger"
	"github.com/Faultbox/midgard-obj/pkg/formats"
	"github.com/Faultbox/midgard-obj/pkg/math"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config  Config
	log     *zap.Logger
	program *shader.Program
}

// GPUMesh is a mesh resident in GPU buffers.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	IndexType  uint32
	HasNormals bool
}

const vertexShader = `
#version 410 core

layout (location = 0) in vec4 aPosition;
layout (location = 1) in vec3 aNormal;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;

void main() {
	gl_Position = uMVP * aPosition;
	vNormal = mat3(uModel) * aNormal;
}
`

const fragmentShader = `
#version 410 core

in vec3 vNormal;
out vec4 FragColor;

uniform vec3 uLightDir;
uniform vec3 uColor;

void main() {
	vec3 n = normalize(vNormal);
	float diffuse = max(dot(n, -uLightDir), 0.0);
	FragColor = vec4(uColor * (0.25 + 0.75 * diffuse), 1.0);
}
`

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
		log:    logger.Named("renderer"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.program, err = shader.NewProgram(vertexShader, fragmentShader, "uMVP", "uModel", "uLightDir", "uColor")
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	r.log.Debug("closing renderer")
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Upload copies a mesh into a VAO with its vertex and element buffers.
func (r *Renderer) Upload(mesh *model.Mesh) (*GPUMesh, error) {
	if len(mesh.Vertices) == 0 || mesh.IndexCount == 0 {
		return nil, fmt.Errorf("mesh has no geometry")
	}
	indexType, err := glIndexType(mesh.IndexType)
	if err != nil {
		return nil, err
	}

	gm := &GPUMesh{IndexCount: mesh.IndexCount, IndexType: indexType}

	gl.GenVertexArrays(1, &gm.VAO)
	gl.BindVertexArray(gm.VAO)

	gl.GenBuffers(1, &gm.VBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, gm.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*4, unsafe.Pointer(&mesh.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &gm.EBO)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gm.EBO)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices), unsafe.Pointer(&mesh.Indices[0]), gl.STATIC_DRAW)

	for _, attr := range mesh.Attributes {
		gl.VertexAttribPointerWithOffset(attr.Location, attr.Size, gl.FLOAT, false, mesh.Stride, uintptr(attr.Offset))
		gl.EnableVertexAttribArray(attr.Location)
		if attr.Kind == formats.AttrNormal {
			gm.HasNormals = true
		}
	}

	gl.BindVertexArray(0)

	r.log.Debug("mesh uploaded",
		zap.Uint32("vao", gm.VAO),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int32("indices", mesh.IndexCount),
		zap.Stringer("indexType", mesh.IndexType),
	)
	return gm, nil
}

// Draw renders an uploaded mesh with the given model, view and projection matrices.
func (r *Renderer) Draw(gm *GPUMesh, modelM, view, proj math.Mat4) {
	mvp := proj.Mul(view).Mul(modelM)

	r.program.Use()
	gl.UniformMatrix4fv(r.program.Uniform("uMVP"), 1, false, mvp.Ptr())
	gl.UniformMatrix4fv(r.program.Uniform("uModel"), 1, false, modelM.Ptr())
	gl.Uniform3f(r.program.Uniform("uLightDir"), -0.4, -0.8, -0.45)
	gl.Uniform3f(r.program.Uniform("uColor"), 0.8, 0.75, 0.7)

	gl.BindVertexArray(gm.VAO)
	if !gm.HasNormals {
		// Disabled arrays read the generic value; face the camera.
		gl.VertexAttrib3f(model.LocationNormal, 0, 0, 1)
	}
	gl.DrawElements(gl.TRIANGLES, gm.IndexCount, gm.IndexType, nil)
	gl.BindVertexArray(0)
}

// ReadPixels returns the current framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() (pixels []byte, width, height int) {
	width, height = r.config.Width, r.config.Height
	pixels = make([]byte, width*height*4)
	if len(pixels) == 0 {
		return pixels, width, height
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&pixels[0]))
	return pixels, width, height
}

// Release deletes the GPU buffers of a mesh.
func (r *Renderer) Release(gm *GPUMesh) {
	gl.DeleteBuffers(1, &gm.EBO)
	gl.DeleteBuffers(1, &gm.VBO)
	gl.DeleteVertexArrays(1, &gm.VAO)
}

func glIndexType(t formats.IndexType) (uint32, error) {
	switch t {
	case formats.IndexUint8:
		return gl.UNSIGNED_BYTE, nil
	case formats.IndexUint16:
		return gl.UNSIGNED_SHORT, nil
	case formats.IndexUint32:
		return gl.UNSIGNED_INT, nil
	}
	return 0, fmt.Errorf("unsupported index type %s", t)
}
