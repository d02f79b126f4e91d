// Package shader provides OpenGL shader compilation utilities.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Program is a linked shader program with cached uniform locations.
type Program struct {
	ID       uint32
	uniforms map[string]int32
}

// NewProgram compiles and links a program and looks up the named uniforms.
// A uniform the linker optimized away is an error.
func NewProgram(vertexSrc, fragmentSrc string, uniforms ...string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}

	p := &Program{ID: id, uniforms: make(map[string]int32, len(uniforms))}
	for _, name := range uniforms {
		loc := GetUniform(id, name)
		if loc < 0 {
			gl.DeleteProgram(id)
			return nil, fmt.Errorf("uniform %q not found in program %d", name, id)
		}
		p.uniforms[name] = loc
	}
	return p, nil
}

// Use binds the program.
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// Uniform returns a cached uniform location, or -1 when unknown.
func (p *Program) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

// Delete releases the program.
func (p *Program) Delete() {
	if p.ID != 0 {
		gl.DeleteProgram(p.ID)
		p.ID = 0
	}
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", string(log))
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, name string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", name, string(log))
	}

	return shader, nil
}

// GetUniform returns the uniform location for the given name, -1 if inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
