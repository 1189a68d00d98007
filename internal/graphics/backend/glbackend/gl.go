// Package glbackend implements backend.Backend on OpenGL 4.1 core.
package glbackend

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"tetris/internal/graphics/backend"
	"tetris/internal/graphics/tex"
)

// GL talks to the OpenGL context current on the calling thread. gl.Init must
// have succeeded before any method is called.
type GL struct {
	// Debug checks glGetError after every call that can fail.
	Debug bool

	log *slog.Logger
}

var _ backend.Backend = (*GL)(nil)

// New returns a backend reporting GL errors to lg. A nil lg discards them.
func New(lg *slog.Logger) *GL {
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	return &GL{log: lg}
}

func target(t backend.BufferTarget) uint32 {
	if t == backend.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func (g *GL) check(label string) {
	if !g.Debug {
		return
	}
	if err := gl.GetError(); err != gl.NO_ERROR {
		g.log.Warn("gl error", slog.String("call", label), slog.String("code", fmt.Sprintf("0x%x", err)))
	}
}

func (g *GL) CreateVertexArray() (backend.VertexArray, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, fmt.Errorf("could not create vertex array: 0x%x", gl.GetError())
	}
	return backend.VertexArray(vao), nil
}

func (g *GL) BindVertexArray(va backend.VertexArray) { gl.BindVertexArray(uint32(va)) }

func (g *GL) DeleteVertexArray(va backend.VertexArray) {
	id := uint32(va)
	gl.DeleteVertexArrays(1, &id)
}

func (g *GL) CreateBuffer() (backend.Buffer, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, fmt.Errorf("could not create buffer: 0x%x", gl.GetError())
	}
	return backend.Buffer(buf), nil
}

func (g *GL) BindBuffer(t backend.BufferTarget, b backend.Buffer) {
	gl.BindBuffer(target(t), uint32(b))
}

func (g *GL) BufferData(t backend.BufferTarget, data []byte) {
	if len(data) == 0 {
		gl.BufferData(target(t), 0, nil, gl.DYNAMIC_DRAW)
		return
	}
	gl.BufferData(target(t), len(data), gl.Ptr(data), gl.DYNAMIC_DRAW)
	g.check("BufferData")
}

func (g *GL) BufferSubData(t backend.BufferTarget, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target(t), offset, len(data), gl.Ptr(data))
	g.check("BufferSubData")
}

func (g *GL) DeleteBuffer(b backend.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

func (g *GL) CreateProgram(vertexSrc, fragmentSrc string) (backend.Program, error) {
	program, err := compileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	return backend.Program(program), nil
}

func (g *GL) UseProgram(p backend.Program) { gl.UseProgram(uint32(p)) }

func (g *GL) SetUniformMatrix4(p backend.Program, name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")), 1, false, &m[0])
}

func (g *GL) SetUniformInt(p backend.Program, name string, v int32) {
	gl.Uniform1i(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")), v)
}

func (g *GL) DeleteProgram(p backend.Program) { gl.DeleteProgram(uint32(p)) }

func formats(ch tex.Channels) (internal int32, format uint32) {
	switch ch {
	case tex.Grayscale:
		return gl.R8, gl.RED
	case tex.RGB:
		return gl.RGB8, gl.RGB
	}
	return gl.RGBA8, gl.RGBA
}

func (g *GL) CreateTexture(s *tex.Surface) (backend.Texture, error) {
	var texture uint32
	gl.GenTextures(1, &texture)
	if texture == 0 {
		return 0, fmt.Errorf("could not create texture: 0x%x", gl.GetError())
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	if s.Channels == tex.Grayscale {
		// Coverage textures read as white with the coverage in alpha, so the
		// same shader serves glyphs, solid shapes and colour images.
		swizzle := [4]int32{gl.ONE, gl.ONE, gl.ONE, gl.RED}
		gl.TexParameteriv(gl.TEXTURE_2D, gl.TEXTURE_SWIZZLE_RGBA, &swizzle[0])
	}
	g.upload(s)
	if err := gl.GetError(); err != gl.NO_ERROR {
		gl.DeleteTextures(1, &texture)
		return 0, fmt.Errorf("could not upload %dx%d texture: 0x%x", s.Width, s.Height, err)
	}
	return backend.Texture(texture), nil
}

func (g *GL) upload(s *tex.Surface) {
	internal, format := formats(s.Channels)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	var pix *uint8
	if len(s.Pix) > 0 {
		pix = &s.Pix[0]
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(s.Width), int32(s.Height), 0, format, gl.UNSIGNED_BYTE, gl.Ptr(pix))
}

func (g *GL) UpdateTexture(t backend.Texture, s *tex.Surface) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
	g.upload(s)
	g.check("UpdateTexture")
}

func (g *GL) BindTexture(t backend.Texture) {
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (g *GL) DeleteTexture(t backend.Texture) {
	id := uint32(t)
	gl.DeleteTextures(1, &id)
}

func (g *GL) ApplyLayout(l backend.Layout) {
	stride := int32(l.Stride())
	offsets := l.Offsets()
	for i, a := range l.Attribs {
		index := uint32(i)
		gl.EnableVertexAttribArray(index)
		switch a.Kind {
		case backend.Float:
			gl.VertexAttribPointerWithOffset(index, int32(a.Count), gl.FLOAT, false, stride, uintptr(offsets[i]))
		case backend.Int:
			gl.VertexAttribIPointerWithOffset(index, int32(a.Count), gl.INT, stride, uintptr(offsets[i]))
		case backend.Byte:
			gl.VertexAttribPointerWithOffset(index, int32(a.Count), gl.UNSIGNED_BYTE, true, stride, uintptr(offsets[i]))
		}
	}
	g.check("ApplyLayout")
}

func (g *GL) EnableBlend() {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
}

func (g *GL) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (g *GL) Clear(c mgl32.Vec4) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (g *GL) DrawTriangles(first, count int) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, uintptr(first*4))
	g.check("DrawTriangles")
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex stage: %w", err)
	}
	defer gl.DeleteShader(vertexShader)
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment stage: %w", err)
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	if program == 0 {
		return 0, fmt.Errorf("could not create program: 0x%x", gl.GetError())
	}
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		info := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(info))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("failed to link program: %v", strings.TrimRight(info, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		info := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(info))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile shader: %v", strings.TrimRight(info, "\x00"))
	}
	return shader, nil
}
