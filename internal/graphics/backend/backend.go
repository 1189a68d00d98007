package backend

import (
	"github.com/go-gl/mathgl/mgl32"

	"tetris/internal/graphics/tex"
)

// Handles to GPU objects. Zero is never a valid object.
type (
	VertexArray uint32
	Buffer      uint32
	Program     uint32
	Texture     uint32
)

// BufferTarget selects the binding point a buffer is used through.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

func (t BufferTarget) String() string {
	switch t {
	case ArrayBuffer:
		return "array"
	case ElementArrayBuffer:
		return "element"
	}
	return "unknown"
}

// Backend is the set of GPU operations the renderer relies on. Creation calls
// return an error when the driver cannot provide the object.
type Backend interface {
	CreateVertexArray() (VertexArray, error)
	BindVertexArray(VertexArray)
	DeleteVertexArray(VertexArray)

	CreateBuffer() (Buffer, error)
	BindBuffer(BufferTarget, Buffer)
	// BufferData reallocates the buffer bound to target and uploads data.
	BufferData(target BufferTarget, data []byte)
	// BufferSubData overwrites part of the buffer bound to target in place.
	BufferSubData(target BufferTarget, offset int, data []byte)
	DeleteBuffer(Buffer)

	// CreateProgram compiles and links both stages. Errors carry the
	// driver's info log.
	CreateProgram(vertexSrc, fragmentSrc string) (Program, error)
	UseProgram(Program)
	SetUniformMatrix4(p Program, name string, m mgl32.Mat4)
	SetUniformInt(p Program, name string, v int32)
	DeleteProgram(Program)

	CreateTexture(s *tex.Surface) (Texture, error)
	UpdateTexture(t Texture, s *tex.Surface)
	BindTexture(Texture)
	DeleteTexture(Texture)

	// ApplyLayout describes the vertex format of the bound array buffer to the
	// bound vertex array.
	ApplyLayout(Layout)
	EnableBlend()
	Viewport(width, height int)
	Clear(color mgl32.Vec4)
	// DrawTriangles issues an indexed triangle draw of count indices starting
	// at index first of the bound element buffer.
	DrawTriangles(first, count int)
}
