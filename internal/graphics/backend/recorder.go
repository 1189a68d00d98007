package backend

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"tetris/internal/graphics/tex"
)

var _ Backend = (*Recorder)(nil)

// Call is one recorded backend operation.
type Call struct {
	Name   string
	Target BufferTarget
	Handle uint32
	Offset int
	Size   int
	First  int
	Count  int
}

// Recorder is a Backend that records calls instead of talking to a GPU. It
// hands out increasing handles and remembers which objects are still alive.
type Recorder struct {
	Calls []Call
	// Fail makes the named creation call ("CreateVertexArray", "CreateBuffer",
	// "CreateProgram", "CreateTexture") return the given error.
	Fail map[string]error

	next    uint32
	live    map[uint32]string
	bound   map[BufferTarget]Buffer
	buffers map[Buffer]int
	Layout  Layout
}

func NewRecorder() *Recorder {
	return &Recorder{
		Fail:    make(map[string]error),
		live:    make(map[uint32]string),
		bound:   make(map[BufferTarget]Buffer),
		buffers: make(map[Buffer]int),
	}
}

// Count returns how many times the named call was made.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Find returns the recorded calls with the given name.
func (r *Recorder) Find(name string) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Live returns the number of created objects not yet deleted.
func (r *Recorder) Live() int { return len(r.live) }

// BufferSize returns the allocated size of b in bytes.
func (r *Recorder) BufferSize(b Buffer) int { return r.buffers[b] }

// Reset forgets recorded calls but keeps object state.
func (r *Recorder) Reset() { r.Calls = nil }

func (r *Recorder) record(c Call) { r.Calls = append(r.Calls, c) }

func (r *Recorder) create(kind string) (uint32, error) {
	r.record(Call{Name: kind})
	if err := r.Fail[kind]; err != nil {
		return 0, err
	}
	r.next++
	r.live[r.next] = kind
	return r.next, nil
}

func (r *Recorder) destroy(name string, h uint32) {
	r.record(Call{Name: name, Handle: h})
	delete(r.live, h)
}

func (r *Recorder) CreateVertexArray() (VertexArray, error) {
	h, err := r.create("CreateVertexArray")
	return VertexArray(h), err
}

func (r *Recorder) BindVertexArray(va VertexArray) {
	r.record(Call{Name: "BindVertexArray", Handle: uint32(va)})
}

func (r *Recorder) DeleteVertexArray(va VertexArray) { r.destroy("DeleteVertexArray", uint32(va)) }

func (r *Recorder) CreateBuffer() (Buffer, error) {
	h, err := r.create("CreateBuffer")
	return Buffer(h), err
}

func (r *Recorder) BindBuffer(t BufferTarget, b Buffer) {
	r.bound[t] = b
	r.record(Call{Name: "BindBuffer", Target: t, Handle: uint32(b)})
}

func (r *Recorder) BufferData(t BufferTarget, data []byte) {
	b := r.bound[t]
	r.buffers[b] = len(data)
	r.record(Call{Name: "BufferData", Target: t, Handle: uint32(b), Size: len(data)})
}

func (r *Recorder) BufferSubData(t BufferTarget, offset int, data []byte) {
	b := r.bound[t]
	if offset+len(data) > r.buffers[b] {
		panic(fmt.Sprintf("BufferSubData past end of %s buffer %d: %d+%d > %d", t, b, offset, len(data), r.buffers[b]))
	}
	r.record(Call{Name: "BufferSubData", Target: t, Handle: uint32(b), Offset: offset, Size: len(data)})
}

func (r *Recorder) DeleteBuffer(b Buffer) {
	delete(r.buffers, b)
	r.destroy("DeleteBuffer", uint32(b))
}

func (r *Recorder) CreateProgram(vertexSrc, fragmentSrc string) (Program, error) {
	h, err := r.create("CreateProgram")
	return Program(h), err
}

func (r *Recorder) UseProgram(p Program) { r.record(Call{Name: "UseProgram", Handle: uint32(p)}) }

func (r *Recorder) SetUniformMatrix4(p Program, name string, m mgl32.Mat4) {
	r.record(Call{Name: "SetUniformMatrix4", Handle: uint32(p)})
}

func (r *Recorder) SetUniformInt(p Program, name string, v int32) {
	r.record(Call{Name: "SetUniformInt", Handle: uint32(p)})
}

func (r *Recorder) DeleteProgram(p Program) { r.destroy("DeleteProgram", uint32(p)) }

func (r *Recorder) CreateTexture(s *tex.Surface) (Texture, error) {
	h, err := r.create("CreateTexture")
	if err == nil {
		r.Calls[len(r.Calls)-1].Size = len(s.Pix)
	}
	return Texture(h), err
}

func (r *Recorder) UpdateTexture(t Texture, s *tex.Surface) {
	r.record(Call{Name: "UpdateTexture", Handle: uint32(t), Size: len(s.Pix)})
}

func (r *Recorder) BindTexture(t Texture) { r.record(Call{Name: "BindTexture", Handle: uint32(t)}) }

func (r *Recorder) DeleteTexture(t Texture) { r.destroy("DeleteTexture", uint32(t)) }

func (r *Recorder) ApplyLayout(l Layout) {
	r.Layout = l
	r.record(Call{Name: "ApplyLayout", Size: l.Stride()})
}

func (r *Recorder) EnableBlend() { r.record(Call{Name: "EnableBlend"}) }

func (r *Recorder) Viewport(width, height int) {
	r.record(Call{Name: "Viewport", First: width, Count: height})
}

func (r *Recorder) Clear(color mgl32.Vec4) { r.record(Call{Name: "Clear"}) }

func (r *Recorder) DrawTriangles(first, count int) {
	r.record(Call{Name: "DrawTriangles", First: first, Count: count})
}
