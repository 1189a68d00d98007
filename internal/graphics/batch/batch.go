package batch

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// AtlasTexture is the texture key of shapes that sample the glyph atlas,
// including untextured shapes which read its solid patch.
const AtlasTexture uint32 = 0

var ErrIndexOutOfRange = errors.New("shape index out of range")

// Vertex is the per-vertex data uploaded to the GPU: position, texture
// coordinate and RGBA colour, all float32.
type Vertex struct {
	Pos   mgl32.Vec2
	Tex   mgl32.Vec2
	Color mgl32.Vec4
}

// VertexSize is the size of one Vertex in bytes.
const VertexSize = int(unsafe.Sizeof(Vertex{}))

// Run is a contiguous span of indices drawn with one texture bound.
type Run struct {
	Texture uint32
	First   int
	Count   int
}

// DefaultTexCoords addresses the top-right corner of a 512x512 atlas.
var DefaultTexCoords = [4]mgl32.Vec2{
	{1 - 2.5/512, 1 - 2.5/512},
	{1 - 2.5/512, 1},
	{1, 1 - 2.5/512},
	{1, 1},
}

// Batch accumulates the geometry of one frame. Every index refers to a vertex
// already in the batch.
type Batch struct {
	vertices  []Vertex
	indices   []uint32
	runs      []Run
	texCoords [4]mgl32.Vec2
}

func New() *Batch {
	return &Batch{texCoords: DefaultTexCoords}
}

// SetSolidTexCoords sets the table untextured shapes take their texture
// coordinates from. Point i of a shape uses entry i%4.
func (b *Batch) SetSolidTexCoords(tc [4]mgl32.Vec2) {
	b.texCoords = tc
}

// PushShape appends an untextured shape. indices are local to points and are
// rebased onto the batch's current vertex count.
func (b *Batch) PushShape(points []mgl32.Vec2, indices []uint32, color mgl32.Vec4) error {
	if err := checkIndices(len(points), indices); err != nil {
		return err
	}
	base := uint32(len(b.vertices))
	for i, p := range points {
		b.vertices = append(b.vertices, Vertex{Pos: p, Tex: b.texCoords[i%4], Color: color})
	}
	b.appendIndices(base, indices, AtlasTexture)
	return nil
}

// PushTextured appends a shape whose points carry their own texture
// coordinates into texture.
func (b *Batch) PushTextured(points, texCoords []mgl32.Vec2, indices []uint32, color mgl32.Vec4, texture uint32) error {
	if len(texCoords) != len(points) {
		return fmt.Errorf("%d points but %d texture coordinates", len(points), len(texCoords))
	}
	if err := checkIndices(len(points), indices); err != nil {
		return err
	}
	base := uint32(len(b.vertices))
	for i, p := range points {
		b.vertices = append(b.vertices, Vertex{Pos: p, Tex: texCoords[i], Color: color})
	}
	b.appendIndices(base, indices, texture)
	return nil
}

var quadIndices = []uint32{0, 1, 2, 2, 1, 3}

// Rect appends an axis-aligned rectangle as two triangles.
func (b *Batch) Rect(x, y, w, h float32, color mgl32.Vec4) {
	_ = b.PushShape(quadPoints(x, y, w, h), quadIndices, color)
}

// Quad appends a rectangle textured with the region uv0..uv1 of texture.
func (b *Batch) Quad(x, y, w, h float32, uv0, uv1 mgl32.Vec2, color mgl32.Vec4, texture uint32) {
	tc := []mgl32.Vec2{
		{uv0.X(), uv0.Y()},
		{uv1.X(), uv0.Y()},
		{uv0.X(), uv1.Y()},
		{uv1.X(), uv1.Y()},
	}
	_ = b.PushTextured(quadPoints(x, y, w, h), tc, quadIndices, color, texture)
}

func quadPoints(x, y, w, h float32) []mgl32.Vec2 {
	return []mgl32.Vec2{{x, y}, {x + w, y}, {x, y + h}, {x + w, y + h}}
}

func checkIndices(n int, indices []uint32) error {
	for _, idx := range indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d with %d points: %w", idx, n, ErrIndexOutOfRange)
		}
	}
	return nil
}

func (b *Batch) appendIndices(base uint32, indices []uint32, texture uint32) {
	first := len(b.indices)
	for _, idx := range indices {
		b.indices = append(b.indices, base+idx)
	}
	if len(indices) == 0 {
		return
	}
	if n := len(b.runs); n > 0 && b.runs[n-1].Texture == texture {
		b.runs[n-1].Count += len(indices)
		return
	}
	b.runs = append(b.runs, Run{Texture: texture, First: first, Count: len(indices)})
}

// Empty reports whether the batch holds no vertices.
func (b *Batch) Empty() bool { return len(b.vertices) == 0 }

func (b *Batch) Vertices() []Vertex { return b.vertices }

func (b *Batch) Indices() []uint32 { return b.indices }

// Runs returns the index spans in submission order.
func (b *Batch) Runs() []Run { return b.runs }

// VertexBytes views the vertex data as bytes without copying.
func (b *Batch) VertexBytes() []byte {
	if len(b.vertices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.vertices[0])), len(b.vertices)*VertexSize)
}

// IndexBytes views the index data as bytes without copying.
func (b *Batch) IndexBytes() []byte {
	if len(b.indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.indices[0])), len(b.indices)*4)
}

// Clear empties the batch, keeping its capacity for the next frame.
func (b *Batch) Clear() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.runs = b.runs[:0]
}
