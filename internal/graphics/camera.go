package graphics

import "github.com/go-gl/mathgl/mgl32"

// Viewport maps pixel coordinates with a top-left origin to clip space.
type Viewport struct {
	Width  int
	Height int
}

func NewViewport(width, height int) Viewport {
	return Viewport{Width: width, Height: height}
}

func (v Viewport) GetProjectionMatrix() mgl32.Mat4 {
	w, h := max(v.Width, 1), max(v.Height, 1)
	return mgl32.Ortho2D(0, float32(w), float32(h), 0)
}
