package renderer

import "github.com/go-gl/mathgl/mgl32"

// ImageHandle identifies an image loaded with LoadImage.
type ImageHandle uint32

// API is what the host event loop drives. Setup is called once after the
// graphics context exists, Draw once per redraw and Destroy once at shutdown.
type API interface {
	Setup() error
	Draw()
	Destroy()
	SetViewport(width, height int)
	SetFill(color mgl32.Vec4)
	Rect(x, y, w, h float32)
	Image(img ImageHandle, x, y, w, h float32) error
	Text(font, s string, x, y float32) error
	LoadFont(name string, data []byte) error
	LoadImage(path string) (ImageHandle, error)
}

// State is the position of the renderer in its per-frame cycle.
type State int

const (
	StateNew State = iota
	StateIdle
	StateAccumulating
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateIdle:
		return "idle"
	case StateAccumulating:
		return "accumulating"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}
