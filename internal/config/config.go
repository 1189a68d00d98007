package config

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// Render is a snapshot of the renderer settings.
type Render struct {
	WindowWidth    int
	WindowHeight   int
	ClearColor     mgl32.Vec4
	FillColor      mgl32.Vec4
	ShaderPath     string // empty selects the built-in shader
	ImageCacheSize int    // decoded images kept in memory
	FPSLimit       int    // 0 leaves pacing to vsync
}

// RenderSettings holds render configuration
type RenderSettings struct {
	mu     sync.RWMutex
	render Render
}

var globalRenderSettings = &RenderSettings{
	render: Render{
		WindowWidth:    600,
		WindowHeight:   400,
		ClearColor:     mgl32.Vec4{0.08, 0.08, 0.1, 1},
		FillColor:      mgl32.Vec4{1, 0, 0, 1},
		ImageCacheSize: 32,
	},
}

// GetRender returns the current render settings
func GetRender() Render {
	globalRenderSettings.mu.RLock()
	defer globalRenderSettings.mu.RUnlock()
	return globalRenderSettings.render
}

// SetWindowSize sets the initial window size in pixels
func SetWindowSize(width, height int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.render.WindowWidth = clamp(width, 64, 8192)
	globalRenderSettings.render.WindowHeight = clamp(height, 64, 8192)
}

// SetShaderPath overrides the built-in shader with a file on disk
func SetShaderPath(path string) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.render.ShaderPath = path
}

// SetImageCacheSize sets how many decoded images are kept
func SetImageCacheSize(n int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	globalRenderSettings.render.ImageCacheSize = clamp(n, 1, 1024)
}

// SetFPSLimit caps the frame rate; 0 disables the limiter
func SetFPSLimit(fps int) {
	globalRenderSettings.mu.Lock()
	defer globalRenderSettings.mu.Unlock()
	if fps <= 0 {
		globalRenderSettings.render.FPSLimit = 0
		return
	}
	globalRenderSettings.render.FPSLimit = clamp(fps, 10, 1000)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
