package renderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"tetris/internal/config"
	"tetris/internal/graphics"
	"tetris/internal/graphics/atlas"
	"tetris/internal/graphics/backend"
	"tetris/internal/graphics/batch"
	"tetris/internal/profiling"
)

var (
	ErrTextureNotLoaded = errors.New("texture not loaded")
	ErrNotSetUp         = errors.New("renderer not set up")
	ErrFrameInProgress  = errors.New("frame in progress")
)

// vertexLayout matches batch.Vertex: position, texture coordinate, colour.
var vertexLayout = backend.Layout{}.AddFloat(2).AddFloat(2).AddFloat(4)

type imageTexture struct {
	texture backend.Texture
	size    image.Point
}

// BatchRenderer accumulates the shapes of a frame into one vertex and one
// index buffer and submits them with as few draw calls as texture changes
// allow.
type BatchRenderer struct {
	backend  backend.Backend
	batch    *batch.Batch
	atlas    *atlas.Atlas
	images   *graphics.ImageCache
	settings config.Render
	atlasCfg config.Atlas
	log      *slog.Logger

	vao      backend.VertexArray
	vbo      backend.Buffer
	ibo      backend.Buffer
	program  backend.Program
	atlasTex backend.Texture
	textures map[ImageHandle]imageTexture
	next     ImageHandle

	// High-water marks of the GPU buffers, in vertices and indices.
	vertexCap int
	indexCap  int

	viewport graphics.Viewport
	fill     mgl32.Vec4
	state    State
}

var _ API = (*BatchRenderer)(nil)

// Option configures a BatchRenderer.
type Option func(*BatchRenderer)

// WithLogger sets the logger used by the renderer and the atlas it creates.
func WithLogger(l *slog.Logger) Option {
	return func(r *BatchRenderer) { r.log = l }
}

// WithAtlas uses an existing glyph atlas instead of creating one from config.
func WithAtlas(a *atlas.Atlas) Option {
	return func(r *BatchRenderer) { r.atlas = a }
}

// WithSettings overrides the render settings read from config.
func WithSettings(s config.Render) Option {
	return func(r *BatchRenderer) { r.settings = s }
}

// New creates a renderer on top of b. No GPU object exists until Setup.
func New(b backend.Backend, opts ...Option) (*BatchRenderer, error) {
	r := &BatchRenderer{
		backend:  b,
		batch:    batch.New(),
		settings: config.GetRender(),
		atlasCfg: config.GetAtlas(),
		log:      slog.New(slog.DiscardHandler),
		textures: make(map[ImageHandle]imageTexture),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.fill = r.settings.FillColor
	r.viewport = graphics.NewViewport(r.settings.WindowWidth, r.settings.WindowHeight)

	if r.atlas == nil {
		size := r.atlasCfg.InitialSize
		a, err := atlas.New(image.Pt(size, size),
			atlas.WithFontParser(graphics.ParseFont),
			atlas.WithCharset(r.atlasCfg.Charset),
			atlas.WithPointSize(r.atlasCfg.PointSize),
			atlas.WithLogger(r.log))
		if err != nil {
			return nil, err
		}
		r.atlas = a
	}
	r.batch.SetSolidTexCoords(r.atlas.SolidTexCoords())

	images, err := graphics.NewImageCache(r.settings.ImageCacheSize)
	if err != nil {
		return nil, err
	}
	r.images = images
	return r, nil
}

// Atlas returns the glyph atlas.
func (r *BatchRenderer) Atlas() *atlas.Atlas { return r.atlas }

// Batch returns the geometry accumulated for the current frame.
func (r *BatchRenderer) Batch() *batch.Batch { return r.batch }

// State returns where the renderer is in its frame cycle.
func (r *BatchRenderer) State() State { return r.state }

// Setup creates every GPU object the renderer needs. Any failure releases
// what was already created and is fatal for the renderer.
func (r *BatchRenderer) Setup() (err error) {
	if r.state != StateNew {
		return fmt.Errorf("setup: renderer is %s", r.state)
	}
	// Shader text is validated before any GPU object is touched.
	src, err := graphics.LoadShaderSource(r.settings.ShaderPath)
	if err != nil {
		return fmt.Errorf("load shaders: %w", err)
	}

	defer func() {
		if err != nil {
			r.release()
		}
	}()

	if r.vao, err = r.backend.CreateVertexArray(); err != nil {
		return fmt.Errorf("create vertex array: %w", err)
	}
	r.backend.BindVertexArray(r.vao)

	if r.program, err = r.backend.CreateProgram(src.Vertex, src.Fragment); err != nil {
		return fmt.Errorf("compile shaders: %w", err)
	}
	r.backend.UseProgram(r.program)

	if r.vbo, err = r.backend.CreateBuffer(); err != nil {
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	if r.ibo, err = r.backend.CreateBuffer(); err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	r.backend.BindBuffer(backend.ArrayBuffer, r.vbo)
	r.backend.BindBuffer(backend.ElementArrayBuffer, r.ibo)
	// The layout is recorded against the bound array buffer, so it comes last.
	r.backend.ApplyLayout(vertexLayout)
	r.backend.EnableBlend()

	if r.atlasTex, err = r.backend.CreateTexture(r.atlas.Surface()); err != nil {
		return fmt.Errorf("create atlas texture: %w", err)
	}
	r.atlas.ClearDirty()
	r.backend.SetUniformInt(r.program, "tex", 0)

	r.state = StateIdle
	r.SetViewport(r.viewport.Width, r.viewport.Height)
	r.log.Info("renderer ready",
		slog.Int("atlas_width", r.atlas.Size().X), slog.Int("atlas_height", r.atlas.Size().Y),
		slog.Int("stride", vertexLayout.Stride()))
	return nil
}

// SetViewport updates the pixel projection after a window resize.
func (r *BatchRenderer) SetViewport(width, height int) {
	r.viewport = graphics.NewViewport(width, height)
	if r.program == 0 {
		return
	}
	r.backend.Viewport(width, height)
	r.backend.UseProgram(r.program)
	r.backend.SetUniformMatrix4(r.program, "projection", r.viewport.GetProjectionMatrix())
}

// SetFill sets the colour of subsequent rectangles and text.
func (r *BatchRenderer) SetFill(c mgl32.Vec4) {
	r.fill = c
}

// Draw uploads the frame's geometry and issues the draw calls, then empties
// the batch. It does nothing when no shape was pushed.
func (r *BatchRenderer) Draw() {
	if r.program == 0 || r.batch.Empty() {
		return
	}
	defer profiling.Track("renderer.Draw")()

	r.backend.BindVertexArray(r.vao)
	r.backend.UseProgram(r.program)
	if r.atlas.Dirty() {
		r.backend.UpdateTexture(r.atlasTex, r.atlas.Surface())
		r.atlas.ClearDirty()
	}

	r.upload(backend.ArrayBuffer, r.vbo, r.batch.VertexBytes(), len(r.batch.Vertices()), &r.vertexCap)
	r.upload(backend.ElementArrayBuffer, r.ibo, r.batch.IndexBytes(), len(r.batch.Indices()), &r.indexCap)

	r.backend.Clear(r.settings.ClearColor)
	for _, run := range r.batch.Runs() {
		r.backend.BindTexture(r.texture(run.Texture))
		r.backend.DrawTriangles(run.First, run.Count)
	}
	profiling.Count("renderer.draws", len(r.batch.Runs()))

	r.batch.Clear()
	r.state = StateIdle
}

// upload grows the buffer when n exceeds its high-water mark and otherwise
// overwrites only the live range in place.
func (r *BatchRenderer) upload(t backend.BufferTarget, buf backend.Buffer, data []byte, n int, hw *int) {
	r.backend.BindBuffer(t, buf)
	if n > *hw {
		r.backend.BufferData(t, data)
		r.log.Debug("buffer reallocated", slog.String("target", t.String()), slog.Int("from", *hw), slog.Int("to", n))
		profiling.Count("renderer.reallocs", 1)
		*hw = n
		return
	}
	r.backend.BufferSubData(t, 0, data)
	profiling.Count("renderer.updates", 1)
}

func (r *BatchRenderer) texture(key uint32) backend.Texture {
	if key == batch.AtlasTexture {
		return r.atlasTex
	}
	return backend.Texture(key)
}

// Destroy releases every GPU object, the cached images and the atlas fonts.
// Calls after the first do nothing.
func (r *BatchRenderer) Destroy() {
	if r.state == StateDestroyed {
		return
	}
	r.release()
	r.batch.Clear()
	r.images.Purge()
	if err := r.atlas.Close(); err != nil {
		r.log.Warn("close fonts", slog.Any("error", err))
	}
	r.state = StateDestroyed
	r.log.Info("renderer destroyed")
}

func (r *BatchRenderer) release() {
	for h, it := range r.textures {
		r.backend.DeleteTexture(it.texture)
		delete(r.textures, h)
	}
	if r.atlasTex != 0 {
		r.backend.DeleteTexture(r.atlasTex)
		r.atlasTex = 0
	}
	if r.ibo != 0 {
		r.backend.DeleteBuffer(r.ibo)
		r.ibo = 0
	}
	if r.vbo != 0 {
		r.backend.DeleteBuffer(r.vbo)
		r.vbo = 0
	}
	if r.vao != 0 {
		r.backend.DeleteVertexArray(r.vao)
		r.vao = 0
	}
	if r.program != 0 {
		r.backend.DeleteProgram(r.program)
		r.program = 0
	}
	r.vertexCap, r.indexCap = 0, 0
}

// Rect queues a filled rectangle.
func (r *BatchRenderer) Rect(x, y, w, h float32) {
	r.batch.Rect(x, y, w, h, r.fill)
	r.accumulate()
}

func (r *BatchRenderer) accumulate() {
	if r.state == StateIdle {
		r.state = StateAccumulating
	}
}

// LoadImage decodes the image at path and uploads it as its own texture.
func (r *BatchRenderer) LoadImage(path string) (ImageHandle, error) {
	if r.program == 0 {
		return 0, ErrNotSetUp
	}
	s, err := r.images.Get(path)
	if err != nil {
		return 0, err
	}
	t, err := r.backend.CreateTexture(s)
	if err != nil {
		return 0, fmt.Errorf("create texture for %s: %w", path, err)
	}
	r.next++
	r.textures[r.next] = imageTexture{texture: t, size: image.Pt(s.Width, s.Height)}
	return r.next, nil
}

// Image queues a quad showing the whole of img.
func (r *BatchRenderer) Image(img ImageHandle, x, y, w, h float32) error {
	it, ok := r.textures[img]
	if !ok {
		return fmt.Errorf("image %d: %w", img, ErrTextureNotLoaded)
	}
	r.batch.Quad(x, y, w, h, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1}, mgl32.Vec4{1, 1, 1, 1}, uint32(it.texture))
	r.accumulate()
	return nil
}

// ImageSize returns the pixel size of a loaded image.
func (r *BatchRenderer) ImageSize(h ImageHandle) (image.Point, error) {
	it, ok := r.textures[h]
	if !ok {
		return image.Point{}, fmt.Errorf("image %d: %w", h, ErrTextureNotLoaded)
	}
	return it.size, nil
}

// LoadFont adds a font to the glyph atlas, growing the atlas when the
// default character set does not fit. Fonts must be loaded between frames.
func (r *BatchRenderer) LoadFont(name string, data []byte) error {
	if !r.batch.Empty() {
		return fmt.Errorf("load font %q: %w", name, ErrFrameInProgress)
	}
	for {
		err := r.atlas.LoadFont(name, data)
		if err == nil {
			return nil
		}
		if !errors.Is(err, atlas.ErrGlyphDoesNotFit) {
			return err
		}
		if gerr := r.GrowAtlas(); gerr != nil {
			return fmt.Errorf("load font %q: %w", name, gerr)
		}
	}
}

// GrowAtlas doubles the glyph atlas, up to the configured maximum. Queued
// quads would keep the old texture coordinates, so the batch must be empty.
func (r *BatchRenderer) GrowAtlas() error {
	if !r.batch.Empty() {
		return fmt.Errorf("grow atlas: %w", ErrFrameInProgress)
	}
	next := r.atlas.Size().Mul(2)
	if next.X > r.atlasCfg.MaxSize || next.Y > r.atlasCfg.MaxSize {
		return fmt.Errorf("grow atlas to %v beyond maximum %d: %w", next, r.atlasCfg.MaxSize, atlas.ErrGlyphDoesNotFit)
	}
	if err := r.atlas.Grow(next); err != nil {
		return err
	}
	r.batch.SetSolidTexCoords(r.atlas.SolidTexCoords())
	return nil
}

// glyphs looks up every glyph of s, rasterizing missing ones. When the atlas
// is full and nothing is queued yet it grows and retries. Newlines get a
// zero entry.
func (r *BatchRenderer) glyphs(font, s string) ([]atlas.GlyphAttributes, error) {
	if !r.atlas.HasFont(font) {
		return nil, fmt.Errorf("%q: %w", font, atlas.ErrFontNotLoaded)
	}
	out := make([]atlas.GlyphAttributes, 0, len(s))
	for _, c := range s {
		if c == '\n' {
			out = append(out, atlas.GlyphAttributes{})
			continue
		}
		g, err := r.atlas.GlyphOrLoad(font, c)
		for errors.Is(err, atlas.ErrGlyphDoesNotFit) && r.batch.Empty() {
			if gerr := r.GrowAtlas(); gerr != nil {
				return nil, gerr
			}
			g, err = r.atlas.GlyphOrLoad(font, c)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Text queues one quad per visible glyph of s with the pen starting on the
// baseline at (x, y). Glyphs missing from the atlas are rasterized on demand.
// On error nothing is queued.
func (r *BatchRenderer) Text(font, s string, x, y float32) error {
	gs, err := r.glyphs(font, s)
	if err != nil {
		return err
	}
	penX := x
	i := 0
	for _, c := range s {
		g := gs[i]
		i++
		if c == '\n' {
			penX = x
			y += r.lineHeight()
			continue
		}
		if g.Width > 0 && g.Height > 0 {
			uv0, uv1 := r.atlas.TexCoords(g)
			r.batch.Quad(penX+float32(g.BearingX), y-float32(g.BearingY), float32(g.Width), float32(g.Height),
				uv0, uv1, r.fill, batch.AtlasTexture)
			r.accumulate()
		}
		penX += float32(g.AdvanceX)
	}
	return nil
}

// MeasureText returns the width of the widest line of s and the height of
// all its lines.
func (r *BatchRenderer) MeasureText(font, s string) (float32, float32, error) {
	if s == "" {
		return 0, 0, nil
	}
	gs, err := r.glyphs(font, s)
	if err != nil {
		return 0, 0, err
	}
	var width, line float32
	lines := 1
	i := 0
	for _, c := range s {
		g := gs[i]
		i++
		if c == '\n' {
			width = max(width, line)
			line = 0
			lines++
			continue
		}
		line += float32(g.AdvanceX)
	}
	return max(width, line), float32(lines) * r.lineHeight(), nil
}

func (r *BatchRenderer) lineHeight() float32 {
	return float32(r.atlas.PointSize()) * 1.2
}
