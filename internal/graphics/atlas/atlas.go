package atlas

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"tetris/internal/graphics/packer"
	"tetris/internal/graphics/tex"
)

var (
	ErrGlyphDoesNotFit = errors.New("glyph does not fit in atlas")
	ErrGlyphNotLoaded  = errors.New("glyph not loaded")
	ErrFontNotLoaded   = errors.New("font not loaded")
)

// solidSize is the edge length of the white patch reserved for untextured
// shapes. Sampling its inner texels never bleeds into a neighbouring glyph.
const solidSize = 4

// Metrics describes a rasterized glyph in pixels.
type Metrics struct {
	Width    int
	Height   int
	Advance  int
	BearingX int
	BearingY int
}

// Rasterizer renders characters of one font into single-channel bitmaps.
type Rasterizer interface {
	// Rasterize returns the glyph metrics and a row-major Width*Height coverage bitmap.
	Rasterize(r rune, size float64) (Metrics, []byte, error)
}

// FontParser turns raw font file bytes into a Rasterizer.
type FontParser func(data []byte) (Rasterizer, error)

// Key identifies a glyph in the atlas.
type Key struct {
	Font string
	Char rune
}

// GlyphAttributes records where a glyph lives in the atlas and how far the pen
// advances after it. Bearing is the offset of the bitmap's top-left corner from
// the pen position on the baseline.
type GlyphAttributes struct {
	AtlasX, AtlasY uint16
	Width, Height  uint16
	AdvanceX       uint32
	BearingX       int16
	BearingY       int16
}

// Rect returns the glyph's region in the atlas surface.
func (g GlyphAttributes) Rect() image.Rectangle {
	return image.Rect(int(g.AtlasX), int(g.AtlasY), int(g.AtlasX)+int(g.Width), int(g.AtlasY)+int(g.Height))
}

// Atlas owns a single-channel surface and the packer that allocates regions
// of it to glyph bitmaps.
type Atlas struct {
	surface   *tex.Surface
	packer    *packer.Packer
	solid     image.Rectangle
	fonts     map[string]Rasterizer
	glyphs    map[Key]GlyphAttributes
	order     []Key
	charset   string
	pointSize float64
	parse     FontParser
	dirty     bool
	log       *slog.Logger
}

// Option configures an Atlas.
type Option func(*Atlas)

// WithCharset sets the characters rasterized when a font is loaded.
func WithCharset(s string) Option {
	return func(a *Atlas) { a.charset = s }
}

// WithPointSize sets the reference size glyphs are rasterized at.
func WithPointSize(size float64) Option {
	return func(a *Atlas) { a.pointSize = size }
}

// WithFontParser sets the parser used by LoadFont.
func WithFontParser(p FontParser) Option {
	return func(a *Atlas) { a.parse = p }
}

// WithLogger sets the logger for font load and growth events.
func WithLogger(l *slog.Logger) Option {
	return func(a *Atlas) { a.log = l }
}

// New returns an empty atlas of the given size with the solid patch reserved.
func New(size image.Point, opts ...Option) (*Atlas, error) {
	a := &Atlas{
		fonts:     make(map[string]Rasterizer),
		glyphs:    make(map[Key]GlyphAttributes),
		pointSize: 48,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.reset(size); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Atlas) reset(size image.Point) error {
	surface, p, solid, err := newLayout(size)
	if err != nil {
		return err
	}
	a.surface, a.packer, a.solid = surface, p, solid
	a.dirty = true
	return nil
}

func newLayout(size image.Point) (*tex.Surface, *packer.Packer, image.Rectangle, error) {
	surface := tex.New(size.X, size.Y, tex.Grayscale)
	p := packer.New(size)
	solid, ok := p.Pack(image.Pt(solidSize, solidSize))
	if !ok {
		return nil, nil, image.Rectangle{}, fmt.Errorf("atlas %v too small for solid patch: %w", size, ErrGlyphDoesNotFit)
	}
	surface.Fill(solid, 0xff)
	return surface, p, solid, nil
}

// Surface returns the atlas pixels.
func (a *Atlas) Surface() *tex.Surface { return a.surface }

// Size returns the atlas dimensions.
func (a *Atlas) Size() image.Point { return image.Pt(a.surface.Width, a.surface.Height) }

// PointSize returns the reference size glyphs are rasterized at.
func (a *Atlas) PointSize() float64 { return a.pointSize }

// Len returns the number of glyphs recorded.
func (a *Atlas) Len() int { return len(a.glyphs) }

// Dirty reports whether the surface changed since the last ClearDirty.
func (a *Atlas) Dirty() bool { return a.dirty }

// ClearDirty marks the surface as uploaded.
func (a *Atlas) ClearDirty() { a.dirty = false }

// SolidTexCoords returns the texture coordinates of texel centres inside the
// white patch, in the corner order used by batch shapes.
func (a *Atlas) SolidTexCoords() [4]mgl32.Vec2 {
	w, h := float32(a.surface.Width), float32(a.surface.Height)
	u0 := (float32(a.solid.Min.X) + 1.5) / w
	u1 := (float32(a.solid.Max.X) - 1.5) / w
	v0 := (float32(a.solid.Min.Y) + 1.5) / h
	v1 := (float32(a.solid.Max.Y) - 1.5) / h
	return [4]mgl32.Vec2{{u0, v0}, {u0, v1}, {u1, v0}, {u1, v1}}
}

// TexCoords returns the normalized top-left and bottom-right texture
// coordinates of a glyph.
func (a *Atlas) TexCoords(g GlyphAttributes) (mgl32.Vec2, mgl32.Vec2) {
	w, h := float32(a.surface.Width), float32(a.surface.Height)
	r := g.Rect()
	return mgl32.Vec2{float32(r.Min.X) / w, float32(r.Min.Y) / h},
		mgl32.Vec2{float32(r.Max.X) / w, float32(r.Max.Y) / h}
}

// HasFont reports whether a font is registered under name.
func (a *Atlas) HasFont(name string) bool {
	_, ok := a.fonts[name]
	return ok
}

// LoadFont parses data, registers it under name and rasterizes the default
// character set. The font stays registered even if a glyph does not fit, so
// the caller can grow the atlas and load again.
func (a *Atlas) LoadFont(name string, data []byte) error {
	if a.parse == nil {
		return fmt.Errorf("load font %q: no font parser configured", name)
	}
	r, err := a.parse(data)
	if err != nil {
		return fmt.Errorf("load font %q: %w", name, err)
	}
	return a.AddFont(name, r)
}

// AddFont registers an already parsed font and rasterizes the default
// character set. Characters already in the atlas are skipped.
func (a *Atlas) AddFont(name string, r Rasterizer) error {
	a.fonts[name] = r
	for _, c := range a.charset {
		if _, ok := a.glyphs[Key{name, c}]; ok {
			continue
		}
		if err := a.RasterizeAndPlace(c, name); err != nil {
			return err
		}
	}
	a.log.Info("font loaded", slog.String("font", name), slog.Int("glyphs", a.Len()),
		slog.Int("width", a.surface.Width), slog.Int("height", a.surface.Height))
	return nil
}

// RasterizeAndPlace renders c in the named font, packs the bitmap and records
// its attributes. Glyphs already in the atlas are left as they are.
func (a *Atlas) RasterizeAndPlace(c rune, font string) error {
	r, ok := a.fonts[font]
	if !ok {
		return fmt.Errorf("%q: %w", font, ErrFontNotLoaded)
	}
	if _, ok := a.glyphs[Key{font, c}]; ok {
		return nil
	}
	m, bitmap, err := r.Rasterize(c, a.pointSize)
	if err != nil {
		return fmt.Errorf("rasterize %q in %q: %w", c, font, err)
	}

	g := GlyphAttributes{
		Width:    uint16(m.Width),
		Height:   uint16(m.Height),
		AdvanceX: uint32(max(m.Advance, 0)),
		BearingX: int16(m.BearingX),
		BearingY: int16(m.BearingY),
	}
	// Blank glyphs such as space only carry an advance.
	if m.Width > 0 && m.Height > 0 {
		if len(bitmap) < m.Width*m.Height {
			return fmt.Errorf("rasterize %q in %q: %d bytes for a %dx%d bitmap", c, font, len(bitmap), m.Width, m.Height)
		}
		placed, ok := a.packer.Pack(image.Pt(m.Width, m.Height))
		if !ok {
			return fmt.Errorf("%q in %q (%dx%d): %w", c, font, m.Width, m.Height, ErrGlyphDoesNotFit)
		}
		if err := a.surface.Blit(placed.Min.X, placed.Min.Y, m.Width, m.Height, bitmap); err != nil {
			return fmt.Errorf("place %q in %q: %w", c, font, err)
		}
		g.AtlasX, g.AtlasY = uint16(placed.Min.X), uint16(placed.Min.Y)
		a.dirty = true
	}

	k := Key{font, c}
	a.glyphs[k] = g
	a.order = append(a.order, k)
	return nil
}

// Glyph looks up a previously placed glyph.
func (a *Atlas) Glyph(font string, c rune) (GlyphAttributes, error) {
	g, ok := a.glyphs[Key{font, c}]
	if !ok {
		return GlyphAttributes{}, fmt.Errorf("%q in %q: %w", c, font, ErrGlyphNotLoaded)
	}
	return g, nil
}

// GlyphOrLoad looks up a glyph and rasterizes it on a miss if its font is
// registered.
func (a *Atlas) GlyphOrLoad(font string, c rune) (GlyphAttributes, error) {
	if g, ok := a.glyphs[Key{font, c}]; ok {
		return g, nil
	}
	if err := a.RasterizeAndPlace(c, font); err != nil {
		return GlyphAttributes{}, err
	}
	a.log.Debug("glyph loaded lazily", slog.String("font", font), slog.String("char", string(c)))
	return a.glyphs[Key{font, c}], nil
}

// Grow replaces the surface and packer with larger ones and repacks every
// glyph in the order it was first placed. Glyph pixels are copied from the
// old surface, so no font is rasterized again. On error the atlas is left
// unchanged.
func (a *Atlas) Grow(size image.Point) error {
	if size.X < a.surface.Width || size.Y < a.surface.Height {
		return fmt.Errorf("grow atlas to %v: smaller than current %v", size, a.Size())
	}
	surface, p, solid, err := newLayout(size)
	if err != nil {
		return err
	}
	moved := make(map[Key]GlyphAttributes, len(a.glyphs))
	for _, k := range a.order {
		g := a.glyphs[k]
		if g.Width == 0 || g.Height == 0 {
			continue
		}
		placed, ok := p.Pack(image.Pt(int(g.Width), int(g.Height)))
		if !ok {
			return fmt.Errorf("repack %q in %q: %w", k.Char, k.Font, ErrGlyphDoesNotFit)
		}
		if err := surface.CopyRegion(placed.Min, a.surface, g.Rect()); err != nil {
			return fmt.Errorf("repack %q in %q: %w", k.Char, k.Font, err)
		}
		g.AtlasX, g.AtlasY = uint16(placed.Min.X), uint16(placed.Min.Y)
		moved[k] = g
	}
	for k, g := range moved {
		a.glyphs[k] = g
	}
	a.surface, a.packer, a.solid = surface, p, solid
	a.dirty = true
	a.log.Info("atlas grown", slog.Int("width", size.X), slog.Int("height", size.Y), slog.Int("glyphs", len(a.glyphs)))
	return nil
}

// Close releases every registered font that holds resources and forgets all
// fonts. Placed glyphs stay in the atlas.
func (a *Atlas) Close() error {
	var errs []error
	for name, r := range a.fonts {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close font %q: %w", name, err))
			}
		}
		delete(a.fonts, name)
	}
	return errors.Join(errs...)
}
