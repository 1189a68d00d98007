package atlas

import (
	"errors"
	"image"
	"testing"
)

// boxFont rasterizes every character as a solid box whose size depends on
// the character, so different glyphs get different bitmaps.
type boxFont struct {
	w, h  int
	calls int
}

func (f *boxFont) Rasterize(r rune, size float64) (Metrics, []byte, error) {
	f.calls++
	if r == ' ' {
		return Metrics{Advance: f.w / 2}, nil, nil
	}
	if r == '☃' {
		return Metrics{}, nil, errors.New("no such glyph")
	}
	w, h := f.w+int(r)%3, f.h
	bitmap := make([]byte, w*h)
	for i := range bitmap {
		bitmap[i] = byte(r)
	}
	return Metrics{Width: w, Height: h, Advance: w + 1, BearingX: 1, BearingY: h - 2}, bitmap, nil
}

func newTestAtlas(t *testing.T, size image.Point, opts ...Option) *Atlas {
	t.Helper()
	a, err := New(size, opts...)
	if err != nil {
		t.Fatalf("new atlas: %v", err)
	}
	return a
}

func TestRasterizeAndPlaceRoundTrip(t *testing.T) {
	a := newTestAtlas(t, image.Pt(64, 64))
	f := &boxFont{w: 8, h: 12}
	if err := a.AddFont("font1", f); err != nil {
		t.Fatalf("add font: %v", err)
	}
	if err := a.RasterizeAndPlace('A', "font1"); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	g, err := a.Glyph("font1", 'A')
	if err != nil {
		t.Fatalf("glyph: %v", err)
	}
	m, bitmap, _ := (&boxFont{w: 8, h: 12}).Rasterize('A', 48)
	if int(g.Width) != m.Width || int(g.Height) != m.Height {
		t.Fatalf("size: got %dx%d, want %dx%d", g.Width, g.Height, m.Width, m.Height)
	}
	if !g.Rect().In(a.Surface().Bounds()) {
		t.Fatalf("glyph rect %v outside surface %v", g.Rect(), a.Surface().Bounds())
	}
	if g.AdvanceX != uint32(m.Advance) || g.BearingY != int16(m.BearingY) {
		t.Fatalf("metrics: got advance %d bearing %d", g.AdvanceX, g.BearingY)
	}
	s := a.Surface()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			got := s.Pix[(int(g.AtlasY)+y)*s.Stride()+int(g.AtlasX)+x]
			if got != bitmap[y*m.Width+x] {
				t.Fatalf("pixel (%d,%d): got %d, want %d", x, y, got, bitmap[y*m.Width+x])
			}
		}
	}
}

func TestLoadFontDefaultCharset(t *testing.T) {
	var parsed []byte
	parse := func(data []byte) (Rasterizer, error) {
		parsed = data
		return &boxFont{w: 4, h: 6}, nil
	}
	a := newTestAtlas(t, image.Pt(128, 128), WithCharset("abc "), WithFontParser(parse))
	if err := a.LoadFont("mono", []byte("font bytes")); err != nil {
		t.Fatalf("load font: %v", err)
	}
	if string(parsed) != "font bytes" {
		t.Fatalf("parser got %q", parsed)
	}
	if a.Len() != 4 {
		t.Fatalf("glyphs: got %d, want 4", a.Len())
	}
	space, err := a.Glyph("mono", ' ')
	if err != nil {
		t.Fatalf("space: %v", err)
	}
	if space.Width != 0 || space.AdvanceX != 2 {
		t.Fatalf("space: got %+v", space)
	}
	if _, err := a.Glyph("mono", 'z'); !errors.Is(err, ErrGlyphNotLoaded) {
		t.Fatalf("missing glyph: got %v, want ErrGlyphNotLoaded", err)
	}
}

func TestLoadFontParseError(t *testing.T) {
	parse := func([]byte) (Rasterizer, error) { return nil, errors.New("bad magic") }
	a := newTestAtlas(t, image.Pt(32, 32), WithFontParser(parse))
	if err := a.LoadFont("broken", nil); err == nil {
		t.Fatalf("expected parse error")
	}
	if a.HasFont("broken") {
		t.Fatalf("broken font registered")
	}
}

func TestGlyphDoesNotFit(t *testing.T) {
	a := newTestAtlas(t, image.Pt(16, 16))
	if err := a.AddFont("big", &boxFont{w: 20, h: 20}); err != nil {
		t.Fatalf("add font: %v", err)
	}
	err := a.RasterizeAndPlace('A', "big")
	if !errors.Is(err, ErrGlyphDoesNotFit) {
		t.Fatalf("got %v, want ErrGlyphDoesNotFit", err)
	}
	if _, err := a.Glyph("big", 'A'); !errors.Is(err, ErrGlyphNotLoaded) {
		t.Fatalf("dropped glyph was recorded: %v", err)
	}
}

func TestUnknownFont(t *testing.T) {
	a := newTestAtlas(t, image.Pt(16, 16))
	if err := a.RasterizeAndPlace('A', "nope"); !errors.Is(err, ErrFontNotLoaded) {
		t.Fatalf("got %v, want ErrFontNotLoaded", err)
	}
	if _, err := a.GlyphOrLoad("nope", 'A'); !errors.Is(err, ErrFontNotLoaded) {
		t.Fatalf("lazy: got %v, want ErrFontNotLoaded", err)
	}
}

func TestRasterizerError(t *testing.T) {
	a := newTestAtlas(t, image.Pt(64, 64))
	a.AddFont("f", &boxFont{w: 4, h: 4})
	if err := a.RasterizeAndPlace('☃', "f"); err == nil {
		t.Fatalf("expected rasterizer error")
	}
}

func TestGlyphOrLoad(t *testing.T) {
	a := newTestAtlas(t, image.Pt(64, 64))
	f := &boxFont{w: 4, h: 4}
	a.AddFont("f", f)
	a.ClearDirty()
	g, err := a.GlyphOrLoad("f", 'q')
	if err != nil {
		t.Fatalf("lazy load: %v", err)
	}
	if g.Width == 0 || !a.Dirty() {
		t.Fatalf("lazy load: glyph %+v dirty %v", g, a.Dirty())
	}
	calls := f.calls
	if _, err := a.GlyphOrLoad("f", 'q'); err != nil || f.calls != calls {
		t.Fatalf("second lookup rasterized again")
	}
}

func TestGlyphsDoNotOverlapSolidPatch(t *testing.T) {
	a := newTestAtlas(t, image.Pt(64, 64), WithCharset("abcdefghij"))
	a.AddFont("f", &boxFont{w: 5, h: 7})
	var rects []image.Rectangle
	for _, c := range "abcdefghij" {
		g, err := a.Glyph("f", c)
		if err != nil {
			t.Fatalf("glyph %q: %v", c, err)
		}
		if g.Rect().Overlaps(a.solid) {
			t.Fatalf("glyph %q overlaps solid patch", c)
		}
		for _, r := range rects {
			if g.Rect().Overlaps(r) {
				t.Fatalf("glyph %q overlaps %v", c, r)
			}
		}
		rects = append(rects, g.Rect())
	}
	uv := a.SolidTexCoords()
	for i, c := range uv {
		x, y := int(c.X()*64), int(c.Y()*64)
		if !image.Pt(x, y).In(a.solid) {
			t.Fatalf("solid texcoord %d (%d,%d) outside patch %v", i, x, y, a.solid)
		}
	}
}

func TestGrowRepacks(t *testing.T) {
	a := newTestAtlas(t, image.Pt(32, 32))
	a.AddFont("f", &boxFont{w: 10, h: 10})
	var err error
	placed := 0
	for _, c := range "ABCDEFGHIJ" {
		if err = a.RasterizeAndPlace(c, "f"); err != nil {
			break
		}
		placed++
	}
	if !errors.Is(err, ErrGlyphDoesNotFit) {
		t.Fatalf("expected atlas to fill up, got %v", err)
	}
	before, _ := a.Glyph("f", 'A')
	beforePix := a.Surface().Pix[int(before.AtlasY)*32+int(before.AtlasX)]

	if err := a.Grow(image.Pt(16, 16)); err == nil {
		t.Fatalf("shrinking grow: expected error")
	}
	if err := a.Grow(image.Pt(128, 128)); err != nil {
		t.Fatalf("grow: %v", err)
	}
	if a.Size() != image.Pt(128, 128) || a.Len() != placed {
		t.Fatalf("grow: size %v glyphs %d", a.Size(), a.Len())
	}
	after, _ := a.Glyph("f", 'A')
	s := a.Surface()
	if got := s.Pix[int(after.AtlasY)*s.Stride()+int(after.AtlasX)]; got != beforePix {
		t.Fatalf("grow: pixel got %d, want %d", got, beforePix)
	}
	for _, c := range "ABCDEFGHIJ"[placed:] {
		if err := a.RasterizeAndPlace(c, "f"); err != nil {
			t.Fatalf("after grow %q: %v", c, err)
		}
	}
}

func TestNewTooSmall(t *testing.T) {
	if _, err := New(image.Pt(2, 2)); !errors.Is(err, ErrGlyphDoesNotFit) {
		t.Fatalf("got %v, want ErrGlyphDoesNotFit", err)
	}
}

// shortFont returns a bitmap that is too small for 'x'.
type shortFont struct{ boxFont }

func (f *shortFont) Rasterize(r rune, size float64) (Metrics, []byte, error) {
	m, bitmap, err := f.boxFont.Rasterize(r, size)
	if r == 'x' {
		bitmap = bitmap[:len(bitmap)/2]
	}
	return m, bitmap, err
}

func TestShortBitmapKeepsRegionFree(t *testing.T) {
	want := newTestAtlas(t, image.Pt(64, 64))
	if err := want.AddFont("f", &boxFont{w: 8, h: 12}); err != nil {
		t.Fatalf("add font: %v", err)
	}
	if err := want.RasterizeAndPlace('y', "f"); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	wantGlyph, _ := want.Glyph("f", 'y')

	a := newTestAtlas(t, image.Pt(64, 64))
	if err := a.AddFont("f", &shortFont{boxFont{w: 8, h: 12}}); err != nil {
		t.Fatalf("add font: %v", err)
	}
	if err := a.RasterizeAndPlace('x', "f"); err == nil {
		t.Fatalf("short bitmap accepted")
	}
	if _, err := a.Glyph("f", 'x'); !errors.Is(err, ErrGlyphNotLoaded) {
		t.Fatalf("failed glyph recorded: %v", err)
	}
	if err := a.RasterizeAndPlace('y', "f"); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	g, _ := a.Glyph("f", 'y')
	if g.Rect() != wantGlyph.Rect() {
		t.Fatalf("placement after failed glyph: got %v, want %v", g.Rect(), wantGlyph.Rect())
	}
}

type closingFont struct {
	boxFont
	closed int
}

func (f *closingFont) Close() error {
	f.closed++
	return nil
}

func TestCloseReleasesFonts(t *testing.T) {
	a := newTestAtlas(t, image.Pt(64, 64))
	f := &closingFont{boxFont: boxFont{w: 8, h: 12}}
	if err := a.AddFont("f", f); err != nil {
		t.Fatalf("add font: %v", err)
	}
	if err := a.AddFont("plain", &boxFont{w: 8, h: 12}); err != nil {
		t.Fatalf("add font: %v", err)
	}
	if err := a.RasterizeAndPlace('A', "f"); err != nil {
		t.Fatalf("rasterize: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if f.closed != 1 {
		t.Fatalf("close calls: got %d, want 1", f.closed)
	}
	if a.HasFont("f") || a.HasFont("plain") {
		t.Fatalf("fonts still registered after close")
	}
	if _, err := a.Glyph("f", 'A'); err != nil {
		t.Fatalf("placed glyph lost on close: %v", err)
	}
	if err := a.Close(); err != nil || f.closed != 1 {
		t.Fatalf("second close: err=%v closed=%d", err, f.closed)
	}
}
