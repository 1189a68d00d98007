package graphics

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"tetris/internal/graphics/atlas"
)

// FontRasterizer renders glyphs of a parsed TrueType/OpenType font. Faces are
// created lazily per point size and kept for the lifetime of the rasterizer.
type FontRasterizer struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

// ParseFont implements atlas.FontParser.
func ParseFont(data []byte) (atlas.Rasterizer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FontRasterizer{font: f, faces: make(map[float64]font.Face)}, nil
}

// ReadFont returns the bytes of the font at path, or the built-in Go Regular
// font when path is empty.
func ReadFont(path string) ([]byte, error) {
	if path == "" {
		return goregular.TTF, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return data, nil
}

func (fr *FontRasterizer) face(size float64) (font.Face, error) {
	if face, ok := fr.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(fr.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	fr.faces[size] = face
	return face, nil
}

// Rasterize renders r at the given pixel size. The returned bitmap is the
// glyph's coverage mask, row-major with no padding.
func (fr *FontRasterizer) Rasterize(r rune, size float64) (atlas.Metrics, []byte, error) {
	face, err := fr.face(size)
	if err != nil {
		return atlas.Metrics{}, nil, err
	}
	dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
	if !ok {
		return atlas.Metrics{}, nil, fmt.Errorf("font has no glyph for %q", r)
	}
	m := atlas.Metrics{
		Width:    dr.Dx(),
		Height:   dr.Dy(),
		Advance:  advance.Round(),
		BearingX: dr.Min.X,
		BearingY: -dr.Min.Y,
	}
	if m.Width == 0 || m.Height == 0 || mask == nil {
		m.Width, m.Height = 0, 0
		return m, nil, nil
	}
	// image.NewAlpha has Stride == width, so Pix is already tightly packed.
	dst := image.NewAlpha(image.Rect(0, 0, m.Width, m.Height))
	draw.Draw(dst, dst.Bounds(), mask, maskp, draw.Src)
	return m, dst.Pix, nil
}

// Close releases every face created by the rasterizer.
func (fr *FontRasterizer) Close() error {
	for size, face := range fr.faces {
		if err := face.Close(); err != nil {
			return err
		}
		delete(fr.faces, size)
	}
	return nil
}
