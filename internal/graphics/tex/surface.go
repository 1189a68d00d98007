package tex

import (
	"fmt"
	"image"
	"image/draw"
)

// Channels is the number of bytes stored per pixel.
type Channels int

const (
	Grayscale Channels = 1
	RGB       Channels = 3
	RGBA      Channels = 4
)

// Surface is a CPU-side pixel buffer in row-major order with no row padding.
// len(Pix) is always Width*Height*Channels.
type Surface struct {
	Width    int
	Height   int
	Channels Channels
	Pix      []byte
}

// New returns a zero-filled surface.
func New(w, h int, ch Channels) *Surface {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &Surface{Width: w, Height: h, Channels: ch, Pix: make([]byte, w*h*int(ch))}
}

// Stride returns the number of bytes in one row.
func (s *Surface) Stride() int {
	return s.Width * int(s.Channels)
}

// Bounds returns the surface rectangle anchored at the origin.
func (s *Surface) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Resize changes the surface dimensions. Pixels that exist in both the old and
// new sizes keep their row/column position; new area is zero.
func (s *Surface) Resize(w, h int) {
	if w == s.Width && h == s.Height {
		return
	}
	next := New(w, h, s.Channels)
	rows := min(h, s.Height)
	n := min(w, s.Width) * int(s.Channels)
	for y := 0; y < rows; y++ {
		copy(next.Pix[y*next.Stride():y*next.Stride()+n], s.Pix[y*s.Stride():y*s.Stride()+n])
	}
	*s = *next
}

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	c := *s
	c.Pix = append([]byte(nil), s.Pix...)
	return &c
}

// Blit copies a tightly packed w*h bitmap with the surface's channel count
// to (x, y).
func (s *Surface) Blit(x, y, w, h int, src []byte) error {
	dst := image.Rect(x, y, x+w, y+h)
	if !dst.In(s.Bounds()) {
		return fmt.Errorf("blit %v outside surface %v", dst, s.Bounds())
	}
	rowBytes := w * int(s.Channels)
	if len(src) < rowBytes*h {
		return fmt.Errorf("blit source has %d bytes, need %d", len(src), rowBytes*h)
	}
	for row := 0; row < h; row++ {
		off := (y+row)*s.Stride() + x*int(s.Channels)
		copy(s.Pix[off:off+rowBytes], src[row*rowBytes:(row+1)*rowBytes])
	}
	return nil
}

// CopyRegion copies the pixels of r in src to dstPos in s. Both surfaces must
// have the same channel count.
func (s *Surface) CopyRegion(dstPos image.Point, src *Surface, r image.Rectangle) error {
	if src.Channels != s.Channels {
		return fmt.Errorf("copy region: channel mismatch %d != %d", src.Channels, s.Channels)
	}
	if !r.In(src.Bounds()) {
		return fmt.Errorf("copy region: %v outside source %v", r, src.Bounds())
	}
	if !r.Sub(r.Min).Add(dstPos).In(s.Bounds()) {
		return fmt.Errorf("copy region: destination %v outside surface %v", r.Sub(r.Min).Add(dstPos), s.Bounds())
	}
	rowBytes := r.Dx() * int(s.Channels)
	for row := 0; row < r.Dy(); row++ {
		so := (r.Min.Y+row)*src.Stride() + r.Min.X*int(src.Channels)
		do := (dstPos.Y+row)*s.Stride() + dstPos.X*int(s.Channels)
		copy(s.Pix[do:do+rowBytes], src.Pix[so:so+rowBytes])
	}
	return nil
}

// Fill sets every pixel in r to v on every channel.
func (s *Surface) Fill(r image.Rectangle, v byte) {
	r = r.Intersect(s.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := s.Pix[y*s.Stride()+r.Min.X*int(s.Channels) : y*s.Stride()+r.Max.X*int(s.Channels)]
		for i := range row {
			row[i] = v
		}
	}
}

// Image returns a view of the surface as a standard image. Grayscale surfaces
// share their pixel memory; RGB surfaces are expanded to RGBA.
func (s *Surface) Image() image.Image {
	switch s.Channels {
	case Grayscale:
		return &image.Gray{Pix: s.Pix, Stride: s.Stride(), Rect: s.Bounds()}
	case RGBA:
		return &image.RGBA{Pix: s.Pix, Stride: s.Stride(), Rect: s.Bounds()}
	}
	img := image.NewRGBA(s.Bounds())
	for i, j := 0, 0; i < len(s.Pix); i, j = i+3, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = s.Pix[i], s.Pix[i+1], s.Pix[i+2], 0xff
	}
	return img
}

// FromImage converts any image to an RGBA surface.
func FromImage(img image.Image) *Surface {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Surface{Width: b.Dx(), Height: b.Dy(), Channels: RGBA, Pix: rgba.Pix}
}
