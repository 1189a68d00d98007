package tex

import (
	"image"
	"image/color"
	"testing"
)

func TestNewSurfaceSize(t *testing.T) {
	for _, ch := range []Channels{Grayscale, RGB, RGBA} {
		s := New(7, 3, ch)
		if want := 7 * 3 * int(ch); len(s.Pix) != want {
			t.Fatalf("channels %d: got %d bytes, want %d", ch, len(s.Pix), want)
		}
	}
}

func TestResizePreservesContent(t *testing.T) {
	s := New(4, 3, RGB)
	for i := range s.Pix {
		s.Pix[i] = byte(i + 1)
	}
	old := s.Clone()

	s.Resize(6, 5)
	if len(s.Pix) != 6*5*3 {
		t.Fatalf("grow: got %d bytes, want %d", len(s.Pix), 6*5*3)
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 6; x++ {
			for c := 0; c < 3; c++ {
				got := s.Pix[y*s.Stride()+x*3+c]
				want := byte(0)
				if x < 4 && y < 3 {
					want = old.Pix[y*old.Stride()+x*3+c]
				}
				if got != want {
					t.Fatalf("grow: pixel (%d,%d,%d) got %d, want %d", x, y, c, got, want)
				}
			}
		}
	}

	s.Resize(2, 2)
	if len(s.Pix) != 2*2*3 {
		t.Fatalf("shrink: got %d bytes, want %d", len(s.Pix), 12)
	}
	if s.Pix[s.Stride()+3] != old.Pix[old.Stride()+3] {
		t.Fatalf("shrink: pixel (1,1) not preserved")
	}
}

func TestBlit(t *testing.T) {
	s := New(4, 4, Grayscale)
	if err := s.Blit(1, 2, 2, 2, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("blit: %v", err)
	}
	want := []byte{
		0, 0, 0, 0,
		0, 0, 0, 0,
		0, 1, 2, 0,
		0, 3, 4, 0,
	}
	for i := range want {
		if s.Pix[i] != want[i] {
			t.Fatalf("blit: byte %d got %d, want %d", i, s.Pix[i], want[i])
		}
	}
	if err := s.Blit(3, 3, 2, 2, []byte{1, 2, 3, 4}); err == nil {
		t.Fatalf("blit past edge: expected error")
	}
	if err := s.Blit(0, 0, 2, 2, []byte{1}); err == nil {
		t.Fatalf("short source: expected error")
	}
}

func TestCopyRegion(t *testing.T) {
	src := New(4, 4, Grayscale)
	src.Fill(image.Rect(1, 1, 3, 3), 9)
	dst := New(8, 8, Grayscale)
	if err := dst.CopyRegion(image.Pt(5, 6), src, image.Rect(1, 1, 3, 3)); err != nil {
		t.Fatalf("copy region: %v", err)
	}
	if dst.Pix[6*8+5] != 9 || dst.Pix[7*8+6] != 9 || dst.Pix[5*8+5] != 0 {
		t.Fatalf("copy region: unexpected pixels")
	}
	if err := dst.CopyRegion(image.Pt(7, 7), src, image.Rect(1, 1, 3, 3)); err == nil {
		t.Fatalf("copy past edge: expected error")
	}
}

func TestImageRoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(2, 2, 4, 3))
	img.Set(2, 2, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	s := FromImage(img)
	if s.Width != 2 || s.Height != 1 || s.Channels != RGBA {
		t.Fatalf("from image: got %dx%d ch %d", s.Width, s.Height, s.Channels)
	}
	if s.Pix[0] != 10 || s.Pix[3] != 255 {
		t.Fatalf("from image: first pixel %v", s.Pix[:4])
	}
	r, g, b, _ := s.Image().At(0, 0).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Fatalf("image view: got %d %d %d", r>>8, g>>8, b>>8)
	}
}
