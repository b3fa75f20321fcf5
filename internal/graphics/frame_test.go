package graphics

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"bsprender/internal/render"
)

func testPalette() [256]color.RGBA {
	var pal [256]color.RGBA
	for i := range pal {
		pal[i] = color.RGBA{R: uint8(i), G: uint8(255 - i), B: 7, A: 0xff}
	}
	return pal
}

func TestRGBAExpandsThroughPalette(t *testing.T) {
	f := NewFrame(testPalette())
	f.Pixels[0] = 10
	f.Pixels[len(f.Pixels)-1] = 200

	rgba := f.RGBA()
	if got := rgba[:4]; !bytes.Equal(got, []byte{10, 245, 7, 0xff}) {
		t.Errorf("first pixel = %v", got)
	}
	if got := rgba[len(rgba)-4:]; !bytes.Equal(got, []byte{200, 55, 7, 0xff}) {
		t.Errorf("last pixel = %v", got)
	}
}

func TestWritePNGScales(t *testing.T) {
	f := NewFrame(testPalette())
	f.Pixels[render.ScreenWidth+1] = 42

	tests := []struct {
		scale int
	}{
		{1},
		{2},
		{3},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := f.WritePNG(&buf, tt.scale); err != nil {
			t.Fatalf("WritePNG(%d): %v", tt.scale, err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		b := img.Bounds()
		if b.Dx() != render.ScreenWidth*tt.scale || b.Dy() != render.ScreenHeight*tt.scale {
			t.Errorf("scale %d: size %v", tt.scale, b)
		}
		// the source pixel (1,1) covers [s, 2s) in both axes
		r, g, _, _ := img.At(2*tt.scale-1, 2*tt.scale-1).RGBA()
		if r>>8 != 42 || g>>8 != 213 {
			t.Errorf("scale %d: pixel = %d,%d, want 42,213", tt.scale, r>>8, g>>8)
		}
	}

	if err := f.WritePNG(&bytes.Buffer{}, 0); err == nil {
		t.Error("WritePNG accepted scale 0")
	}
}

func TestSavePNG(t *testing.T) {
	f := NewFrame(testPalette())
	path := filepath.Join(t.TempDir(), "shot.png")
	if err := f.SavePNG(path, 2); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Errorf("screenshot not written: %v", err)
	}
}
