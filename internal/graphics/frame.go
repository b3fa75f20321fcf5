// Package graphics turns the renderer's 8-bit framebuffer into images for
// the window and for screenshots.
package graphics

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	xdraw "golang.org/x/image/draw"

	"bsprender/internal/render"
)

// Frame owns a paletted framebuffer and the images made from it.
type Frame struct {
	Pixels []byte

	palette color.Palette
	rgba    []byte
	screen  *ebiten.Image // created on first use
}

func NewFrame(pal [256]color.RGBA) *Frame {
	f := &Frame{
		Pixels: make([]byte, render.ScreenWidth*render.ScreenHeight),
		rgba:   make([]byte, render.ScreenWidth*render.ScreenHeight*4),
	}
	f.SetPalette(pal)
	return f
}

// SetPalette replaces the palette, as for a damage or pickup flash.
func (f *Frame) SetPalette(pal [256]color.RGBA) {
	f.palette = make(color.Palette, len(pal))
	for i, c := range pal {
		f.palette[i] = c
	}
}

// Paletted wraps the framebuffer without copying.
func (f *Frame) Paletted() *image.Paletted {
	return &image.Paletted{
		Pix:     f.Pixels,
		Stride:  render.ScreenWidth,
		Rect:    image.Rect(0, 0, render.ScreenWidth, render.ScreenHeight),
		Palette: f.palette,
	}
}

// RGBA expands the framebuffer through the palette into premultiplied
// RGBA bytes, the layout ebiten.Image.WritePixels takes.
func (f *Frame) RGBA() []byte {
	for i, p := range f.Pixels {
		c := f.palette[p].(color.RGBA)
		f.rgba[i*4] = c.R
		f.rgba[i*4+1] = c.G
		f.rgba[i*4+2] = c.B
		f.rgba[i*4+3] = 0xff
	}
	return f.rgba
}

// Image uploads the framebuffer and returns the 320x200 screen image.
func (f *Frame) Image() *ebiten.Image {
	if f.screen == nil {
		f.screen = ebiten.NewImage(render.ScreenWidth, render.ScreenHeight)
	}
	f.screen.WritePixels(f.RGBA())
	return f.screen
}

// WritePNG encodes the frame scaled up by an integer factor.
func (f *Frame) WritePNG(w io.Writer, scale int) error {
	if scale < 1 {
		return fmt.Errorf("screenshot scale %d", scale)
	}
	src := f.Paletted()
	if scale == 1 {
		return png.Encode(w, src)
	}
	dst := image.NewRGBA(image.Rect(0, 0, render.ScreenWidth*scale, render.ScreenHeight*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return png.Encode(w, dst)
}

// SavePNG writes a screenshot to path.
func (f *Frame) SavePNG(path string, scale int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.WritePNG(file, scale); err != nil {
		file.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return file.Close()
}
