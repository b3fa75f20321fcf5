package render

import (
	"fmt"
	"image/color"

	"bsprender/internal/fixed"
	"bsprender/internal/mathutil"
)

const (
	// NumColormaps is the count of light-level colormaps. The colormap lump
	// carries two more: invulnerability and all black.
	NumColormaps = 32
	// FuzzColormap darkens pixels under the shadow effect.
	FuzzColormap = 6

	FlatSize = 64
)

// Colormap remaps palette indices for one brightness level.
type Colormap [256]byte

// Post is an opaque vertical run of a patch or masked texture column.
type Post struct {
	TopDelta int
	Pixels   []byte
}

// Column lists the posts of one picture column, top to bottom.
type Column []Post

// Patch is a column-major picture with transparent gaps.
type Patch struct {
	Name       string
	Width      int
	Height     int
	LeftOffset int
	TopOffset  int
	Columns    []Column
}

// TexturePatch places a patch inside a composite wall texture.
type TexturePatch struct {
	OriginX, OriginY int
	Patch            *Patch
}

// Texture is a wall texture composed from patches. Solid walls sample the
// composite columns; masked middle textures draw the posts so gaps stay
// transparent.
type Texture struct {
	Name      string
	Width     int
	Height    int
	widthMask int
	composite [][]byte
	posts     []Column
}

// NewTexture composes patches into a texture of the given size.
func NewTexture(name string, width, height int, patches []TexturePatch) *Texture {
	t := &Texture{
		Name:      name,
		Width:     width,
		Height:    height,
		composite: make([][]byte, width),
		posts:     make([]Column, width),
	}
	j := 1
	for j*2 <= width {
		j <<= 1
	}
	t.widthMask = j - 1

	covered := make([]bool, height)
	for x := 0; x < width; x++ {
		col := make([]byte, height)
		for i := range covered {
			covered[i] = false
		}
		for _, tp := range patches {
			px := x - tp.OriginX
			if tp.Patch == nil || px < 0 || px >= tp.Patch.Width {
				continue
			}
			for _, post := range tp.Patch.Columns[px] {
				y := tp.OriginY + post.TopDelta
				for i, p := range post.Pixels {
					if y+i < 0 || y+i >= height {
						continue
					}
					col[y+i] = p
					covered[y+i] = true
				}
			}
		}
		t.composite[x] = col
		t.posts[x] = runsToPosts(col, covered)
	}
	return t
}

func runsToPosts(col []byte, covered []bool) Column {
	var out Column
	for y := 0; y < len(col); {
		if !covered[y] {
			y++
			continue
		}
		start := y
		for y < len(col) && covered[y] {
			y++
		}
		out = append(out, Post{TopDelta: start, Pixels: col[start:y]})
	}
	return out
}

// SolidTexture is a single-color texture, mostly for tests and fallbacks.
func SolidTexture(name string, width, height int, index byte) *Texture {
	pixels := make([]byte, height)
	for i := range pixels {
		pixels[i] = index
	}
	cols := make([]Column, width)
	for i := range cols {
		cols[i] = Column{{TopDelta: 0, Pixels: pixels}}
	}
	p := &Patch{Name: name, Width: width, Height: height, Columns: cols}
	return NewTexture(name, width, height, []TexturePatch{{Patch: p}})
}

// HeightFixed returns the texture height in map units.
func (t *Texture) HeightFixed() fixed.Fixed { return fixed.FromInt(t.Height) }

// Column returns composite column col, wrapping to the largest power of two
// not above the width.
func (t *Texture) Column(col int) []byte {
	return t.composite[col&t.widthMask]
}

// Posts returns the masked posts of column col.
func (t *Texture) Posts(col int) Column {
	return t.posts[col&t.widthMask]
}

// Flat is a 64x64 floor or ceiling tile, row major.
type Flat struct {
	Name   string
	Pixels []byte
}

// SpriteFrame holds the eight rotations of one animation frame. A frame
// without rotations uses index 0 for every view angle.
type SpriteFrame struct {
	Rotate  bool
	Patches [8]*Patch
	Flip    [8]bool
}

type SpriteDef struct {
	Name   string
	Frames []SpriteFrame
}

// Assets is the read-only texture, flat, sprite and light data a renderer
// draws from. Texture and flat index 0 are reserved.
type Assets struct {
	Palette      [256]color.RGBA
	Colormaps    []Colormap
	Translations [3]Colormap
	Textures     []*Texture
	Flats        []*Flat
	Sprites      []SpriteDef

	SkyFlat    int
	SkyTexture int
	// BorderFlat tiles the screen around a reduced view.
	BorderFlat int
}

// Validate checks the invariants the draw loops index without checks.
func (a *Assets) Validate() error {
	if len(a.Colormaps) < NumColormaps {
		return fmt.Errorf("%w: %d colormaps, need %d", ErrMissingAssets, len(a.Colormaps), NumColormaps)
	}
	if a.SkyTexture <= 0 || a.SkyTexture >= len(a.Textures) || a.Textures[a.SkyTexture] == nil {
		return fmt.Errorf("%w: sky texture %d", ErrMissingAssets, a.SkyTexture)
	}
	for i, f := range a.Flats {
		if f != nil && len(f.Pixels) != FlatSize*FlatSize {
			return fmt.Errorf("flat %d (%s): %d bytes, want %d", i, f.Name, len(f.Pixels), FlatSize*FlatSize)
		}
	}
	for i, tex := range a.Textures {
		if tex != nil && (tex.Width <= 0 || tex.Height <= 0) {
			return fmt.Errorf("texture %d (%s): empty", i, tex.Name)
		}
	}
	return nil
}

func (a *Assets) flat(id int) *Flat {
	if id <= 0 || id >= len(a.Flats) || a.Flats[id] == nil {
		fatalf("flat", "bad flat %d", id)
	}
	return a.Flats[id]
}

func (a *Assets) texture(id int) *Texture {
	if id <= 0 || id >= len(a.Textures) || a.Textures[id] == nil {
		fatalf("texture", "bad texture %d", id)
	}
	return a.Textures[id]
}

// DefaultTranslations remaps the green player ramp to gray, brown and red.
func DefaultTranslations() [3]Colormap {
	var t [3]Colormap
	for i := 0; i < 256; i++ {
		if i >= 0x70 && i <= 0x7f {
			t[0][i] = byte(0x60 + i&0xf)
			t[1][i] = byte(0x40 + i&0xf)
			t[2][i] = byte(0x20 + i&0xf)
			continue
		}
		for k := range t {
			t[k][i] = byte(i)
		}
	}
	return t
}

// spriteMetrics are the projection inputs derived from a sprite patch.
func spriteMetrics(p *Patch) (width, offset, topOffset fixed.Fixed) {
	return fixed.FromInt(p.Width), fixed.FromInt(p.LeftOffset), fixed.FromInt(p.TopOffset)
}

// colormapIndex clamps a light computation to a valid colormap.
func colormapIndex(level int) int {
	return mathutil.Clamp(level, 0, NumColormaps-1)
}
