package render

import (
	"testing"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
	"bsprender/internal/level/leveltest"
)

const (
	testFloorPic   = 1
	testCeilingPic = 2
	testSkyPic     = 3

	testWallColor   = 10
	testUpperColor  = 20
	testSpriteColor = 70

	testSprite = 0
)

// testAssets uses identity colormaps except for the fuzz row, which flips
// the high bit so the effect is visible.
func testAssets() *Assets {
	cm := make([]Colormap, NumColormaps+2)
	for i := range cm {
		for j := 0; j < 256; j++ {
			cm[i][j] = byte(j)
		}
	}
	for j := 0; j < 256; j++ {
		cm[FuzzColormap][j] = byte(j) ^ 0x80
	}

	flat := func(name string, c byte) *Flat {
		px := make([]byte, FlatSize*FlatSize)
		for i := range px {
			px[i] = c + byte(i&3)
		}
		return &Flat{Name: name, Pixels: px}
	}

	pixels := make([]byte, 32)
	for i := range pixels {
		pixels[i] = testSpriteColor
	}
	cols := make([]Column, 16)
	for i := range cols {
		cols[i] = Column{{TopDelta: 0, Pixels: pixels}}
	}
	patch := &Patch{Name: "TROOA0", Width: 16, Height: 32, LeftOffset: 8, TopOffset: 32, Columns: cols}

	return &Assets{
		Colormaps:    cm,
		Translations: DefaultTranslations(),
		Textures: []*Texture{
			nil,
			SolidTexture("WALL", 64, 128, testWallColor),
			SolidTexture("UPPER", 64, 64, testUpperColor),
			SolidTexture("SKY1", 256, 128, 30),
		},
		Flats: []*Flat{
			nil,
			flat("FLOOR", 40),
			flat("CEIL", 50),
			flat("F_SKY1", 60),
		},
		Sprites: []SpriteDef{
			{Name: "TROO", Frames: []SpriteFrame{{Patches: [8]*Patch{patch}}}},
		},
		SkyFlat:    testSkyPic,
		SkyTexture: 3,
	}
}

func roomSpec() leveltest.SectorSpec {
	return leveltest.SectorSpec{Floor: 0, Ceiling: 128, FloorPic: testFloorPic, CeilingPic: testCeilingPic, Light: 160}
}

func newTestRenderer(t *testing.T, lvl *level.Level, limits Limits) *Renderer {
	t.Helper()
	r, err := New(testAssets(), lvl, limits, MaxBlocks, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func eastViewer(x, y int) *Viewer {
	return &Viewer{X: fixed.FromInt(x), Y: fixed.FromInt(y), Z: fixed.FromInt(41)}
}

func newFramebuffer() []byte {
	return make([]byte, ScreenWidth*ScreenHeight)
}

func mustRender(t *testing.T, r *Renderer, v *Viewer) ([]byte, FrameStats) {
	t.Helper()
	fb := newFramebuffer()
	stats, err := r.RenderFrame(v, fb)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	return fb, stats
}
