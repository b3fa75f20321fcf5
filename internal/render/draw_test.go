package render

import (
	"errors"
	"testing"

	"bsprender/internal/fixed"
)

func testCanvas(fb []byte) *canvas {
	c := &canvas{pix: fb, width: ScreenWidth, height: ScreenHeight, centerY: ScreenHeight / 2}
	c.initBuffer(ScreenWidth, ScreenHeight)
	cm := testAssets().Colormaps
	c.fuzzMap = &cm[FuzzColormap]
	return c
}

func identity() *Colormap {
	var cm Colormap
	for i := range cm {
		cm[i] = byte(i)
	}
	return &cm
}

func TestDrawColumnTilesVertically(t *testing.T) {
	fb := newFramebuffer()
	c := testCanvas(fb)
	src := []byte{1, 2, 3, 4}
	c.drawColumn(&columnJob{
		x: 7, yl: 0, yh: 9,
		iscale:     fixed.FracUnit,
		textureMid: fixed.FromInt(ScreenHeight / 2),
		source:     src,
		colormap:   identity(),
	})
	for y := 0; y <= 9; y++ {
		want := src[y%len(src)]
		if got := fb[y*ScreenWidth+7]; got != want {
			t.Errorf("row %d = %d, want %d", y, got, want)
		}
	}
}

func TestDrawColumnEmptyRangeIsNoop(t *testing.T) {
	fb := newFramebuffer()
	c := testCanvas(fb)
	c.drawColumn(&columnJob{x: 5, yl: 10, yh: 9, source: []byte{9}, colormap: identity()})
	for i, p := range fb {
		if p != 0 {
			t.Fatalf("pixel %d written by empty column", i)
		}
	}
}

func TestDrawColumnOutOfRangeIsFatal(t *testing.T) {
	tests := []struct {
		name string
		job  columnJob
	}{
		{"x past width", columnJob{x: ScreenWidth, yl: 0, yh: 1}},
		{"negative yl", columnJob{x: 0, yl: -1, yh: 1}},
		{"yh past height", columnJob{x: 0, yl: 0, yh: ScreenHeight}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testCanvas(newFramebuffer())
			job := tt.job
			job.source = []byte{1}
			job.colormap = identity()
			var err error
			func() {
				defer recoverFatal(&err)
				c.drawColumn(&job)
			}()
			var fe *FatalError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FatalError, got %v", err)
			}
		})
	}
}

func TestLowDetailDoublesPixels(t *testing.T) {
	fb := newFramebuffer()
	c := testCanvas(fb)
	c.low = true
	c.width = ScreenWidth / 2
	c.drawColumn(&columnJob{x: 3, yl: 0, yh: 0, iscale: fixed.FracUnit,
		textureMid: fixed.FromInt(ScreenHeight / 2), source: []byte{77}, colormap: identity()})
	if fb[6] != 77 || fb[7] != 77 {
		t.Errorf("low detail pixels = %d, %d; want 77, 77", fb[6], fb[7])
	}
}

func TestTranslatedColumn(t *testing.T) {
	fb := newFramebuffer()
	c := testCanvas(fb)
	tr := DefaultTranslations()
	c.translatedColumn(&columnJob{x: 0, yl: 0, yh: 0, iscale: fixed.FracUnit,
		textureMid: fixed.FromInt(ScreenHeight / 2), source: []byte{0x72},
		colormap: identity(), translation: &tr[2]})
	if fb[0] != 0x22 {
		t.Errorf("translated pixel = %#x, want 0x22", fb[0])
	}
}

func TestSpanWrapsEuclidean(t *testing.T) {
	coords := []struct{ u, v fixed.Fixed }{
		{0, 0},
		{fixed.FromInt(5), fixed.FromInt(60)},
		{fixed.FromInt(-1), fixed.FromInt(-1)},
		{fixed.FromInt(-70) + 1234, fixed.FromInt(130) + 999},
	}
	for _, c := range coords {
		want := flatSpot(c.u, c.v)
		if want < 0 || want >= FlatSize*FlatSize {
			t.Fatalf("flatSpot(%d, %d) = %d out of range", c.u, c.v, want)
		}
		for k := -3; k <= 3; k++ {
			off := fixed.FromInt(64 * k)
			if got := flatSpot(c.u+off, c.v+off); got != want {
				t.Errorf("flatSpot shifted by %d tiles = %d, want %d", k, got, want)
			}
		}
	}
	// negative coordinates land at the far edge of the tile
	if got := flatSpot(fixed.FromInt(-1), 0); got != 63 {
		t.Errorf("flatSpot(-1, 0) = %d, want 63", got)
	}
}

func TestDrawSpan(t *testing.T) {
	fb := newFramebuffer()
	c := testCanvas(fb)
	src := make([]byte, FlatSize*FlatSize)
	for i := range src {
		src[i] = byte(i & 63)
	}
	c.drawSpan(&spanJob{y: 3, x1: 10, x2: 20, xfrac: fixed.FromInt(-2), xstep: fixed.FracUnit,
		source: src, colormap: identity()})
	for x := 10; x <= 20; x++ {
		want := byte((x - 12) & 63)
		if got := fb[3*ScreenWidth+x]; got != want {
			t.Errorf("x=%d: %d, want %d", x, got, want)
		}
	}
}

func TestFuzzColumnDeterministic(t *testing.T) {
	base := newFramebuffer()
	for i := range base {
		base[i] = byte(i % 251)
	}

	run := func() ([]byte, int) {
		fb := append([]byte(nil), base...)
		c := testCanvas(fb)
		c.fuzzColumn(&columnJob{x: 10, yl: 5, yh: 14})
		c.fuzzColumn(&columnJob{x: 10, yl: 5, yh: 14})
		return fb, c.fuzzPos
	}
	a, posA := run()
	b, posB := run()
	if posA != 20 || posB != 20 {
		t.Fatalf("fuzzPos = %d, %d; want 20", posA, posB)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("fuzz output differs at %d", i)
		}
	}

	// first row reads the untouched row below through the darkening map
	fb := append([]byte(nil), base...)
	c := testCanvas(fb)
	c.fuzzColumn(&columnJob{x: 10, yl: 5, yh: 5})
	want := base[6*ScreenWidth+10] ^ 0x80
	if got := fb[5*ScreenWidth+10]; got != want {
		t.Errorf("fuzz pixel = %d, want %d", got, want)
	}
	if c.fuzzPos != 1 {
		t.Errorf("fuzzPos = %d, want 1", c.fuzzPos)
	}
}

func TestFuzzColumnClampsEdges(t *testing.T) {
	fb := newFramebuffer()
	c := testCanvas(fb)
	c.fuzzColumn(&columnJob{x: 0, yl: 0, yh: ScreenHeight - 1})
	if c.fuzzPos != (ScreenHeight-2)%fuzzTable {
		t.Errorf("fuzzPos = %d, want %d", c.fuzzPos, (ScreenHeight-2)%fuzzTable)
	}
	if fb[0] != 0 || fb[(ScreenHeight-1)*ScreenWidth] != 0 {
		t.Error("fuzz wrote the edge rows")
	}
}

func TestFuzzColumnFollowsOffsetTable(t *testing.T) {
	const (
		row   = 50
		above = 1
		below = 2
	)
	fb := newFramebuffer()
	for x := 0; x < ScreenWidth; x++ {
		fb[(row-1)*ScreenWidth+x] = above
		fb[(row+1)*ScreenWidth+x] = below
	}
	c := testCanvas(fb)

	// one pixel per column so every read sees untouched neighbours
	for k := 0; k <= fuzzTable; k++ {
		c.fuzzColumn(&columnJob{x: k, yl: row, yh: row})
	}
	for k := 0; k <= fuzzTable; k++ {
		src := byte(below)
		if fuzzOffsets[k%fuzzTable] < 0 {
			src = above
		}
		if got, want := fb[row*ScreenWidth+k], src^0x80; got != want {
			t.Errorf("draw %d = %d, want %d", k, got, want)
		}
	}
	if c.fuzzPos != 1 {
		t.Errorf("fuzzPos = %d, want 1 after wrapping", c.fuzzPos)
	}
	for i, off := range fuzzOffsets {
		if off != fuzzOff && off != -fuzzOff {
			t.Errorf("fuzzOffsets[%d] = %d, want one row up or down", i, off)
		}
	}
}
