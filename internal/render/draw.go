package render

import (
	"bsprender/internal/fixed"
	"bsprender/internal/mathutil"
)

// DrawStyle selects a column writer.
type DrawStyle uint8

const (
	StyleNormal DrawStyle = iota
	// StyleFuzz resamples the framebuffer for the shadow effect.
	StyleFuzz
	// StyleTranslated remaps the player color ramp first.
	StyleTranslated
)

func (s DrawStyle) String() string {
	switch s {
	case StyleFuzz:
		return "fuzz"
	case StyleTranslated:
		return "translated"
	default:
		return "normal"
	}
}

const (
	fuzzTable = 50
	fuzzOff   = ScreenWidth
)

// fuzzOffsets is cycled across fuzz draws. Each entry reads the pixel
// one row above or below.
var fuzzOffsets = [fuzzTable]int{
	fuzzOff, -fuzzOff, fuzzOff, -fuzzOff, fuzzOff, fuzzOff, -fuzzOff,
	fuzzOff, fuzzOff, -fuzzOff, fuzzOff, fuzzOff, fuzzOff, -fuzzOff,
	fuzzOff, fuzzOff, fuzzOff, -fuzzOff, -fuzzOff, -fuzzOff, -fuzzOff,
	fuzzOff, -fuzzOff, -fuzzOff, fuzzOff, fuzzOff, fuzzOff, fuzzOff, -fuzzOff,
	fuzzOff, -fuzzOff, fuzzOff, fuzzOff, -fuzzOff, -fuzzOff, fuzzOff,
	fuzzOff, -fuzzOff, -fuzzOff, -fuzzOff, -fuzzOff, fuzzOff, fuzzOff,
	fuzzOff, fuzzOff, -fuzzOff, fuzzOff, fuzzOff, -fuzzOff, fuzzOff,
}

// columnJob is one vertical strip request. yl > yh draws nothing.
type columnJob struct {
	x, yl, yh   int
	iscale      fixed.Fixed
	textureMid  fixed.Fixed
	source      []byte
	colormap    *Colormap
	translation *Colormap
}

// spanJob is one horizontal run on row y.
type spanJob struct {
	y, x1, x2    int
	xfrac, yfrac fixed.Fixed
	xstep, ystep fixed.Fixed
	source       []byte
	colormap     *Colormap
}

// canvas writes into the view window of a 320x200 paletted framebuffer.
// Coordinates are view relative; in low detail each column is two pixels
// wide.
type canvas struct {
	pix       []byte
	ylookup   [ScreenHeight]int
	columnOfs [ScreenWidth]int
	width     int
	height    int
	centerY   int
	low       bool
	fuzzPos   int
	fuzzMap   *Colormap
}

// initBuffer positions a width x height window on the screen. width is in
// screen pixels.
func (c *canvas) initBuffer(width, height int) {
	windowX := (ScreenWidth - width) >> 1
	for i := 0; i < width; i++ {
		c.columnOfs[i] = windowX + i
	}
	windowY := 0
	if width != ScreenWidth {
		windowY = (ScreenHeight - StatusBarHeight - height) >> 1
	}
	for i := 0; i < height; i++ {
		c.ylookup[i] = (i + windowY) * ScreenWidth
	}
}

func (c *canvas) checkColumn(op string, j *columnJob) {
	if j.x < 0 || j.x >= c.width || j.yl < 0 || j.yh >= c.height {
		fatalf(op, "%d to %d at %d", j.yl, j.yh, j.x)
	}
}

func (c *canvas) dest(x, y int) int {
	if c.low {
		return c.ylookup[y] + c.columnOfs[x<<1]
	}
	return c.ylookup[y] + c.columnOfs[x]
}

func (c *canvas) put(d int, v byte) {
	c.pix[d] = v
	if c.low {
		c.pix[d+1] = v
	}
}

// column dispatches j to the writer for style.
func (c *canvas) column(style DrawStyle, j *columnJob) {
	switch style {
	case StyleFuzz:
		c.fuzzColumn(j)
	case StyleTranslated:
		c.translatedColumn(j)
	default:
		c.drawColumn(j)
	}
}

// drawColumn samples the source modulo its length, so walls tile
// vertically.
func (c *canvas) drawColumn(j *columnJob) {
	if j.yh < j.yl {
		return
	}
	c.checkColumn("drawColumn", j)
	n := len(j.source)
	d := c.dest(j.x, j.yl)
	frac := j.textureMid + fixed.Fixed(j.yl-c.centerY)*j.iscale
	for y := j.yl; y <= j.yh; y++ {
		c.put(d, j.colormap[j.source[mathutil.Wrap(int(frac>>fixed.FracBits), n)]])
		d += ScreenWidth
		frac += j.iscale
	}
}

func (c *canvas) translatedColumn(j *columnJob) {
	if j.yh < j.yl {
		return
	}
	c.checkColumn("translatedColumn", j)
	n := len(j.source)
	d := c.dest(j.x, j.yl)
	frac := j.textureMid + fixed.Fixed(j.yl-c.centerY)*j.iscale
	for y := j.yl; y <= j.yh; y++ {
		src := j.source[mathutil.Wrap(int(frac>>fixed.FracBits), n)]
		c.put(d, j.colormap[j.translation[src]])
		d += ScreenWidth
		frac += j.iscale
	}
}

// fuzzColumn ignores the source and colormap. It keeps one row clear of
// the view edges so the lookahead stays in the window.
func (c *canvas) fuzzColumn(j *columnJob) {
	yl, yh := j.yl, j.yh
	if yl == 0 {
		yl = 1
	}
	if yh == c.height-1 {
		yh = c.height - 2
	}
	if yh < yl {
		return
	}
	c.checkColumn("fuzzColumn", &columnJob{x: j.x, yl: yl, yh: yh})
	d := c.dest(j.x, yl)
	for y := yl; y <= yh; y++ {
		c.put(d, c.fuzzMap[c.pix[d+fuzzOffsets[c.fuzzPos]]])
		c.fuzzPos++
		if c.fuzzPos == len(fuzzOffsets) {
			c.fuzzPos = 0
		}
		d += ScreenWidth
	}
}

// flatSpot returns the 64x64 flat index for texture coordinates. The masks
// wrap negative coordinates the same as positive ones.
func flatSpot(xfrac, yfrac fixed.Fixed) int {
	return int((yfrac>>(fixed.FracBits-6))&(63*64)) + int((xfrac>>fixed.FracBits)&63)
}

func (c *canvas) drawSpan(j *spanJob) {
	if j.x2 < j.x1 || j.x1 < 0 || j.x2 >= c.width || j.y < 0 || j.y >= c.height {
		fatalf("drawSpan", "%d to %d at %d", j.x1, j.x2, j.y)
	}
	xfrac, yfrac := j.xfrac, j.yfrac
	step := 1
	if c.low {
		step = 2
	}
	d := c.dest(j.x1, j.y)
	for x := j.x1; x <= j.x2; x++ {
		c.put(d, j.colormap[j.source[flatSpot(xfrac, yfrac)]])
		d += step
		xfrac += j.xstep
		yfrac += j.ystep
	}
}
