package render

import (
	"bsprender/internal/fixed"
)

// planeUnused marks a visplane column with no span.
const planeUnused byte = 0xff

// visPlane is one floor or ceiling surface and the columns it covers. The
// span arrays carry a pad entry on each side so neighbors of minX and maxX
// can be read without checks.
type visPlane struct {
	height     fixed.Fixed
	picNum     int
	lightLevel int
	minX, maxX int

	top    [ScreenWidth + 2]byte
	bottom [ScreenWidth + 2]byte
}

func (p *visPlane) unused(x int) bool { return p.top[x+1] == planeUnused }

func (p *visPlane) setSpan(x, top, bottom int) {
	p.top[x+1] = byte(top)
	p.bottom[x+1] = byte(bottom)
}

func (p *visPlane) span(x int) (top, bottom int) {
	return int(p.top[x+1]), int(p.bottom[x+1])
}

func (p *visPlane) clearSpans() {
	for i := range p.top {
		p.top[i] = planeUnused
		p.bottom[i] = 0
	}
}

// planeState caches per-row span geometry while planes are drawn.
type planeState struct {
	height     fixed.Fixed
	zLight     *[maxLightZ]*Colormap
	source     []byte
	baseXScale fixed.Fixed
	baseYScale fixed.Fixed

	spanStart      [ScreenHeight]int
	cachedHeight   [ScreenHeight]fixed.Fixed
	cachedDistance [ScreenHeight]fixed.Fixed
	cachedXStep    [ScreenHeight]fixed.Fixed
	cachedYStep    [ScreenHeight]fixed.Fixed
}

// clearPlanes opens every column and drops last frame's visplanes.
func (r *Renderer) clearPlanes() {
	for i := 0; i < r.view.viewWidth; i++ {
		r.floorClip[i] = int16(r.view.viewHeight)
		r.ceilingClip[i] = -1
	}
	r.visPlanes.Reset()
	r.lastOpening = 0
	r.openingsOut = false

	p := &r.planes
	for i := range p.cachedHeight {
		p.cachedHeight[i] = 0
	}
	// left to right mapping
	angle := r.viewAngle - fixed.Ang90
	p.baseXScale = fixed.Div(angle.Cos(), r.view.centerXFrac)
	p.baseYScale = -fixed.Div(angle.Sin(), r.view.centerXFrac)
}

func (r *Renderer) newPlane(height fixed.Fixed, picNum, lightLevel int) *visPlane {
	pl, ok := r.visPlanes.Alloc()
	if !ok {
		fatalf("findPlane", "no more visplanes (%d)", r.visPlanes.Cap())
	}
	pl.height = height
	pl.picNum = picNum
	pl.lightLevel = lightLevel
	pl.minX = ScreenWidth
	pl.maxX = -1
	pl.clearSpans()
	return pl
}

// findPlane returns the oldest visplane with the same surface, creating one
// if none exists. Every sky surface shares one key.
func (r *Renderer) findPlane(height fixed.Fixed, picNum, lightLevel int) *visPlane {
	if picNum == r.assets.SkyFlat {
		height = 0
		lightLevel = 0
	}
	for i := 0; i < r.visPlanes.Len(); i++ {
		pl := r.visPlanes.At(i)
		if pl.height == height && pl.picNum == picNum && pl.lightLevel == lightLevel {
			return pl
		}
	}
	return r.newPlane(height, picNum, lightLevel)
}

// checkPlane extends pl to cover [start, stop] when none of the overlap is
// claimed yet; otherwise it starts a new visplane with the same surface.
func (r *Renderer) checkPlane(pl *visPlane, start, stop int) *visPlane {
	var intrl, intrh, unionl, unionh int
	if start < pl.minX {
		intrl, unionl = pl.minX, start
	} else {
		unionl, intrl = pl.minX, start
	}
	if stop > pl.maxX {
		intrh, unionh = pl.maxX, stop
	} else {
		unionh, intrh = pl.maxX, stop
	}

	x := intrl
	for ; x <= intrh; x++ {
		if !pl.unused(x) {
			break
		}
	}
	if x > intrh {
		pl.minX = unionl
		pl.maxX = unionh
		return pl
	}

	np := r.newPlane(pl.height, pl.picNum, pl.lightLevel)
	np.minX = start
	np.maxX = stop
	return np
}

// makeSpans closes the rows that ended at column x-1 and opens the rows
// that start at x.
func (r *Renderer) makeSpans(x, t1, b1, t2, b2 int) {
	p := &r.planes
	for t1 < t2 && t1 <= b1 {
		r.mapPlane(t1, p.spanStart[t1], x-1)
		t1++
	}
	for b1 > b2 && b1 >= t1 {
		r.mapPlane(b1, p.spanStart[b1], x-1)
		b1--
	}
	for t2 < t1 && t2 <= b2 {
		p.spanStart[t2] = x
		t2++
	}
	for b2 > b1 && b2 >= t2 {
		p.spanStart[b2] = x
		b2--
	}
}

// mapPlane draws row y from x1 to x2 of the current plane. Distance and
// steps depend only on the row and height, so they are cached per row.
func (r *Renderer) mapPlane(y, x1, x2 int) {
	if x2 < x1 || x1 < 0 || x2 >= r.view.viewWidth || y >= r.view.viewHeight {
		fatalf("mapPlane", "%d, %d at %d", x1, x2, y)
	}
	p := &r.planes

	var distance, xstep, ystep fixed.Fixed
	if p.height != p.cachedHeight[y] {
		p.cachedHeight[y] = p.height
		distance = fixed.Mul(p.height, r.view.ySlope[y])
		p.cachedDistance[y] = distance
		xstep = fixed.Mul(distance, p.baseXScale)
		p.cachedXStep[y] = xstep
		ystep = fixed.Mul(distance, p.baseYScale)
		p.cachedYStep[y] = ystep
	} else {
		distance = p.cachedDistance[y]
		xstep = p.cachedXStep[y]
		ystep = p.cachedYStep[y]
	}

	length := fixed.Mul(distance, r.view.distScale[x1])
	angle := r.viewAngle + r.view.xToViewAngle[x1]

	job := spanJob{
		y:      y,
		x1:     x1,
		x2:     x2,
		xfrac:  r.viewX + fixed.Mul(angle.Cos(), length),
		yfrac:  -r.viewY - fixed.Mul(angle.Sin(), length),
		xstep:  xstep,
		ystep:  ystep,
		source: p.source,
	}
	if r.fixedColormap != nil {
		job.colormap = r.fixedColormap
	} else {
		job.colormap = p.zLight[zIndex(distance)]
	}
	r.screen.drawSpan(&job)
}

// drawPlanes expands every visplane into spans. Sky planes are drawn as
// columns instead.
func (r *Renderer) drawPlanes() {
	for i := 0; i < r.visPlanes.Len(); i++ {
		pl := r.visPlanes.At(i)
		if pl.minX > pl.maxX {
			continue
		}
		if pl.picNum == r.assets.SkyFlat {
			r.drawSky(pl)
			continue
		}

		p := &r.planes
		p.source = r.assets.flat(pl.picNum).Pixels
		p.height = (pl.height - r.viewZ).Abs()
		p.zLight = r.zLightRow(pl.lightLevel)

		pl.top[pl.maxX+2] = planeUnused
		pl.top[pl.minX] = planeUnused
		pl.bottom[pl.maxX+2] = 0
		pl.bottom[pl.minX] = 0

		for x := pl.minX; x <= pl.maxX+1; x++ {
			t1, b1 := pl.span(x - 1)
			t2, b2 := pl.span(x)
			r.makeSpans(x, t1, b1, t2, b2)
		}
	}
}

// drawSky maps view angle straight to a sky texture column at full
// brightness, whatever the ceiling height.
func (r *Renderer) drawSky(pl *visPlane) {
	sky := r.assets.texture(r.assets.SkyTexture)
	job := columnJob{
		iscale:     r.view.pspriteIScale >> r.view.detailShift,
		textureMid: r.view.skyTextureMid,
		colormap:   &r.assets.Colormaps[0],
	}
	for x := pl.minX; x <= pl.maxX; x++ {
		top, bottom := pl.span(x)
		if pl.unused(x) || top > bottom {
			continue
		}
		angle := (r.viewAngle + r.view.xToViewAngle[x]) >> angleToSkyShift
		job.x = x
		job.yl = top
		job.yh = bottom
		job.source = sky.Column(int(angle))
		r.screen.drawColumn(&job)
	}
}
