package render

import (
	"bsprender/internal/fixed"
	"bsprender/internal/mathutil"
)

const (
	ScreenWidth     = 320
	ScreenHeight    = 200
	StatusBarHeight = 32

	// MinBlocks and MaxBlocks bound the view size setting. MaxBlocks fills
	// the whole screen, status bar area included.
	MinBlocks = 3
	MaxBlocks = 11

	fieldOfView = 2048
	// angleToSkyShift maps a view angle to a sky texture column.
	angleToSkyShift = 22
)

// viewTables are regenerated whenever the view size or detail changes.
type viewTables struct {
	blocks      int
	detailShift uint

	scaledViewWidth int
	viewWidth       int
	viewHeight      int

	centerX     int
	centerY     int
	centerXFrac fixed.Fixed
	centerYFrac fixed.Fixed
	projection  fixed.Fixed

	// viewAngleToX maps a fine angle offset by 90 degrees to a column.
	viewAngleToX [fixed.FineAngles / 2]int
	// xToViewAngle is the leftmost view angle that maps to each column.
	xToViewAngle [ScreenWidth + 1]fixed.Angle
	clipAngle    fixed.Angle

	ySlope    [ScreenHeight]fixed.Fixed
	distScale [ScreenWidth]fixed.Fixed

	screenHeightArray [ScreenWidth]int16
	negOneArray       [ScreenWidth]int16

	pspriteScale  fixed.Fixed
	pspriteIScale fixed.Fixed
	skyTextureMid fixed.Fixed
}

// SetViewSize records a view size change. It takes effect at the start of
// the next frame.
func (r *Renderer) SetViewSize(blocks, detail int) error {
	if blocks < MinBlocks || blocks > MaxBlocks || detail < 0 || detail > 1 {
		return ErrBadViewSize
	}
	r.setSizeNeeded = true
	r.setBlocks = blocks
	r.setDetail = detail
	return nil
}

// ViewSize reports the applied blocks and detail level.
func (r *Renderer) ViewSize() (blocks, detail int) {
	return r.view.blocks, int(r.view.detailShift)
}

func (r *Renderer) executeSetViewSize() {
	v := &r.view
	r.setSizeNeeded = false

	if r.setBlocks == MaxBlocks {
		v.scaledViewWidth = ScreenWidth
		v.viewHeight = ScreenHeight
	} else {
		v.scaledViewWidth = r.setBlocks * 32
		v.viewHeight = (r.setBlocks * 168 / 10) &^ 7
	}
	v.blocks = r.setBlocks
	v.detailShift = uint(r.setDetail)
	v.viewWidth = v.scaledViewWidth >> v.detailShift

	v.centerY = v.viewHeight / 2
	v.centerX = v.viewWidth / 2
	v.centerXFrac = fixed.FromInt(v.centerX)
	v.centerYFrac = fixed.FromInt(v.centerY)
	v.projection = v.centerXFrac

	r.screen.initBuffer(v.scaledViewWidth, v.viewHeight)
	r.screen.width = v.viewWidth
	r.screen.height = v.viewHeight
	r.screen.centerY = v.centerY
	r.screen.low = v.detailShift != 0

	r.initTextureMapping()

	v.pspriteScale = fixed.FracUnit * fixed.Fixed(v.viewWidth) / ScreenWidth
	v.pspriteIScale = fixed.FracUnit * ScreenWidth / fixed.Fixed(v.viewWidth)
	v.skyTextureMid = fixed.FromInt(ScreenHeight / 2)

	for i := 0; i < v.viewWidth; i++ {
		v.screenHeightArray[i] = int16(v.viewHeight)
		v.negOneArray[i] = -1
	}

	for i := 0; i < v.viewHeight; i++ {
		dy := fixed.FromInt(i-v.viewHeight/2) + fixed.FracUnit/2
		v.ySlope[i] = fixed.Div(fixed.FromInt((v.viewWidth<<v.detailShift)/2), dy.Abs())
	}
	for i := 0; i < v.viewWidth; i++ {
		cosadj := fixed.FineCosine[v.xToViewAngle[i].Fine()].Abs()
		v.distScale[i] = fixed.Div(fixed.FracUnit, cosadj)
	}

	r.initScaleLight()
	logger.Printf("view size %d blocks, detail %d: %dx%d", v.blocks, v.detailShift, v.scaledViewWidth, v.viewHeight)
}

// initTextureMapping builds the angle to column tables for the current
// view width. Angles outside the field of view clamp to the screen edges.
func (r *Renderer) initTextureMapping() {
	v := &r.view
	focalLength := fixed.Div(v.centerXFrac, fixed.FineTangent[fixed.FineAngles/4+fieldOfView/2])

	for i := 0; i < fixed.FineAngles/2; i++ {
		var t int
		switch tan := fixed.FineTangent[i]; {
		case tan > fixed.FracUnit*2:
			t = -1
		case tan < -fixed.FracUnit*2:
			t = v.viewWidth + 1
		default:
			t = int((v.centerXFrac - fixed.Mul(tan, focalLength) + fixed.FracUnit - 1) >> fixed.FracBits)
			t = mathutil.Clamp(t, -1, v.viewWidth+1)
		}
		v.viewAngleToX[i] = t
	}

	for x := 0; x <= v.viewWidth; x++ {
		i := 0
		for v.viewAngleToX[i] > x {
			i++
		}
		v.xToViewAngle[x] = fixed.Angle(i<<fixed.AngleToFineShift) - fixed.Ang90
	}

	for i := 0; i < fixed.FineAngles/2; i++ {
		switch v.viewAngleToX[i] {
		case -1:
			v.viewAngleToX[i] = 0
		case v.viewWidth + 1:
			v.viewAngleToX[i] = v.viewWidth
		}
	}
	v.clipAngle = v.xToViewAngle[0]
}

// scaleFromGlobalAngle returns the projected scale of the current wall at
// view angle visAngle, clamped to [1/256, 64].
func (r *Renderer) scaleFromGlobalAngle(visAngle fixed.Angle, w *wallState) fixed.Fixed {
	anglea := fixed.Ang90 + (visAngle - r.viewAngle)
	angleb := fixed.Ang90 + (visAngle - w.normalAngle)
	sinea := anglea.Sin()
	sineb := angleb.Sin()
	num := fixed.Mul(r.view.projection, sineb) << r.view.detailShift
	den := fixed.Mul(w.distance, sinea)

	if den > num>>fixed.FracBits {
		scale := fixed.Div(num, den)
		return mathutil.Clamp(scale, minScale, maxScale)
	}
	return maxScale
}

const (
	minScale = 256
	maxScale = 64 * fixed.FracUnit
)
