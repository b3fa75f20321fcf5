package render

import (
	"math"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
)

const (
	// heightBits is the fraction size of the 20.12 projected wall edges.
	heightBits = 12
	heightUnit = 1 << heightBits

	// maskedColumnDone marks a masked column that has been drawn.
	maskedColumnDone int16 = math.MaxInt16
)

// Silhouette flags say which edges of a wall can hide a sprite.
type Silhouette uint8

const (
	SilNone   Silhouette = 0
	SilBottom Silhouette = 1
	SilTop    Silhouette = 2
	SilBoth   = SilBottom | SilTop
)

// clipSlice views a per-column int16 array indexed by screen column.
type clipSlice struct {
	buf []int16
	off int
}

func (c clipSlice) valid() bool        { return c.buf != nil }
func (c clipSlice) at(x int) int16     { return c.buf[c.off+x] }
func (c clipSlice) set(x int, v int16) { c.buf[c.off+x] = v }

// drawSeg records a drawn wall for sprite clipping and masked drawing.
type drawSeg struct {
	curLine *level.Seg
	x1, x2  int

	scale1, scale2 fixed.Fixed
	scaleStep      fixed.Fixed

	silhouette Silhouette
	// a sprite with its bottom at or above bsilHeight is not hidden by the
	// wall's lower edge; likewise tsilHeight for the upper edge.
	bsilHeight fixed.Fixed
	tsilHeight fixed.Fixed

	sprTopClip    clipSlice
	sprBottomClip clipSlice
	// maskedTextureCol is valid when the seg has a masked middle texture.
	maskedTextureCol clipSlice
}

// wallState carries one storeWallRange call through the column loop.
type wallState struct {
	x, stopX int

	normalAngle fixed.Angle
	centerAngle fixed.Angle
	distance    fixed.Fixed
	offset      fixed.Fixed

	scale     fixed.Fixed
	scaleStep fixed.Fixed

	topFrac, topStep       fixed.Fixed
	bottomFrac, bottomStep fixed.Fixed
	pixHigh, pixHighStep   fixed.Fixed
	pixLow, pixLowStep     fixed.Fixed

	solid            bool
	midTexture       *Texture
	topTexture       *Texture
	bottomTexture    *Texture
	midTextureMid    fixed.Fixed
	topTextureMid    fixed.Fixed
	bottomTextureMid fixed.Fixed
	maskedTexture    bool
	segTextured      bool

	markFloor   bool
	markCeiling bool

	maskedCol  clipSlice
	wallLights *[maxLightScale]*Colormap
}

// reserveOpenings takes n slots from the openings buffer. Running out marks
// the frame as failed; checkArenas reports it once the walk is done.
func (r *Renderer) reserveOpenings(n int) (int, bool) {
	if r.lastOpening+n > len(r.openings) {
		r.openingsOut = true
		return 0, false
	}
	off := r.lastOpening
	r.lastOpening += n
	return off, true
}

// contrast darkens walls running east-west and brightens walls running
// north-south.
func contrast(seg *level.Seg) int {
	switch {
	case seg.V1.Y == seg.V2.Y:
		return -1
	case seg.V1.X == seg.V2.X:
		return 1
	}
	return 0
}

// storeWallRange draws the current seg over columns [start, stop] and
// records a drawSeg for it.
func (r *Renderer) storeWallRange(start, stop int) {
	if start >= r.view.viewWidth || start > stop {
		fatalf("storeWallRange", "bad range %d to %d", start, stop)
	}
	ds, ok := r.drawSegs.Alloc()
	if !ok {
		r.stats.DroppedSegs++
		return
	}

	seg := r.bsp.curLine
	side := seg.Side
	line := seg.Line
	front := r.bsp.frontSector
	back := r.bsp.backSector
	line.Flags |= level.LineMapped

	w := wallState{x: start, stopX: stop + 1}
	w.normalAngle = seg.Angle + fixed.Ang90
	hyp, dist := r.wallDistance(seg, r.bsp.rwAngle1)
	w.distance = dist

	ds.x1 = start
	ds.x2 = stop
	ds.curLine = seg

	w.scale = r.scaleFromGlobalAngle(r.viewAngle+r.view.xToViewAngle[start], &w)
	ds.scale1 = w.scale
	if stop > start {
		ds.scale2 = r.scaleFromGlobalAngle(r.viewAngle+r.view.xToViewAngle[stop], &w)
		w.scaleStep = (ds.scale2 - w.scale) / fixed.Fixed(stop-start)
		ds.scaleStep = w.scaleStep
	} else {
		ds.scale2 = ds.scale1
	}

	worldTop := front.CeilingHeight - r.viewZ
	worldBottom := front.FloorHeight - r.viewZ
	var worldHigh, worldLow fixed.Fixed

	if back == nil {
		w.solid = true
		if side.MidTexture != level.NoTexture {
			w.midTexture = r.assets.texture(side.MidTexture)
		}
		w.markFloor = true
		w.markCeiling = true
		if line.Flags&level.LineDontPegBottom != 0 && w.midTexture != nil {
			// bottom of texture at bottom of wall
			w.midTextureMid = front.FloorHeight + w.midTexture.HeightFixed() - r.viewZ
		} else {
			w.midTextureMid = worldTop
		}
		w.midTextureMid += side.RowOffset

		ds.silhouette = SilBoth
		ds.sprTopClip = clipSlice{buf: r.view.screenHeightArray[:]}
		ds.sprBottomClip = clipSlice{buf: r.view.negOneArray[:]}
		ds.bsilHeight = fixed.MaxFixed
		ds.tsilHeight = fixed.MinFixed
	} else {
		if front.FloorHeight > back.FloorHeight {
			ds.silhouette = SilBottom
			ds.bsilHeight = front.FloorHeight
		} else if back.FloorHeight > r.viewZ {
			ds.silhouette = SilBottom
			ds.bsilHeight = fixed.MaxFixed
		}
		if front.CeilingHeight < back.CeilingHeight {
			ds.silhouette |= SilTop
			ds.tsilHeight = front.CeilingHeight
		} else if back.CeilingHeight < r.viewZ {
			ds.silhouette |= SilTop
			ds.tsilHeight = fixed.MinFixed
		}
		if back.CeilingHeight <= front.FloorHeight {
			ds.sprBottomClip = clipSlice{buf: r.view.negOneArray[:]}
			ds.bsilHeight = fixed.MaxFixed
			ds.silhouette |= SilBottom
		}
		if back.FloorHeight >= front.CeilingHeight {
			ds.sprTopClip = clipSlice{buf: r.view.screenHeightArray[:]}
			ds.tsilHeight = fixed.MinFixed
			ds.silhouette |= SilTop
		}

		worldHigh = back.CeilingHeight - r.viewZ
		worldLow = back.FloorHeight - r.viewZ

		// both ceilings are sky: keep the upper texture off the sky
		if front.CeilingPic == r.assets.SkyFlat && back.CeilingPic == r.assets.SkyFlat {
			worldTop = worldHigh
		}

		w.markFloor = worldLow != worldBottom || back.FloorPic != front.FloorPic || back.LightLevel != front.LightLevel
		w.markCeiling = worldHigh != worldTop || back.CeilingPic != front.CeilingPic || back.LightLevel != front.LightLevel

		if back.CeilingHeight <= front.FloorHeight || back.FloorHeight >= front.CeilingHeight {
			// closed door
			w.markCeiling = true
			w.markFloor = true
		}

		if worldHigh < worldTop && side.TopTexture != level.NoTexture {
			w.topTexture = r.assets.texture(side.TopTexture)
			if line.Flags&level.LineDontPegTop != 0 {
				w.topTextureMid = worldTop
			} else {
				// bottom of texture at the back ceiling
				w.topTextureMid = back.CeilingHeight + w.topTexture.HeightFixed() - r.viewZ
			}
		}
		if worldLow > worldBottom && side.BottomTexture != level.NoTexture {
			w.bottomTexture = r.assets.texture(side.BottomTexture)
			if line.Flags&level.LineDontPegBottom != 0 {
				w.bottomTextureMid = worldTop
			} else {
				w.bottomTextureMid = worldLow
			}
		}
		w.topTextureMid += side.RowOffset
		w.bottomTextureMid += side.RowOffset

		if side.MidTexture != level.NoTexture {
			if off, ok := r.reserveOpenings(w.stopX - w.x); ok {
				w.maskedTexture = true
				w.maskedCol = clipSlice{buf: r.openings, off: off - w.x}
				ds.maskedTextureCol = w.maskedCol
			}
		}
	}

	w.segTextured = w.midTexture != nil || w.topTexture != nil || w.bottomTexture != nil || w.maskedTexture

	if w.segTextured {
		offsetAngle := w.normalAngle - r.bsp.rwAngle1
		if offsetAngle > fixed.Ang180 {
			offsetAngle = -offsetAngle
		}
		if offsetAngle > fixed.Ang90 {
			offsetAngle = fixed.Ang90
		}
		w.offset = fixed.Mul(hyp, offsetAngle.Sin())
		if w.normalAngle-r.bsp.rwAngle1 < fixed.Ang180 {
			w.offset = -w.offset
		}
		w.offset += side.TextureOffset + seg.Offset
		w.centerAngle = fixed.Ang90 + r.viewAngle - w.normalAngle
		w.wallLights = r.lightRow(front.LightLevel, contrast(seg))
	}

	// planes on the far side of the eye cannot be seen
	if front.FloorHeight >= r.viewZ {
		w.markFloor = false
	}
	if front.CeilingHeight <= r.viewZ && front.CeilingPic != r.assets.SkyFlat {
		w.markCeiling = false
	}

	worldTop >>= 4
	worldBottom >>= 4
	w.topStep = -fixed.Mul(w.scaleStep, worldTop)
	w.topFrac = r.view.centerYFrac>>4 - fixed.Mul(worldTop, w.scale)
	w.bottomStep = -fixed.Mul(w.scaleStep, worldBottom)
	w.bottomFrac = r.view.centerYFrac>>4 - fixed.Mul(worldBottom, w.scale)

	if back != nil {
		worldHigh >>= 4
		worldLow >>= 4
		if worldHigh < worldTop {
			w.pixHigh = r.view.centerYFrac>>4 - fixed.Mul(worldHigh, w.scale)
			w.pixHighStep = -fixed.Mul(w.scaleStep, worldHigh)
		}
		if worldLow > worldBottom {
			w.pixLow = r.view.centerYFrac>>4 - fixed.Mul(worldLow, w.scale)
			w.pixLowStep = -fixed.Mul(w.scaleStep, worldLow)
		}
	}

	if w.markCeiling && r.ceilingPlane != nil {
		r.ceilingPlane = r.checkPlane(r.ceilingPlane, w.x, w.stopX-1)
	}
	if w.markFloor && r.floorPlane != nil {
		r.floorPlane = r.checkPlane(r.floorPlane, w.x, w.stopX-1)
	}

	r.renderSegLoop(&w)

	// save the clips for sprites behind this wall
	if (ds.silhouette&SilTop != 0 || w.maskedTexture) && !ds.sprTopClip.valid() {
		if off, ok := r.reserveOpenings(w.stopX - start); ok {
			copy(r.openings[off:], r.ceilingClip[start:w.stopX])
			ds.sprTopClip = clipSlice{buf: r.openings, off: off - start}
		}
	}
	if (ds.silhouette&SilBottom != 0 || w.maskedTexture) && !ds.sprBottomClip.valid() {
		if off, ok := r.reserveOpenings(w.stopX - start); ok {
			copy(r.openings[off:], r.floorClip[start:w.stopX])
			ds.sprBottomClip = clipSlice{buf: r.openings, off: off - start}
		}
	}
	if w.maskedTexture && ds.silhouette&SilTop == 0 {
		ds.silhouette |= SilTop
		ds.tsilHeight = fixed.MinFixed
	}
	if w.maskedTexture && ds.silhouette&SilBottom == 0 {
		ds.silhouette |= SilBottom
		ds.bsilHeight = fixed.MaxFixed
	}
}

// wallDistance returns the distance to the seg's first vertex and the
// perpendicular distance to its line. angle1 is the view angle to V1.
func (r *Renderer) wallDistance(seg *level.Seg, angle1 fixed.Angle) (hyp, dist fixed.Fixed) {
	offsetAngle := fixed.Angle(absAngle(seg.Angle + fixed.Ang90 - angle1))
	if offsetAngle > fixed.Ang90 {
		offsetAngle = fixed.Ang90
	}
	distAngle := fixed.Ang90 - offsetAngle
	hyp = fixed.PointToDist(seg.V1.X-r.viewX, seg.V1.Y-r.viewY)
	return hyp, fixed.Mul(hyp, distAngle.Sin())
}

func absAngle(a fixed.Angle) uint32 {
	if int32(a) < 0 {
		return uint32(-int32(a))
	}
	return uint32(a)
}

// renderSegLoop walks the columns of one wall, drawing textures and
// updating the clip arrays and visplane spans.
func (r *Renderer) renderSegLoop(w *wallState) {
	viewHeight := int16(r.view.viewHeight)
	var job columnJob

	for ; w.x < w.stopX; w.x++ {
		x := w.x
		ceil := int(r.ceilingClip[x])
		floor := int(r.floorClip[x])

		// top of the wall, rounded down the screen
		yl := int((w.topFrac + heightUnit - 1) >> heightBits)
		if yl < ceil+1 {
			yl = ceil + 1
		}
		if w.markCeiling {
			top := ceil + 1
			bottom := yl - 1
			if bottom >= floor {
				bottom = floor - 1
			}
			if top <= bottom {
				r.ceilingPlane.setSpan(x, top, bottom)
			}
		}

		yh := int(w.bottomFrac >> heightBits)
		if yh >= floor {
			yh = floor - 1
		}
		if w.markFloor {
			top := yh + 1
			bottom := floor - 1
			if top <= ceil {
				top = ceil + 1
			}
			if top <= bottom {
				r.floorPlane.setSpan(x, top, bottom)
			}
		}

		var textureColumn int
		if w.segTextured {
			angle := (w.centerAngle + r.view.xToViewAngle[x]) >> fixed.AngleToFineShift
			textureColumn = int((w.offset - fixed.Mul(fixed.FineTangent[angle&(fixed.FineAngles/2-1)], w.distance)) >> fixed.FracBits)
			job.colormap = w.wallLights[scaleIndex(w.scale, lightScaleShift)]
			job.x = x
			job.iscale = fixed.Fixed(uint32(0xffffffff) / uint32(w.scale))
		}

		if w.solid {
			if w.midTexture != nil {
				job.yl, job.yh = yl, yh
				job.textureMid = w.midTextureMid
				job.source = w.midTexture.Column(textureColumn)
				r.screen.drawColumn(&job)
			}
			// nothing further can be drawn in this column
			r.ceilingClip[x] = viewHeight
			r.floorClip[x] = viewHeight
		} else {
			if w.topTexture != nil {
				mid := int(w.pixHigh >> heightBits)
				w.pixHigh += w.pixHighStep
				if mid >= floor {
					mid = floor - 1
				}
				if mid >= yl {
					job.yl, job.yh = yl, mid
					job.textureMid = w.topTextureMid
					job.source = w.topTexture.Column(textureColumn)
					r.screen.drawColumn(&job)
					r.ceilingClip[x] = int16(mid)
				} else {
					r.ceilingClip[x] = int16(yl - 1)
				}
			} else if w.markCeiling {
				r.ceilingClip[x] = int16(yl - 1)
			}

			if w.bottomTexture != nil {
				mid := int((w.pixLow + heightUnit - 1) >> heightBits)
				w.pixLow += w.pixLowStep
				if mid <= int(r.ceilingClip[x]) {
					mid = int(r.ceilingClip[x]) + 1
				}
				if mid <= yh {
					job.yl, job.yh = mid, yh
					job.textureMid = w.bottomTextureMid
					job.source = w.bottomTexture.Column(textureColumn)
					r.screen.drawColumn(&job)
					r.floorClip[x] = int16(mid)
				} else {
					r.floorClip[x] = int16(yh + 1)
				}
			} else if w.markFloor {
				r.floorClip[x] = int16(yh + 1)
			}

			if w.maskedTexture {
				w.maskedCol.set(x, int16(textureColumn))
			}

			// a closed column keeps ceilingClip <= floorClip
			if r.ceilingClip[x] > r.floorClip[x] {
				r.ceilingClip[x] = r.floorClip[x]
			}
		}

		w.scale += w.scaleStep
		w.topFrac += w.topStep
		w.bottomFrac += w.bottomStep
	}
}
