package render

import (
	"bsprender/internal/fixed"
	"bsprender/internal/level"
	"bsprender/internal/mathutil"
)

const (
	// minZ is the near clip distance for sprites.
	minZ = 4 * fixed.FracUnit

	baseYCenter = 100

	// clipUnset marks a sprite clip column no wall has claimed yet.
	clipUnset int16 = -2
)

// visSprite is a projected thing awaiting depth-sorted drawing.
type visSprite struct {
	prev, next *visSprite

	x1, x2 int

	// world position for side tests and silhouette heights
	gx, gy     fixed.Fixed
	gz, gzt    fixed.Fixed
	scale      fixed.Fixed
	xiScale    fixed.Fixed
	startFrac  fixed.Fixed
	textureMid fixed.Fixed

	patch       *Patch
	style       DrawStyle
	colormap    *Colormap
	translation *Colormap
}

// maskedState is shared by sprite and masked wall drawing.
type maskedState struct {
	floorClip    clipSlice
	ceilingClip  clipSlice
	sprTopScreen fixed.Fixed
	spryScale    fixed.Fixed
	spriteLights *[maxLightScale]*Colormap

	clipTop  [ScreenWidth]int16
	clipBot  [ScreenWidth]int16
	unsorted visSprite
}

func (r *Renderer) clearSprites() {
	r.visSprites.Reset()
}

// newVisSprite returns a fresh record, or the shared overflow record once
// the arena is full. The overflow record is never drawn.
func (r *Renderer) newVisSprite() *visSprite {
	vis, ok := r.visSprites.Alloc()
	if !ok {
		r.stats.DroppedSprites++
		r.overflowSprite = visSprite{}
		return &r.overflowSprite
	}
	return vis
}

// addSprites projects the things of sec once per frame, however many
// subsectors the sector is split into.
func (r *Renderer) addSprites(sec *level.Sector) {
	if sec.ValidCount == r.validCount {
		return
	}
	sec.ValidCount = r.validCount
	r.masked.spriteLights = r.lightRow(sec.LightLevel, 0)
	for _, t := range sec.Things {
		r.projectSprite(t)
	}
}

func (r *Renderer) spriteFrame(sprite, frame int) *SpriteFrame {
	if sprite < 0 || sprite >= len(r.assets.Sprites) {
		fatalf("projectSprite", "invalid sprite number %d", sprite)
	}
	def := &r.assets.Sprites[sprite]
	if frame < 0 || frame >= len(def.Frames) {
		fatalf("projectSprite", "invalid sprite frame %d : %d", sprite, frame)
	}
	return &def.Frames[frame]
}

// projectSprite adds t to the vissprite list if any of it can be on screen.
func (r *Renderer) projectSprite(t *level.Thing) {
	trX := t.X - r.viewX
	trY := t.Y - r.viewY

	gxt := fixed.Mul(trX, r.viewCos)
	gyt := -fixed.Mul(trY, r.viewSin)
	tz := gxt - gyt
	// behind the near plane
	if tz < minZ {
		return
	}
	xscale := fixed.Div(r.view.projection, tz)

	gxt = -fixed.Mul(trX, r.viewSin)
	gyt = fixed.Mul(trY, r.viewCos)
	tx := -(gyt + gxt)
	// too far off the side
	if tx.Abs() > tz<<2 {
		return
	}

	frame := r.spriteFrame(t.Sprite, t.Frame)
	rot := 0
	if frame.Rotate {
		ang := r.pointToAngle(t.X, t.Y)
		rot = int((ang - t.Angle + fixed.Ang45/2*9) >> 29)
	}
	patch, flip := frame.Patches[rot], frame.Flip[rot]
	if patch == nil {
		fatalf("projectSprite", "sprite %d frame %d has no rotation %d", t.Sprite, t.Frame, rot)
	}
	width, offset, topOffset := spriteMetrics(patch)

	tx -= offset
	x1 := int((r.view.centerXFrac + fixed.Mul(tx, xscale)) >> fixed.FracBits)
	if x1 >= r.view.viewWidth {
		return
	}
	tx += width
	x2 := int((r.view.centerXFrac+fixed.Mul(tx, xscale))>>fixed.FracBits) - 1
	if x2 < 0 {
		return
	}

	vis := r.newVisSprite()
	vis.scale = xscale << r.view.detailShift
	vis.gx = t.X
	vis.gy = t.Y
	vis.gz = t.Z
	vis.gzt = t.Z + topOffset
	vis.textureMid = vis.gzt - r.viewZ
	vis.x1 = mathutil.Max(x1, 0)
	vis.x2 = mathutil.Min(x2, r.view.viewWidth-1)

	iscale := fixed.Div(fixed.FracUnit, xscale)
	if flip {
		vis.startFrac = width - 1
		vis.xiScale = -iscale
	} else {
		vis.xiScale = iscale
	}
	if vis.x1 > x1 {
		vis.startFrac += vis.xiScale * fixed.Fixed(vis.x1-x1)
	}
	vis.patch = patch

	switch {
	case t.Flags&level.ThingShadow != 0:
		vis.style = StyleFuzz
	case r.fixedColormap != nil:
		vis.colormap = r.fixedColormap
	case t.Flags&level.ThingFullBright != 0:
		vis.colormap = &r.assets.Colormaps[0]
	default:
		vis.colormap = r.masked.spriteLights[scaleIndex(xscale, lightScaleShift-r.view.detailShift)]
	}
	if vis.style != StyleFuzz && t.Translation > 0 {
		if t.Translation > len(r.assets.Translations) {
			fatalf("projectSprite", "invalid translation %d", t.Translation)
		}
		vis.style = StyleTranslated
		vis.translation = &r.assets.Translations[t.Translation-1]
	}
}

// sortVisSprites links the vissprites into r.sortedHead from farthest
// (smallest scale) to nearest.
func (r *Renderer) sortVisSprites() {
	head := &r.sortedHead
	head.next, head.prev = head, head

	used := r.visSprites.Used()
	n := len(used)
	if n == 0 {
		return
	}

	u := &r.masked.unsorted
	for i := range used {
		if i == 0 {
			used[i].prev = u
		} else {
			used[i].prev = &used[i-1]
		}
		if i == n-1 {
			used[i].next = u
		} else {
			used[i].next = &used[i+1]
		}
	}
	u.next = &used[0]
	u.prev = &used[n-1]

	for i := 0; i < n; i++ {
		best := u.next
		bestScale := fixed.MaxFixed
		for ds := u.next; ds != u; ds = ds.next {
			if ds.scale < bestScale {
				bestScale = ds.scale
				best = ds
			}
		}
		best.next.prev = best.prev
		best.prev.next = best.next
		best.next = head
		best.prev = head.prev
		head.prev.next = best
		head.prev = best
	}
}

// drawMaskedColumn draws the posts of one column between the current
// masked clips.
func (r *Renderer) drawMaskedColumn(style DrawStyle, job *columnJob, col Column) {
	m := &r.masked
	base := job.textureMid
	floor := int(m.floorClip.at(job.x))
	ceil := int(m.ceilingClip.at(job.x))

	for _, post := range col {
		top := m.sprTopScreen + m.spryScale*fixed.Fixed(post.TopDelta)
		bottom := top + m.spryScale*fixed.Fixed(len(post.Pixels))

		yl := int((top + fixed.FracUnit - 1) >> fixed.FracBits)
		yh := int((bottom - 1) >> fixed.FracBits)
		if yh >= floor {
			yh = floor - 1
		}
		if yl <= ceil {
			yl = ceil + 1
		}
		if yl <= yh {
			job.yl, job.yh = yl, yh
			job.source = post.Pixels
			job.textureMid = base - fixed.FromInt(post.TopDelta)
			r.screen.column(style, job)
		}
	}
	job.textureMid = base
}

func (r *Renderer) drawVisSprite(vis *visSprite) {
	m := &r.masked
	job := columnJob{
		iscale:      vis.xiScale.Abs() >> r.view.detailShift,
		textureMid:  vis.textureMid,
		colormap:    vis.colormap,
		translation: vis.translation,
	}
	m.spryScale = vis.scale
	m.sprTopScreen = r.view.centerYFrac - fixed.Mul(job.textureMid, m.spryScale)

	frac := vis.startFrac
	for x := vis.x1; x <= vis.x2; x++ {
		col := int(frac >> fixed.FracBits)
		if col < 0 || col >= vis.patch.Width {
			fatalf("drawVisSprite", "bad texture column %d in %s", col, vis.patch.Name)
		}
		job.x = x
		r.drawMaskedColumn(vis.style, &job, vis.patch.Columns[col])
		frac += vis.xiScale
	}
}

// renderMaskedSegRange draws the masked middle texture of ds over [x1, x2],
// skipping columns already drawn.
func (r *Renderer) renderMaskedSegRange(ds *drawSeg, x1, x2 int) {
	m := &r.masked
	seg := ds.curLine
	front, back := seg.FrontSector, seg.BackSector
	tex := r.assets.texture(seg.Side.MidTexture)
	lights := r.lightRow(front.LightLevel, contrast(seg))

	m.floorClip = ds.sprBottomClip
	m.ceilingClip = ds.sprTopClip

	var mid fixed.Fixed
	if seg.Line.Flags&level.LineDontPegBottom != 0 {
		mid = mathutil.Max(front.FloorHeight, back.FloorHeight) + tex.HeightFixed() - r.viewZ
	} else {
		mid = mathutil.Min(front.CeilingHeight, back.CeilingHeight) - r.viewZ
	}
	mid += seg.Side.RowOffset

	scale := ds.scale1 + fixed.Fixed(x1-ds.x1)*ds.scaleStep
	job := columnJob{textureMid: mid}
	for x := x1; x <= x2; x++ {
		if c := ds.maskedTextureCol.at(x); c != maskedColumnDone {
			job.colormap = lights[scaleIndex(scale, lightScaleShift)]
			job.iscale = fixed.Fixed(uint32(0xffffffff) / uint32(scale))
			job.x = x
			m.spryScale = scale
			m.sprTopScreen = r.view.centerYFrac - fixed.Mul(mid, scale)
			r.drawMaskedColumn(StyleNormal, &job, tex.Posts(int(c)))
			ds.maskedTextureCol.set(x, maskedColumnDone)
		}
		scale += ds.scaleStep
	}
}

// clipSprite fills the sprite's local clip columns from the walls in front
// of it. Masked walls behind it are drawn first so they end up underneath.
func (r *Renderer) clipSprite(spr *visSprite) {
	m := &r.masked
	for x := spr.x1; x <= spr.x2; x++ {
		m.clipBot[x] = clipUnset
		m.clipTop[x] = clipUnset
	}

	segs := r.drawSegs.Used()
	for i := len(segs) - 1; i >= 0; i-- {
		ds := &segs[i]
		if ds.x1 > spr.x2 || ds.x2 < spr.x1 || (ds.silhouette == SilNone && !ds.maskedTextureCol.valid()) {
			continue
		}
		r1 := mathutil.Max(ds.x1, spr.x1)
		r2 := mathutil.Min(ds.x2, spr.x2)

		lowScale, scale := ds.scale1, ds.scale2
		if ds.scale1 > ds.scale2 {
			lowScale, scale = ds.scale2, ds.scale1
		}
		if scale < spr.scale || (lowScale < spr.scale && ds.curLine.PointOnSegSide(spr.gx, spr.gy) == 0) {
			// wall is behind the sprite
			if ds.maskedTextureCol.valid() {
				r.renderMaskedSegRange(ds, r1, r2)
			}
			continue
		}

		sil := ds.silhouette
		if spr.gz >= ds.bsilHeight {
			sil &^= SilBottom
		}
		if spr.gzt <= ds.tsilHeight {
			sil &^= SilTop
		}
		for x := r1; x <= r2; x++ {
			if sil&SilBottom != 0 && m.clipBot[x] == clipUnset {
				m.clipBot[x] = ds.sprBottomClip.at(x)
			}
			if sil&SilTop != 0 && m.clipTop[x] == clipUnset {
				m.clipTop[x] = ds.sprTopClip.at(x)
			}
		}
	}

	viewHeight := int16(r.view.viewHeight)
	for x := spr.x1; x <= spr.x2; x++ {
		if m.clipBot[x] == clipUnset {
			m.clipBot[x] = viewHeight
		}
		if m.clipTop[x] == clipUnset {
			m.clipTop[x] = -1
		}
	}
}

func (r *Renderer) drawSprite(spr *visSprite) {
	r.clipSprite(spr)
	r.masked.floorClip = clipSlice{buf: r.masked.clipBot[:]}
	r.masked.ceilingClip = clipSlice{buf: r.masked.clipTop[:]}
	r.drawVisSprite(spr)
}

// drawPSprite draws a weapon overlay in 320x200 screen units.
func (r *Renderer) drawPSprite(psp *PSprite, lights *[maxLightScale]*Colormap) {
	v := &r.view
	frame := r.spriteFrame(psp.Sprite, psp.Frame)
	patch, flip := frame.Patches[0], frame.Flip[0]
	if patch == nil {
		fatalf("drawPSprite", "sprite %d frame %d has no patch", psp.Sprite, psp.Frame)
	}
	width, offset, topOffset := spriteMetrics(patch)

	tx := psp.SX - fixed.FromInt(ScreenWidth/2) - offset
	x1 := int((v.centerXFrac + fixed.Mul(tx, v.pspriteScale)) >> fixed.FracBits)
	if x1 >= v.viewWidth {
		return
	}
	tx += width
	x2 := int((v.centerXFrac+fixed.Mul(tx, v.pspriteScale))>>fixed.FracBits) - 1
	if x2 < 0 {
		return
	}

	vis := visSprite{
		textureMid: fixed.FromInt(baseYCenter) + fixed.FracUnit/2 - (psp.SY - topOffset),
		x1:         mathutil.Max(x1, 0),
		x2:         mathutil.Min(x2, v.viewWidth-1),
		scale:      v.pspriteScale << v.detailShift,
		xiScale:    v.pspriteIScale,
		patch:      patch,
	}
	if flip {
		vis.xiScale = -v.pspriteIScale
		vis.startFrac = width - 1
	}
	if vis.x1 > x1 {
		vis.startFrac += vis.xiScale * fixed.Fixed(vis.x1-x1)
	}

	switch {
	case r.viewer.Invisible:
		vis.style = StyleFuzz
	case r.fixedColormap != nil:
		vis.colormap = r.fixedColormap
	case psp.FullBright:
		vis.colormap = &r.assets.Colormaps[0]
	default:
		vis.colormap = lights[maxLightScale-1]
	}
	r.drawVisSprite(&vis)
}

func (r *Renderer) drawPlayerSprites() {
	if len(r.viewer.PSprites) == 0 {
		return
	}
	ss := r.level.PointInSubsector(r.viewX, r.viewY)
	lights := r.lightRow(ss.Sector.LightLevel, 0)

	r.masked.floorClip = clipSlice{buf: r.view.screenHeightArray[:]}
	r.masked.ceilingClip = clipSlice{buf: r.view.negOneArray[:]}
	for i := range r.viewer.PSprites {
		r.drawPSprite(&r.viewer.PSprites[i], lights)
	}
}

// drawMasked draws sprites far to near, then any masked walls no sprite
// forced out early, then the weapon overlays.
func (r *Renderer) drawMasked() {
	r.sortVisSprites()
	head := &r.sortedHead
	for s := head.next; s != head; s = s.next {
		r.drawSprite(s)
	}

	segs := r.drawSegs.Used()
	for i := len(segs) - 1; i >= 0; i-- {
		if ds := &segs[i]; ds.maskedTextureCol.valid() {
			r.renderMaskedSegRange(ds, ds.x1, ds.x2)
		}
	}

	r.drawPlayerSprites()
}
